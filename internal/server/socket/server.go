package socket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"github.com/dmitrijs2005/azura/internal/telemetry"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10

	internalMessage = "internal server error"
)

// Server upgrades HTTP requests and dispatches each event frame through the
// chain registered for its name, after the global layers.
type Server struct {
	upgrader websocket.Upgrader
	global   *middleware.Chain[*Context, *Frame]
	metrics  *telemetry.Metrics
	log      logging.Logger

	mu     sync.RWMutex
	events map[string]*middleware.Chain[*Context, *Frame]
}

// NewServer returns a Server. metrics may be nil.
func NewServer(metrics *telemetry.Metrics, log logging.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		global:  middleware.New[*Context, *Frame](),
		metrics: metrics,
		log:     log.With("module", "socket"),
		events:  map[string]*middleware.Chain[*Context, *Frame]{},
	}
}

// Use appends layers that run before every event chain.
func (s *Server) Use(layers ...Layer) {
	s.global.Use(layers...)
}

// On registers the chain for event, replacing any previous one.
func (s *Server) On(event string, layers ...Layer) {
	chain := middleware.New(layers...)
	s.mu.Lock()
	s.events[event] = chain
	s.mu.Unlock()
}

func (s *Server) chain(event string) (*middleware.Chain[*Context, *Frame], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.events[event]
	return c, ok
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	c := &connection{
		server: s,
		conn:   conn,
		socket: NewSocket(uuid.NewString()),
		done:   make(chan struct{}),
	}
	c.serve(r)
}

type connection struct {
	server *Server
	conn   *websocket.Conn
	socket *Socket

	writeMu sync.Mutex
	done    chan struct{}
}

func (c *connection) serve(r *http.Request) {
	s := c.server
	ctx := r.Context()

	if s.metrics != nil {
		s.metrics.SocketOpened()
		defer s.metrics.SocketClosed()
	}
	s.log.Debug(ctx, "socket connected", "socket_id", c.socket.ID())

	defer func() {
		close(c.done)
		c.socket.Detach()
		c.conn.Close()
		s.log.Debug(ctx, "socket disconnected", "socket_id", c.socket.ID())
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.ping()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Warn(ctx, "socket read error", "socket_id", c.socket.ID(), "error", err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		reply := c.dispatch(r, msg)
		if err := c.write(reply); err != nil {
			s.log.Warn(ctx, "socket write error", "socket_id", c.socket.ID(), "error", err)
			return
		}
	}
}

// dispatch runs one frame to completion. Frames of one connection are
// handled in order.
func (c *connection) dispatch(r *http.Request, msg []byte) Reply {
	var f Frame
	if err := json.Unmarshal(msg, &f); err != nil {
		return errorReply(&f, fmt.Errorf("%w: malformed frame", common.ErrorValidation))
	}

	ctx := &Context{Ctx: r.Context(), Data: map[string]any{}, Socket: c.socket}
	if len(f.Data) > 0 && !bytes.Equal(f.Data, []byte("null")) {
		if err := json.Unmarshal(f.Data, &ctx.Data); err != nil {
			return errorReply(&f, fmt.Errorf("%w: data must be an object", common.ErrorValidation))
		}
	}

	chain, ok := c.server.chain(f.Event)
	if !ok {
		return errorReply(&f, fmt.Errorf("%w: unknown event %q", common.ErrorNotFound, f.Event))
	}

	if err := c.server.global.Then(chain).Run(ctx, &f); err != nil {
		if common.Kind(err) == "Internal" {
			c.server.log.Error(ctx.Context(), "socket event failed", "event", f.Event, "error", err)
		}
		return errorReply(&f, err)
	}

	return Reply{ID: f.ID, Event: f.Event, Data: ctx.Result}
}

func errorReply(f *Frame, err error) Reply {
	kind := common.Kind(err)
	msg := err.Error()
	if kind == "Internal" {
		msg = internalMessage
	}
	return Reply{ID: f.ID, Event: f.Event, Error: &ReplyError{Code: kind, Message: msg}}
}

func (c *connection) write(reply Reply) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(reply)
}

func (c *connection) ping() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
