// Package socket serves authentication over a WebSocket connection. Each
// connection owns a Socket that keeps the authenticated user between events;
// events are dispatched through middleware chains like HTTP routes.
package socket

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/azura/internal/server/models"
)

// Socket is the state a connection keeps across events. At most one user is
// attached at a time.
type Socket struct {
	id string

	mu   sync.RWMutex
	user *models.User
}

func NewSocket(id string) *Socket {
	return &Socket{id: id}
}

func (s *Socket) ID() string { return s.id }

// Attach replaces the attached user.
func (s *Socket) Attach(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

func (s *Socket) Detach() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

func (s *Socket) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Socket) IsAuthenticated() bool {
	return s.User() != nil
}

// Context is the chain context of one event.
type Context struct {
	Ctx    context.Context
	Data   map[string]any
	Socket *Socket

	// Result becomes the reply's data.
	Result any
}

func (c *Context) Context() context.Context       { return c.Ctx }
func (c *Context) SetContext(ctx context.Context) { c.Ctx = ctx }

// String returns Data[key] when it is a string.
func (c *Context) String(key string) string {
	s, _ := c.Data[key].(string)
	return s
}
