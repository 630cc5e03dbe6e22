package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Router registers routes as chains on a chi mux. Every route runs the
// global layers first, then its own.
type Router struct {
	mux    *chi.Mux
	global *middleware.Chain[*Context, *Request]
	log    logging.Logger
}

func NewRouter(log logging.Logger) *Router {
	r := &Router{
		mux:    chi.NewRouter(),
		global: middleware.New[*Context, *Request](),
		log:    log.With("module", "httpapi"),
	}

	r.mux.Use(chimw.RequestID, chimw.Recoverer)

	r.mux.NotFound(func(w http.ResponseWriter, hr *http.Request) {
		r.writeJSON(hr.Context(), w, http.StatusNotFound, ErrorBody{Error: "route not found", Code: "NotFound"})
	})
	r.mux.MethodNotAllowed(func(w http.ResponseWriter, hr *http.Request) {
		r.writeJSON(hr.Context(), w, http.StatusMethodNotAllowed, ErrorBody{Error: "method not allowed", Code: "Validation"})
	})

	return r
}

// Use appends global layers. Routes registered earlier pick them up too.
func (r *Router) Use(layers ...Layer) {
	r.global.Use(layers...)
}

// Handle registers method and pattern with layers.
func (r *Router) Handle(method, pattern string, layers ...Layer) {
	route := middleware.New(layers...)
	name := method + " " + pattern

	r.mux.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, hr *http.Request) {
		ctx := newContext(hr.Context(), w, name)
		req := newRequest(hr)

		err := r.global.Then(route).Run(ctx, req)
		r.respond(ctx, err)
	}))
}

func (r *Router) Get(pattern string, layers ...Layer)    { r.Handle(http.MethodGet, pattern, layers...) }
func (r *Router) Post(pattern string, layers ...Layer)   { r.Handle(http.MethodPost, pattern, layers...) }
func (r *Router) Delete(pattern string, layers ...Layer) { r.Handle(http.MethodDelete, pattern, layers...) }

// Mount attaches a plain handler, e.g. /metrics or the socket endpoint.
func (r *Router) Mount(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// Mux returns the underlying chi mux.
func (r *Router) Mux() *chi.Mux { return r.mux }

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) respond(ctx *Context, err error) {
	if err != nil {
		r.writeJSON(ctx.Context(), ctx.Writer, StatusFor(err), errorBody(err))
		return
	}

	if ctx.Body == nil {
		ctx.Writer.WriteHeader(ctx.responseStatus())
		return
	}

	r.writeJSON(ctx.Context(), ctx.Writer, ctx.responseStatus(), ctx.Body)
}

func (r *Router) writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		r.log.Error(ctx, "error encoding response", "error", err)
	}
}
