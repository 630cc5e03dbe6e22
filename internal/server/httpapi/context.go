// Package httpapi binds the middleware chain to HTTP. Each request gets a
// Context and a Request that flow through the route's layers; the response
// is written once the chain has fully unwound.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
)

// Context carries per-request state between layers.
type Context struct {
	ctx context.Context

	// Writer is exposed for headers; the body is written by the Router.
	Writer http.ResponseWriter

	// Route is the registered method and pattern, e.g. "POST /authentication/login".
	Route string

	// Status and Body form the response. A zero Status means 200 when Body
	// is set and 204 otherwise.
	Status int
	Body   any

	// UserID is set by AuthenticationMiddleware.
	UserID string
}

func newContext(ctx context.Context, w http.ResponseWriter, route string) *Context {
	return &Context{ctx: ctx, Writer: w, Route: route}
}

func (c *Context) Context() context.Context       { return c.ctx }
func (c *Context) SetContext(ctx context.Context) { c.ctx = ctx }

// JSON sets the response. Later layers, including ones unwinding after next,
// may overwrite it.
func (c *Context) JSON(status int, body any) {
	c.Status = status
	c.Body = body
}

// responseStatus is the status written for a chain that succeeded.
func (c *Context) responseStatus() int {
	switch {
	case c.Status != 0:
		return c.Status
	case c.Body == nil:
		return http.StatusNoContent
	default:
		return http.StatusOK
	}
}

// Request wraps the incoming request with its decoded parameters.
type Request struct {
	*http.Request

	// Query holds query values, JSON-decoded where they parse as JSON.
	Query map[string]any

	// Body holds the fields of a JSON object body.
	Body map[string]any
}

func newRequest(r *http.Request) *Request {
	return &Request{Request: r, Query: map[string]any{}, Body: map[string]any{}}
}

// Param returns the decoded value of key, body first.
func (r *Request) Param(key string) (any, bool) {
	if v, ok := r.Body[key]; ok {
		return v, true
	}
	v, ok := r.Query[key]
	return v, ok
}

// String returns key as a string. Body strings win; otherwise the raw query
// value is used, so "12345" stays a string even though it decodes as a number.
func (r *Request) String(key string) string {
	if v, ok := r.Body[key]; ok {
		switch s := v.(type) {
		case string:
			return s
		case nil:
			return ""
		default:
			return fmt.Sprint(s)
		}
	}
	if r.Request != nil && r.URL != nil {
		return r.URL.Query().Get(key)
	}
	return ""
}
