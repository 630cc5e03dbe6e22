package middleware

import "sync"

// Next continues the chain with the following layer.
type Next func() error

// Layer processes one dispatch and optionally calls next.
// Return an error to stop the chain and report it; return nil without
// calling next to stop the chain successfully.
type Layer[C, R any] interface {
	Handle(ctx C, req R, next Next) error
}

// LayerFunc is a function adapter for Layer.
type LayerFunc[C, R any] func(ctx C, req R, next Next) error

// Handle implements Layer.
func (f LayerFunc[C, R]) Handle(ctx C, req R, next Next) error {
	return f(ctx, req, next)
}

// Chain is an ordered, append-only list of layers. It is safe to Run
// concurrently; Use may be called while runs are in flight, in which case
// those runs keep the layer list they started with.
type Chain[C, R any] struct {
	mu     sync.RWMutex
	layers []Layer[C, R]
}

// New returns a chain holding layers in the given order.
func New[C, R any](layers ...Layer[C, R]) *Chain[C, R] {
	c := &Chain[C, R]{}
	c.Use(layers...)
	return c
}

// Use appends layers to the chain. A nil layer panics.
func (c *Chain[C, R]) Use(layers ...Layer[C, R]) {
	for _, l := range layers {
		if l == nil {
			panic("middleware: nil layer")
		}
	}
	c.mu.Lock()
	c.layers = append(c.layers, layers...)
	c.mu.Unlock()
}

// Len reports the number of registered layers.
func (c *Chain[C, R]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.layers)
}

// Layers returns a copy of the registered layers.
func (c *Chain[C, R]) Layers() []Layer[C, R] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Layer[C, R], len(c.layers))
	copy(out, c.layers)
	return out
}

// Then returns a new chain with the layers of c followed by those of other.
func (c *Chain[C, R]) Then(other *Chain[C, R]) *Chain[C, R] {
	n := New(c.Layers()...)
	if other != nil {
		n.Use(other.Layers()...)
	}
	return n
}

// Run dispatches ctx and req through the chain. It returns once the first
// layer returns.
func (c *Chain[C, R]) Run(ctx C, req R) error {
	return Compose(c.Layers(), ctx, req, nil)
}

// Compose builds the continuation chain from the last layer to the first and
// invokes it. final runs after the last layer calls next; nil means a no-op.
func Compose[C, R any](layers []Layer[C, R], ctx C, req R, final Next) error {
	chain := final
	if chain == nil {
		chain = func() error { return nil }
	}

	for i := len(layers) - 1; i >= 0; i-- {
		l := layers[i]
		next := chain
		chain = func() error {
			return l.Handle(ctx, req, next)
		}
	}

	return chain()
}
