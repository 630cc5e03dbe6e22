package middleware

// Skip bypasses layer when cond reports true.
func Skip[C, R any](cond func(ctx C, req R) bool, layer Layer[C, R]) Layer[C, R] {
	return LayerFunc[C, R](func(ctx C, req R, next Next) error {
		if cond(ctx, req) {
			return next()
		}
		return layer.Handle(ctx, req, next)
	})
}

// Only runs layer when cond reports true and bypasses it otherwise.
func Only[C, R any](cond func(ctx C, req R) bool, layer Layer[C, R]) Layer[C, R] {
	return LayerFunc[C, R](func(ctx C, req R, next Next) error {
		if !cond(ctx, req) {
			return next()
		}
		return layer.Handle(ctx, req, next)
	})
}

// Terminal adapts a handler that never continues into a Layer.
func Terminal[C, R any](fn func(ctx C, req R) error) Layer[C, R] {
	return LayerFunc[C, R](func(ctx C, req R, _ Next) error {
		return fn(ctx, req)
	})
}
