package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/middleware"
)

// Layer is the layer type of HTTP chains.
type Layer = middleware.Layer[*Context, *Request]

// maxBodySize caps JSON bodies.
const maxBodySize = 1 << 20

// QueryToJSON decodes each query value as JSON where possible; values that
// are not valid JSON are kept as strings. Only the first value of a key is used.
func QueryToJSON() Layer {
	return middleware.LayerFunc[*Context, *Request](func(ctx *Context, req *Request, next middleware.Next) error {
		for key, values := range req.URL.Query() {
			if len(values) == 0 {
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(values[0]), &v); err != nil {
				v = values[0]
			}
			req.Query[key] = v
		}
		return next()
	})
}

// BodyJSON decodes a JSON object body into req.Body. Non-JSON content types
// and empty bodies are skipped; malformed JSON is a validation error.
func BodyJSON() Layer {
	return middleware.LayerFunc[*Context, *Request](func(ctx *Context, req *Request, next middleware.Next) error {
		if req.Request.Body == nil || req.ContentLength == 0 {
			return next()
		}
		if ct := req.Header.Get("Content-Type"); ct != "" {
			mt, _, err := mime.ParseMediaType(ct)
			if err != nil || mt != "application/json" {
				return next()
			}
		}

		body := map[string]any{}
		dec := json.NewDecoder(io.LimitReader(req.Request.Body, maxBodySize))
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: malformed JSON body", common.ErrorValidation)
		}
		for k, v := range body {
			req.Body[k] = v
		}
		return next()
	})
}

// Logging logs one line per request after the rest of the chain returns.
func Logging(log logging.Logger) Layer {
	return middleware.LayerFunc[*Context, *Request](func(ctx *Context, req *Request, next middleware.Next) error {
		start := time.Now()
		err := next()

		status := ctx.responseStatus()
		if err != nil {
			status = StatusFor(err)
		}

		args := []any{
			"method", req.Method,
			"route", ctx.Route,
			"status", status,
			"duration", time.Since(start),
		}
		if err != nil {
			args = append(args, "code", common.Kind(err))
		}

		switch {
		case status >= 500:
			log.Error(ctx.Context(), "request failed", append(args, "error", err)...)
		case status >= 400:
			log.Warn(ctx.Context(), "request rejected", args...)
		default:
			log.Info(ctx.Context(), "request served", args...)
		}
		return err
	})
}
