package telemetry

import (
	"context"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/dmitrijs2005/azura"

// Carrier is a chain context that holds a context.Context.
type Carrier interface {
	Context() context.Context
	SetContext(ctx context.Context)
}

// Tracer returns the tracer of the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Tracing wraps the rest of the chain in a server span named by spanName.
// Later layers see the span through ctx.Context().
func Tracing[C Carrier, R any](tracer trace.Tracer, spanName func(ctx C, req R) string, attrs ...attribute.KeyValue) middleware.LayerFunc[C, R] {
	return func(ctx C, req R, next middleware.Next) error {
		spanCtx, span := tracer.Start(ctx.Context(), spanName(ctx, req),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		parent := ctx.Context()
		ctx.SetContext(spanCtx)
		defer ctx.SetContext(parent)

		err := next()
		if err != nil {
			kind := common.Kind(err)
			span.SetAttributes(attribute.String("azura.error_kind", kind))
			if kind == "Internal" {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	}
}
