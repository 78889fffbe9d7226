package actors

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/super-flat/actorsdi/actors"

// actorIDKey tags runtime spans with the actor they concern
const actorIDKey = attribute.Key("actor.id")

// getSpanContext opens a span named after the runtime method, tagged with the actor ID
// when one is known
func getSpanContext(ctx context.Context, methodName string, actorID string) (context.Context, trace.Span) {
	var opts []trace.SpanStartOption
	if actorID != "" {
		opts = append(opts, trace.WithAttributes(actorIDKey.String(actorID)))
	}
	return otel.GetTracerProvider().Tracer(tracerName).Start(ctx, methodName, opts...)
}
