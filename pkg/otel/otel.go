// otel provides a small helper for instrumenting operations with
// OpenTelemetry spans. A nil tracer disables instrumentation.
package otel

import (
	"context"

	// Packages
	attribute "go.opentelemetry.io/otel/attribute"
	codes "go.opentelemetry.io/otel/codes"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// StartSpan starts a span with the given name and attributes, returning
// the span context and a function which ends the span, recording the
// error when one is passed.
func StartSpan(tracer trace.Tracer, ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	if tracer == nil {
		return ctx, func(error) {}
	}
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
