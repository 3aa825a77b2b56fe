package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "github.com/felixgeelhaar/suggest-go"

// Tracer starts engine spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from provider. Nil means the global provider.
func NewTracer(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		return &Tracer{tracer: otel.Tracer(TracerName)}
	}
	return &Tracer{tracer: provider.Tracer(TracerName)}
}

// StartAction starts the span covering one OnAction call.
func (t *Tracer) StartAction(ctx context.Context, sessionID, kind, language string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "engine.on_action", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("action.kind", kind),
		attribute.String("language", language),
	))
}

// MarkPresented annotates span with a presented suggestion.
func MarkPresented(span trace.Span, detectorID, suggestionID string) {
	span.AddEvent("suggestion.presented", trace.WithAttributes(
		attribute.String("detector.id", detectorID),
		attribute.String("suggestion.id", suggestionID),
	))
}

// MarkError records err on span.
func MarkError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
