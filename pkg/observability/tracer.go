package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/prassanna-ravishankar/phlow-go/pkg/observability")

// StartAuthSpan starts the span covering S1 through S7 of a single
// Authenticate call. No exporter is configured here: a host wires its own
// OTel SDK pipeline, matching library-not-app use of OTel.
func StartAuthSpan(ctx context.Context, agentID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "phlow.authenticate", trace.WithAttributes(
		attribute.String("agentId", agentID),
	))
}

// EndAuthSpan records the final outcome and ends span, started by
// StartAuthSpan.
func EndAuthSpan(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetStatus(codes.Ok, outcome)
	}
	span.End()
}
