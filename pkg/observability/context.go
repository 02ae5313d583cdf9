package observability

import "context"

type requestContextKey struct{}

// RequestContext is the process-wide, per-request correlation slot
// propagated across suspension points (§4.8, §5): requestId and agentId,
// read by every component that emits an event.
type RequestContext struct {
	RequestID string
	AgentID   string
}

// WithRequest attaches rc to ctx, replacing any prior RequestContext.
func WithRequest(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// RequestFromContext returns the RequestContext attached to ctx, if any.
func RequestFromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(requestContextKey{}).(RequestContext)
	return rc, ok
}
