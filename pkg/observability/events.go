// Package observability is the push-only event, metrics, and tracing
// surface (§4.8): every component emits through it, it never blocks or
// errors back to the caller, and emission failures are swallowed and
// counted.
package observability

import (
	"context"
	"log/slog"
)

// EventKind is the closed set of structured events the core can emit.
type EventKind string

const (
	EventAuthSuccess           EventKind = "auth_success"
	EventAuthFailure           EventKind = "auth_failure"
	EventRateLimitDenied       EventKind = "rate_limit_denied"
	EventRateLimitDegraded     EventKind = "rate_limit_backend_degraded"
	EventBreakerOpened         EventKind = "breaker_opened"
	EventBreakerClosed         EventKind = "breaker_closed"
	EventBreakerHalfOpenProbe  EventKind = "breaker_halfopen_probe"
	EventRoleVerified          EventKind = "role_verified"
	EventDIDResolve            EventKind = "did_resolve"
)

// levelFor maps an event kind to the slog level it's logged at; failures
// and degraded-mode events are warnings, everything else is informational.
func levelFor(kind EventKind) slog.Level {
	switch kind {
	case EventAuthFailure, EventRateLimitDenied, EventRateLimitDegraded, EventBreakerOpened:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Emit pushes a structured event to the slog logger and the registered
// Prometheus counters, and never blocks or returns an error: a panic while
// formatting attrs is recovered and counted in phlow_obs_emit_failures_total.
func Emit(ctx context.Context, kind EventKind, attrs map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			emitFailures.Inc()
		}
	}()

	args := make([]any, 0, 2*(len(attrs)+2))
	args = append(args, "kind", string(kind))
	if rc, ok := RequestFromContext(ctx); ok {
		if rc.RequestID != "" {
			args = append(args, "requestId", rc.RequestID)
		}
		if rc.AgentID != "" {
			args = append(args, "agentId", rc.AgentID)
		}
	}
	for k, v := range attrs {
		args = append(args, k, v)
	}

	slog.Log(ctx, levelFor(kind), string(kind), args...)
	recordMetric(kind, attrs)
}
