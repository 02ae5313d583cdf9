package observability

import (
	"context"

	"github.com/prassanna-ravishankar/phlow-go/pkg/breaker"
)

// BreakerStateChangeFunc adapts breaker state transitions to the closed
// event set (breaker_opened/breaker_closed/breaker_halfopen_probe), so
// breaker.Config can be constructed without this package importing back
// into breaker's callers.
func BreakerStateChangeFunc() breaker.StateChangeFunc {
	return func(name string, _, to breaker.State) {
		attrs := map[string]any{"breaker": name}
		switch to {
		case breaker.CircuitOpen:
			Emit(context.Background(), EventBreakerOpened, attrs)
		case breaker.CircuitClosed:
			Emit(context.Background(), EventBreakerClosed, attrs)
		case breaker.CircuitHalfOpen:
			Emit(context.Background(), EventBreakerHalfOpenProbe, attrs)
		}
	}
}

// RateLimitDegradedFunc adapts a rate limiter's shared-backend failure to
// the rate_limit_backend_degraded event.
func RateLimitDegradedFunc() func(limiterName string, cause error) {
	return func(limiterName string, cause error) {
		Emit(context.Background(), EventRateLimitDegraded, map[string]any{
			"limiter": limiterName,
			"cause":   cause.Error(),
		})
	}
}
