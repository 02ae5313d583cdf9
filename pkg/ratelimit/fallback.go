package ratelimit

import "context"

// DegradedFunc is notified when the shared-store backend fails and a call
// falls back to memory, so the observability surface can emit
// rate_limit_backend_degraded without this package importing it.
type DegradedFunc func(limiterName string, cause error)

// FallbackLimiter prefers a shared-store backend and falls back to an
// in-memory one for a single call whenever the shared store fails for any
// reason other than an admission decision (§4.4).
type FallbackLimiter struct {
	shared     Limiter
	memory     Limiter
	onDegraded DegradedFunc
}

// NewFallbackLimiter composes shared and memory. shared may be nil, in
// which case every call goes straight to memory (PHLOW_RATE_LIMIT_SHARED_URL
// unset).
func NewFallbackLimiter(shared, memory Limiter, onDegraded DegradedFunc) *FallbackLimiter {
	return &FallbackLimiter{shared: shared, memory: memory, onDegraded: onDegraded}
}

// Admit implements Limiter.
func (f *FallbackLimiter) Admit(ctx context.Context, limiterName, key string) (Decision, error) {
	if f.shared == nil {
		return f.memory.Admit(ctx, limiterName, key)
	}

	d, err := f.shared.Admit(ctx, limiterName, key)
	if err == nil {
		return d, nil
	}

	if f.onDegraded != nil {
		f.onDegraded(limiterName, err)
	}
	return f.memory.Admit(ctx, limiterName, key)
}
