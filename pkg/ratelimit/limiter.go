// Package ratelimit implements the sliding-window admission control from
// §4.4: at most maxRequests in any trailing windowMillis, per (limiterName,
// key). Two backends share the Limiter interface: an in-memory map with a
// lock per bucket and a shared-store (Redis) backend that falls back to memory on failure.
package ratelimit

import (
	"context"
	"time"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Admitted  bool
	Remaining int
	ResetAt   time.Time
}

// Limiter enforces maxRequests per windowMillis per (limiterName, key).
type Limiter interface {
	Admit(ctx context.Context, limiterName, key string) (Decision, error)
}

// Config is a limiter's (maxRequests, window) pair.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

// DeniedError wraps a denied Decision as the closed RateLimitExceeded kind.
func DeniedError(d Decision) error {
	return apierrors.NewRateLimitExceeded(d.ResetAt.Format(time.RFC3339))
}
