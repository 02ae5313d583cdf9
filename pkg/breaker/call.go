package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

// Operation is any async call a Breaker protects.
type Operation func(ctx context.Context) error

// FailurePredicate decides whether an error returned by an Operation counts
// against the breaker. The default (nil) predicate treats every non-nil,
// non-cancellation error as a failure, per spec §4.3.
type FailurePredicate func(error) bool

// StateChangeFunc is notified whenever a breaker transitions, so the
// observability surface can emit breaker_opened/breaker_closed/
// breaker_halfopen_probe events without this package importing it.
type StateChangeFunc func(name string, from, to State)

// Breaker wraps a CircuitBreaker with a name, an operation timeout, and a
// failure predicate, implementing the call(op) contract from spec §4.3.
type Breaker struct {
	Name             string
	cb               *CircuitBreaker
	operationTimeout time.Duration
	isFailure        FailurePredicate
	onStateChange    StateChangeFunc
}

// Config configures a single named breaker, per spec §6's per-dependency
// defaults (5, 60000ms, 15000ms).
type Config struct {
	FailureThreshold       int
	RecoveryMillis         time.Duration
	OperationTimeoutMillis time.Duration
	IsFailure              FailurePredicate
	OnStateChange          StateChangeFunc
}

// New constructs a Breaker with the given name and configuration.
func New(name string, cfg Config) *Breaker {
	return &Breaker{
		Name:             name,
		cb:               NewCircuitBreaker(cfg.FailureThreshold, cfg.RecoveryMillis),
		operationTimeout: cfg.OperationTimeoutMillis,
		isFailure:        cfg.IsFailure,
		onStateChange:    cfg.OnStateChange,
	}
}

// Call invokes op if the breaker currently admits an attempt. It applies the
// configured operation timeout, counts the result via the failure
// predicate, and maps a fail-fast rejection to CircuitOpen. Per spec §5,
// caller-initiated cancellation never counts as a breaker failure.
func (b *Breaker) Call(ctx context.Context, op Operation) error {
	before := b.cb.GetState()
	if !b.cb.CanAttempt() {
		return apierrors.NewCircuitOpen(b.Name)
	}
	b.notifyIfChanged(before)

	opCtx := ctx
	var cancel context.CancelFunc
	if b.operationTimeout > 0 {
		opCtx, cancel = context.WithTimeout(ctx, b.operationTimeout)
		defer cancel()
	}

	err := op(opCtx)

	if errors.Is(err, context.Canceled) {
		// Caller cancellation: not a failure, not a success; leave counters
		// untouched so an unrelated cancellation can't mask real health.
		return apierrors.NewCancelled(err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		before = b.cb.GetState()
		b.cb.RecordFailure()
		b.notifyIfChanged(before)
		return apierrors.NewOperationTimeout(b.Name, err)
	}

	failed := err != nil
	if failed && b.isFailure != nil {
		failed = b.isFailure(err)
	}

	before = b.cb.GetState()
	if failed {
		b.cb.RecordFailure()
	} else {
		b.cb.RecordSuccess()
	}
	b.notifyIfChanged(before)

	return err
}

func (b *Breaker) notifyIfChanged(before State) {
	if b.onStateChange == nil {
		return
	}
	after := b.cb.GetState()
	if after != before {
		b.onStateChange(b.Name, before, after)
	}
}

// State, FailureCount and Snapshot expose the underlying CircuitBreaker for
// observability (§4.8 stats()).
func (b *Breaker) State() State            { return b.cb.GetState() }
func (b *Breaker) FailureCount() int       { return b.cb.GetFailureCount() }
func (b *Breaker) Snapshot() Snapshot      { return b.cb.GetSnapshot() }
