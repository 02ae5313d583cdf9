package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

func testConfig() Config {
	return Config{
		FailureThreshold:       2,
		RecoveryMillis:         50 * time.Millisecond,
		OperationTimeoutMillis: 100 * time.Millisecond,
	}
}

func TestBreaker_Call_Success(t *testing.T) {
	t.Parallel()

	b := New("registry", testConfig())
	err := b.Call(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreaker_Call_FailureCountsTowardThreshold(t *testing.T) {
	t.Parallel()

	b := New("registry", testConfig())
	boom := errors.New("boom")

	err := b.Call(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, CircuitClosed, b.State())

	err = b.Call(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, CircuitOpen, b.State())
}

func TestBreaker_Call_RejectsWhenOpen(t *testing.T) {
	t.Parallel()

	b := New("registry", testConfig())
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = b.Call(context.Background(), func(context.Context) error { return boom })
	}
	require.Equal(t, CircuitOpen, b.State())

	err := b.Call(context.Background(), func(context.Context) error { return nil })
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.CircuitOpen, kind)
}

func TestBreaker_Call_OperationTimeoutCountsAsFailure(t *testing.T) {
	t.Parallel()

	b := New("didResolver", testConfig())
	err := b.Call(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.OperationTimeout, kind)
	assert.Equal(t, 1, b.FailureCount())
}

func TestBreaker_Call_CallerCancellationDoesNotCount(t *testing.T) {
	t.Parallel()

	b := New("peerMessaging", testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Call(ctx, func(ctx context.Context) error {
		return ctx.Err()
	})
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.Cancelled, kind)
	assert.Equal(t, 0, b.FailureCount())
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreaker_Call_FailurePredicateOverridesClassification(t *testing.T) {
	t.Parallel()

	notFound := errors.New("not found")
	cfg := testConfig()
	cfg.IsFailure = func(err error) bool { return !errors.Is(err, notFound) }
	b := New("registry", cfg)

	err := b.Call(context.Background(), func(context.Context) error { return notFound })
	require.ErrorIs(t, err, notFound)
	assert.Equal(t, 0, b.FailureCount())
	assert.Equal(t, CircuitClosed, b.State())
}

func TestBreaker_Call_StateChangeCallbackInvoked(t *testing.T) {
	t.Parallel()

	var transitions []string
	cfg := testConfig()
	cfg.OnStateChange = func(name string, from, to State) {
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	}
	b := New("registry", cfg)
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_ = b.Call(context.Background(), func(context.Context) error { return boom })
	}

	require.Len(t, transitions, 1)
	assert.Equal(t, "registry:closed->open", transitions[0])
}

func TestBreaker_Call_RecoversThroughHalfOpen(t *testing.T) {
	t.Parallel()

	b := New("registry", testConfig())
	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		_ = b.Call(context.Background(), func(context.Context) error { return boom })
	}
	require.Equal(t, CircuitOpen, b.State())

	time.Sleep(60 * time.Millisecond)

	err := b.Call(context.Background(), func(context.Context) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, CircuitClosed, b.State())
}
