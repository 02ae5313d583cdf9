package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AdmitsUpToMax(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(map[string]Config{"auth": {MaxRequests: 3, Window: time.Minute}})

	for i := 0; i < 3; i++ {
		d, err := l.Admit(context.Background(), "auth", "key-1")
		require.NoError(t, err)
		assert.True(t, d.Admitted)
	}

	d, err := l.Admit(context.Background(), "auth", "key-1")
	require.NoError(t, err)
	assert.False(t, d.Admitted)
	assert.Equal(t, 0, d.Remaining)
}

func TestMemoryLimiter_WindowSlides(t *testing.T) {
	t.Parallel()

	window := 50 * time.Millisecond
	l := NewMemoryLimiter(map[string]Config{"auth": {MaxRequests: 1, Window: window}})

	d, err := l.Admit(context.Background(), "auth", "key-1")
	require.NoError(t, err)
	assert.True(t, d.Admitted)

	d, err = l.Admit(context.Background(), "auth", "key-1")
	require.NoError(t, err)
	assert.False(t, d.Admitted)

	time.Sleep(window + 10*time.Millisecond)

	d, err = l.Admit(context.Background(), "auth", "key-1")
	require.NoError(t, err)
	assert.True(t, d.Admitted)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := NewMemoryLimiter(map[string]Config{"auth": {MaxRequests: 1, Window: time.Minute}})

	d1, err := l.Admit(context.Background(), "auth", "key-1")
	require.NoError(t, err)
	assert.True(t, d1.Admitted)

	d2, err := l.Admit(context.Background(), "auth", "key-2")
	require.NoError(t, err)
	assert.True(t, d2.Admitted)
}

func TestMemoryLimiter_NeverExceedsMaxUnderConcurrency(t *testing.T) {
	t.Parallel()

	const maxRequests = 10
	l := NewMemoryLimiter(map[string]Config{"auth": {MaxRequests: maxRequests, Window: time.Minute}})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Admit(context.Background(), "auth", "shared-key")
			require.NoError(t, err)
			if d.Admitted {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, admitted, maxRequests)
}

func TestMemoryLimiter_SweepEvictsStaleBuckets(t *testing.T) {
	t.Parallel()

	window := 10 * time.Millisecond
	l := NewMemoryLimiter(map[string]Config{"auth": {MaxRequests: 5, Window: window}})
	l.sweepEvery = 2

	_, err := l.Admit(context.Background(), "auth", "stale-key")
	require.NoError(t, err)

	time.Sleep(3 * window)

	_, err = l.Admit(context.Background(), "auth", "other-key")
	require.NoError(t, err)

	l.mu.Lock()
	_, staleStillPresent := l.buckets[bucketKey{"auth", "stale-key"}]
	l.mu.Unlock()
	assert.False(t, staleStillPresent)
}
