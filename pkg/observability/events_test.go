package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmit_DoesNotPanicOnNilAttrs(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() {
		Emit(context.Background(), EventAuthSuccess, nil)
	})
}

func TestEmit_ReadsRequestContext(t *testing.T) {
	t.Parallel()
	ctx := WithRequest(context.Background(), RequestContext{RequestID: "req-1", AgentID: "agent-1"})
	assert.NotPanics(t, func() {
		Emit(ctx, EventAuthFailure, map[string]any{"reason": "token_expired"})
	})
}

func TestRequestFromContext_AbsentByDefault(t *testing.T) {
	t.Parallel()
	_, ok := RequestFromContext(context.Background())
	assert.False(t, ok)
}

func TestWithRequest_RoundTrips(t *testing.T) {
	t.Parallel()
	rc := RequestContext{RequestID: "req-2", AgentID: "agent-2"}
	ctx := WithRequest(context.Background(), rc)
	got, ok := RequestFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, rc, got)
}
