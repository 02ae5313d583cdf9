package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
	"github.com/prassanna-ravishankar/phlow-go/pkg/breaker"
)

type fakeStore struct {
	cards       map[string]AgentCard
	getCardErr  error
	insertErr   error
	insertCalls int
}

func (f *fakeStore) GetAgentCard(_ context.Context, agentID string) (AgentCard, error) {
	if f.getCardErr != nil {
		return AgentCard{}, f.getCardErr
	}
	card, ok := f.cards[agentID]
	if !ok {
		return AgentCard{}, ErrNotFound
	}
	return card, nil
}

func (f *fakeStore) InsertAuthEvent(_ context.Context, _ AuthEvent) error {
	f.insertCalls++
	return f.insertErr
}

func (f *fakeStore) GetVerifiedRole(_ context.Context, _, _ string) (VerifiedRole, error) {
	return VerifiedRole{}, ErrNotFound
}

func (f *fakeStore) UpsertVerifiedRole(_ context.Context, _ VerifiedRole) error { return nil }

func (f *fakeStore) GetDIDPublicKey(_ context.Context, _, _ string) (DIDPublicKey, error) {
	return DIDPublicKey{}, ErrNotFound
}

func (f *fakeStore) PutDIDPublicKey(_ context.Context, _ DIDPublicKey) error { return nil }

func newTestBreaker() *breaker.Breaker {
	return breaker.New("registry", breaker.Config{
		FailureThreshold:       3,
		RecoveryMillis:         50 * time.Millisecond,
		OperationTimeoutMillis: time.Second,
	})
}

func TestClient_GetAgentCard_Found(t *testing.T) {
	t.Parallel()

	store := &fakeStore{cards: map[string]AgentCard{"bob": {AgentID: "bob", Name: "Bob"}}}
	c := NewClient(store, newTestBreaker())

	card, err := c.GetAgentCard(context.Background(), "bob")
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.Equal(t, "Bob", card.Name)
}

func TestClient_GetAgentCard_NotFoundProjectsToNil(t *testing.T) {
	t.Parallel()

	store := &fakeStore{cards: map[string]AgentCard{}}
	c := NewClient(store, newTestBreaker())

	card, err := c.GetAgentCard(context.Background(), "carol")
	require.NoError(t, err)
	assert.Nil(t, card)
}

func TestClient_GetAgentCard_OtherFailureWrapsAsRegistryUnavailable(t *testing.T) {
	t.Parallel()

	store := &fakeStore{getCardErr: errors.New("connection refused")}
	c := NewClient(store, newTestBreaker())

	_, err := c.GetAgentCard(context.Background(), "bob")
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.RegistryUnavailable, kind)
}

func TestClient_GetAgentCard_CircuitOpenPropagatesDirectly(t *testing.T) {
	t.Parallel()

	store := &fakeStore{getCardErr: errors.New("boom")}
	b := newTestBreaker()
	c := NewClient(store, b)

	for i := 0; i < 3; i++ {
		_, _ = c.GetAgentCard(context.Background(), "bob")
	}
	require.Equal(t, breaker.CircuitOpen, b.State())

	_, err := c.GetAgentCard(context.Background(), "bob")
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apierrors.CircuitOpen, kind)
}

func TestClient_RecordAuthEvent_BestEffort(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := NewClient(store, newTestBreaker())

	err := c.RecordAuthEvent(context.Background(), AuthEvent{AgentID: "bob", EventType: "auth_success"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.insertCalls)
}
