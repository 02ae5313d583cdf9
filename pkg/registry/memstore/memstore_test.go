package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
)

func TestMemstore_AgentCard_RoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	s.PutAgentCard(registry.AgentCard{AgentID: "bob", Name: "Bob"})

	card, err := s.GetAgentCard(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", card.Name)
}

func TestMemstore_AgentCard_NotFound(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.GetAgentCard(context.Background(), "carol")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestMemstore_VerifiedRole_ExpiresNaturally(t *testing.T) {
	t.Parallel()

	s := New()
	past := time.Now().Add(-time.Minute)
	err := s.UpsertVerifiedRole(context.Background(), registry.VerifiedRole{
		AgentID: "bob", Role: "admin", ExpiresAt: &past,
	})
	require.NoError(t, err)

	_, err = s.GetVerifiedRole(context.Background(), "bob", "admin")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}

func TestMemstore_VerifiedRole_Unexpired(t *testing.T) {
	t.Parallel()

	s := New()
	future := time.Now().Add(time.Hour)
	err := s.UpsertVerifiedRole(context.Background(), registry.VerifiedRole{
		AgentID: "bob", Role: "admin", ExpiresAt: &future,
	})
	require.NoError(t, err)

	row, err := s.GetVerifiedRole(context.Background(), "bob", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", row.Role)
}

func TestMemstore_AuthEvents_Accumulate(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.InsertAuthEvent(context.Background(), registry.AuthEvent{AgentID: "bob", EventType: "auth_success"}))
	require.NoError(t, s.InsertAuthEvent(context.Background(), registry.AuthEvent{AgentID: "bob", EventType: "auth_failure"}))

	assert.Len(t, s.Events(), 2)
}

func TestMemstore_DIDPublicKey_RoundTrip(t *testing.T) {
	t.Parallel()

	s := New()
	require.NoError(t, s.PutDIDPublicKey(context.Background(), registry.DIDPublicKey{
		DID: "did:example:issuer1", KeyFragment: "key-1", PublicKey: "pem",
	}))

	key, err := s.GetDIDPublicKey(context.Background(), "did:example:issuer1", "key-1")
	require.NoError(t, err)
	assert.Equal(t, "pem", key.PublicKey)

	_, err = s.GetDIDPublicKey(context.Background(), "did:example:other", "key-1")
	assert.ErrorIs(t, err, registry.ErrNotFound)
}
