// Package memstore is an in-memory reference implementation of
// registry.Store, used by the demo binary and by tests that need a real
// (rather than mocked) store.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
)

type didKey struct {
	did, fragment string
}

// Store is a mutex-guarded, in-memory registry.Store.
type Store struct {
	mu            sync.RWMutex
	cards         map[string]registry.AgentCard
	events        []registry.AuthEvent
	verifiedRoles map[[2]string]registry.VerifiedRole
	didKeys       map[didKey]registry.DIDPublicKey
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		cards:         make(map[string]registry.AgentCard),
		verifiedRoles: make(map[[2]string]registry.VerifiedRole),
		didKeys:       make(map[didKey]registry.DIDPublicKey),
	}
}

// PutAgentCard registers or replaces a card; a convenience for seeding the
// store outside the registry.Store contract.
func (s *Store) PutAgentCard(card registry.AgentCard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[card.AgentID] = card
}

func (s *Store) GetAgentCard(_ context.Context, agentID string) (registry.AgentCard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[agentID]
	if !ok {
		return registry.AgentCard{}, registry.ErrNotFound
	}
	return card, nil
}

func (s *Store) InsertAuthEvent(_ context.Context, event registry.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the recorded audit log, for test assertions.
func (s *Store) Events() []registry.AuthEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]registry.AuthEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Store) GetVerifiedRole(_ context.Context, agentID, role string) (registry.VerifiedRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.verifiedRoles[[2]string{agentID, role}]
	if !ok {
		return registry.VerifiedRole{}, registry.ErrNotFound
	}
	if row.Expired(time.Now()) {
		return registry.VerifiedRole{}, registry.ErrNotFound
	}
	return row, nil
}

func (s *Store) UpsertVerifiedRole(_ context.Context, row registry.VerifiedRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifiedRoles[[2]string{row.AgentID, row.Role}] = row
	return nil
}

func (s *Store) GetDIDPublicKey(_ context.Context, did, fragment string) (registry.DIDPublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.didKeys[didKey{did, fragment}]
	if !ok {
		return registry.DIDPublicKey{}, registry.ErrNotFound
	}
	return key, nil
}

func (s *Store) PutDIDPublicKey(_ context.Context, key registry.DIDPublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.didKeys[didKey{key.DID, key.KeyFragment}] = key
	return nil
}

var _ registry.Store = (*Store)(nil)
