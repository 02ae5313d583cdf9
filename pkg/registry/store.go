package registry

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when a row does not exist. The
// Client projects this to (nil, nil); every other error is wrapped
// as RegistryUnavailable.
var ErrNotFound = errors.New("registry: not found")

// Store is the external seam the adapter wraps: agent_cards,
// auth_audit_log, verified_roles and did_public_keys from the registry
// store schema (§6). Implementations may be a SQL database, an HTTP
// service, or (in tests and the demo binary) an in-memory map.
type Store interface {
	GetAgentCard(ctx context.Context, agentID string) (AgentCard, error)
	InsertAuthEvent(ctx context.Context, event AuthEvent) error
	GetVerifiedRole(ctx context.Context, agentID, role string) (VerifiedRole, error)
	UpsertVerifiedRole(ctx context.Context, row VerifiedRole) error
	GetDIDPublicKey(ctx context.Context, did, keyFragment string) (DIDPublicKey, error)
	PutDIDPublicKey(ctx context.Context, key DIDPublicKey) error
}
