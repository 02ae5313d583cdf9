// Package registry is the narrow adapter over the external agent-card and
// verified-role store (§4.2). It owns nothing; it projects external row
// shapes onto the model below and issues every call through the "registry"
// circuit breaker.
package registry

import "time"

// AgentCard is the immutable description of a peer agent, as retrieved from
// the registry owner. It is never mutated by the core at runtime.
type AgentCard struct {
	AgentID     string
	Name        string
	Description string
	PublicKey   string // PEM-encoded asymmetric public key
	ServiceURL  string
	Skills      []string
	Metadata    map[string]any
}

// VerifiedRole is a cache row produced by a successful role exchange (§4.6)
// and consulted by the pipeline on subsequent requests for the same
// (agentId, role) pair.
type VerifiedRole struct {
	AgentID        string
	Role           string
	VerifiedAt     time.Time
	ExpiresAt      *time.Time
	CredentialHash string
	IssuerDID      string
}

// Expired reports whether the row must be treated as absent.
func (v VerifiedRole) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && !v.ExpiresAt.After(now)
}

// AuthEvent is a single row of the append-only auth_audit_log.
type AuthEvent struct {
	AgentID   string
	Timestamp time.Time
	EventType string
	Success   bool
	Metadata  map[string]any
}

// DIDPublicKey is an optional cache row for a DID's resolved key material.
type DIDPublicKey struct {
	DID         string
	KeyFragment string
	PublicKey   string
	KeyType     string
}
