// Package pipeline implements the authentication pipeline (C7), the single
// entry point every caller invokes: rate limiting, token verification,
// registry lookup, permission checking, and optional role exchange, run in
// the mandatory S1-S7 order of §4.7.
package pipeline

import (
	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
	"github.com/prassanna-ravishankar/phlow-go/pkg/token"
)

// Options carries the per-call authentication requirements (§4.7).
type Options struct {
	RequiredRole        string
	RequiredPermissions []string
}

// AuthContext is the immutable, read-only result of a successful
// Authenticate call (§3). It is valid for the lifetime of the request that
// produced it.
type AuthContext struct {
	Agent         registry.AgentCard
	Claims        token.Claims
	Token         string
	VerifiedRoles []string
	RequestID     string
}

// HasRole reports whether role is present in VerifiedRoles.
func (a *AuthContext) HasRole(role string) bool {
	for _, r := range a.VerifiedRoles {
		if r == role {
			return true
		}
	}
	return false
}
