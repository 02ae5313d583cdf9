package roleexchange

import (
	"context"
	"time"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
	"github.com/prassanna-ravishankar/phlow-go/pkg/breaker"
	"github.com/prassanna-ravishankar/phlow-go/pkg/credential"
	"github.com/prassanna-ravishankar/phlow-go/pkg/ratelimit"
	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
)

// Exchanger is the verifying-agent (service) side of the protocol: C7 calls
// RequestRole when it needs proof of a role absent from the verified-role
// cache. It owns no back-edge to the client side in client.go.
type Exchanger struct {
	registry    *registry.Client
	verifier    *credential.Verifier
	transport   PeerTransport
	peerBreaker *breaker.Breaker
	limiter     ratelimit.Limiter
	cacheTTL    time.Duration
}

// NewExchanger constructs an Exchanger. cacheTTL bounds how long a freshly
// verified role is cached even if the credential's own expirationDate is
// later (§4.6 step 7). limiter admits under the "role" limiter name, keyed
// by agentId (§4.4), guarding the peer-messaging round trip RequestRole
// triggers on a cache miss.
func NewExchanger(reg *registry.Client, verifier *credential.Verifier, transport PeerTransport, peerBreaker *breaker.Breaker, limiter ratelimit.Limiter, cacheTTL time.Duration) *Exchanger {
	return &Exchanger{registry: reg, verifier: verifier, transport: transport, peerBreaker: peerBreaker, limiter: limiter, cacheTTL: cacheTTL}
}

// RequestRole returns proof that agentID holds requiredRole, consulting the
// verified-role cache first and falling back to a live role-credential
// exchange with the peer (§4.6).
func (e *Exchanger) RequestRole(ctx context.Context, agentID, requiredRole, reqContext string) (*registry.VerifiedRole, error) {
	cached, err := e.registry.GetVerifiedRole(ctx, agentID, requiredRole)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	decision, err := e.limiter.Admit(ctx, "role", agentID)
	if err != nil {
		return nil, err
	}
	if !decision.Admitted {
		return nil, ratelimit.DeniedError(decision)
	}

	nonce, err := newNonce()
	if err != nil {
		return nil, apierrors.New(apierrors.ConfigurationInvalid, "failed to generate nonce", err)
	}

	req := RoleRequest{Type: MessageTypeRequest, RequiredRole: requiredRole, Context: reqContext, Nonce: nonce}

	var resp RoleResponse
	sendErr := e.peerBreaker.Call(ctx, func(ctx context.Context) error {
		r, err := e.transport.Send(ctx, agentID, req)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if sendErr != nil {
		return nil, sendErr
	}

	if resp.Nonce != nonce {
		return nil, apierrors.NewNonceMismatch()
	}
	if resp.Presentation == nil {
		reason := resp.Error
		if reason == "" {
			reason = "peer did not return a presentation"
		}
		return nil, apierrors.NewRoleCredentialRefused(reason)
	}

	claims, err := e.verifier.Verify(ctx, *resp.Presentation)
	if err != nil {
		return nil, err
	}

	var issuer string
	found := false
	for _, claim := range claims {
		if claim.Role == requiredRole {
			issuer = claim.Issuer
			found = true
			break
		}
	}
	if !found {
		return nil, apierrors.NewRoleAbsent(requiredRole)
	}

	hash, err := credential.HashPresentation(*resp.Presentation)
	if err != nil {
		return nil, apierrors.NewCredentialMalformed(err)
	}

	now := time.Now()
	expiresAt := now.Add(e.cacheTTL)
	for _, cred := range resp.Presentation.Credentials {
		if cred.Issuer != issuer {
			continue
		}
		if cred.ExpirationDate == "" {
			continue
		}
		if t, parseErr := time.Parse(time.RFC3339, cred.ExpirationDate); parseErr == nil && t.Before(expiresAt) {
			expiresAt = t
		}
	}

	row := registry.VerifiedRole{
		AgentID:        agentID,
		Role:           requiredRole,
		VerifiedAt:     now,
		ExpiresAt:      &expiresAt,
		CredentialHash: hash,
		IssuerDID:      issuer,
	}
	if err := e.registry.UpsertVerifiedRole(ctx, row); err != nil {
		return nil, err
	}
	return &row, nil
}
