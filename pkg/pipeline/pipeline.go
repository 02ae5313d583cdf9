package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
	"github.com/prassanna-ravishankar/phlow-go/pkg/observability"
	"github.com/prassanna-ravishankar/phlow-go/pkg/ratelimit"
	"github.com/prassanna-ravishankar/phlow-go/pkg/registry"
	"github.com/prassanna-ravishankar/phlow-go/pkg/roleexchange"
	"github.com/prassanna-ravishankar/phlow-go/pkg/token"
)

// Pipeline is the request-time orchestrator (C7), constructed once at
// startup from C1-C6 instances. It owns no cyclic wiring: Exchanger is
// itself already wired to the credential verifier it needs (§9 Design
// Notes).
type Pipeline struct {
	SelfAgentID string

	RateLimiter ratelimit.Limiter
	TokenCodec  *token.Codec
	Registry    *registry.Client
	Exchanger   *roleexchange.Exchanger
}

// New constructs a Pipeline. All fields are required except Exchanger,
// which may be nil if the host never passes a RequiredRole.
func New(selfAgentID string, limiter ratelimit.Limiter, codec *token.Codec, reg *registry.Client, exchanger *roleexchange.Exchanger) *Pipeline {
	return &Pipeline{
		SelfAgentID: selfAgentID,
		RateLimiter: limiter,
		TokenCodec:  codec,
		Registry:    reg,
		Exchanger:   exchanger,
	}
}

// Authenticate runs the S1-S7 state machine of §4.7. Order is mandatory:
// rate limiting before cryptographic work, registry lookup before
// signature verification, permission check before role exchange.
func (p *Pipeline) Authenticate(ctx context.Context, bearerToken, agentID string, opts Options) (*AuthContext, error) {
	start := time.Now()

	// S1: mint requestId, attach to the ambient context.
	requestID := uuid.NewString()
	ctx = observability.WithRequest(ctx, observability.RequestContext{RequestID: requestID, AgentID: agentID})
	ctx, span := observability.StartAuthSpan(ctx, agentID)

	authCtx, err := p.authenticate(ctx, bearerToken, agentID, opts, requestID)

	outcome := "success"
	if err != nil {
		outcome = string(kindOf(err))
		_ = p.Registry.RecordAuthEvent(ctx, registry.AuthEvent{
			AgentID:   agentID,
			Timestamp: time.Now(),
			EventType: "auth_failure",
			Success:   false,
			Metadata:  map[string]any{"kind": outcome},
		})
		observability.Emit(ctx, observability.EventAuthFailure, map[string]any{
			"agentId": agentID,
			"reason":  outcome,
		})
	}
	observability.ObserveAuthDuration(outcome, time.Since(start).Seconds())
	observability.EndAuthSpan(span, outcome, err)

	return authCtx, err
}

func (p *Pipeline) authenticate(ctx context.Context, bearerToken, agentID string, opts Options, requestID string) (*AuthContext, error) {
	// S2: rate limit before any cryptographic work.
	decision, err := p.RateLimiter.Admit(ctx, "auth", tokenHash(bearerToken))
	if err != nil {
		return nil, err
	}
	if !decision.Admitted {
		observability.Emit(ctx, observability.EventRateLimitDenied, map[string]any{"agentId": agentID})
		return nil, ratelimit.DeniedError(decision)
	}

	// S3: look up the peer's AgentCard before any signature verification,
	// since the card carries the public key verification needs.
	card, err := p.Registry.GetAgentCard(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apierrors.NewAgentUnknown(agentID)
	}

	publicKey, err := token.ParseRSAPublicKeyPEM([]byte(card.PublicKey))
	if err != nil {
		return nil, err
	}

	// S4: verify the token under the peer's public key.
	claims, err := p.TokenCodec.Verify(bearerToken, publicKey, token.VerifyOptions{
		Audience: p.SelfAgentID,
		Issuer:   agentID,
	})
	if err != nil {
		return nil, err
	}

	// S5: permission check is cheap; run it before any role exchange.
	if len(opts.RequiredPermissions) > 0 {
		if missing := missingPermissions(opts.RequiredPermissions, claims.Permissions); len(missing) > 0 {
			return nil, apierrors.NewPermissionsInsufficient(missing)
		}
	}

	// S6: role exchange, only if the caller asked for a role.
	var verifiedRoles []string
	if opts.RequiredRole != "" {
		if p.Exchanger == nil {
			return nil, apierrors.NewRoleAbsent(opts.RequiredRole)
		}
		row, err := p.Exchanger.RequestRole(ctx, agentID, opts.RequiredRole, "")
		if err != nil {
			return nil, err
		}
		verifiedRoles = append(verifiedRoles, row.Role)
		observability.Emit(ctx, observability.EventRoleVerified, map[string]any{
			"agentId": agentID,
			"role":    row.Role,
		})
	}

	// S7: best-effort audit event, then construct the immutable context.
	_ = p.Registry.RecordAuthEvent(ctx, registry.AuthEvent{
		AgentID:   agentID,
		Timestamp: time.Now(),
		EventType: "auth_success",
		Success:   true,
	})
	observability.Emit(ctx, observability.EventAuthSuccess, map[string]any{
		"agentId":   agentID,
		"tokenHash": tokenHash(bearerToken),
	})

	return &AuthContext{
		Agent:         *card,
		Claims:        claims,
		Token:         bearerToken,
		VerifiedRoles: verifiedRoles,
		RequestID:     requestID,
	}, nil
}

func tokenHash(t string) string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}

func missingPermissions(required, have []string) []string {
	haveSet := make(map[string]struct{}, len(have))
	for _, h := range have {
		haveSet[h] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		if _, ok := haveSet[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

func kindOf(err error) apierrors.Kind {
	if kind, ok := apierrors.KindOf(err); ok {
		return kind
	}
	return "unknown"
}
