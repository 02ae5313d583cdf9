// Package httpadapter is the thin, optional net/http host integration for
// the authentication pipeline (§4.7's host integration notes, §6). It is
// not the core: a host using a different web framework extracts the same
// two inputs (bearer token, agent id) and calls pipeline.Authenticate
// directly instead.
package httpadapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
	"github.com/prassanna-ravishankar/phlow-go/pkg/pipeline"
)

type authContextKey struct{}

// FromRequest returns the AuthContext Middleware attached to the request,
// if authentication succeeded.
func FromRequest(r *http.Request) (*pipeline.AuthContext, bool) {
	authCtx, ok := r.Context().Value(authContextKey{}).(*pipeline.AuthContext)
	return authCtx, ok
}

// OptionsFunc derives per-request Options (e.g. a required role scoped to
// the route) from the inbound request.
type OptionsFunc func(r *http.Request) pipeline.Options

// Middleware extracts the bearer token (Authorization: Bearer <token>) and
// the peer agent id (X-Phlow-Agent-Id, case-insensitive per §6), calls
// Authenticate, and either attaches the resulting AuthContext to the
// request context or writes the mapped error response itself.
func Middleware(p *pipeline.Pipeline, optsFunc OptionsFunc) func(http.Handler) http.Handler {
	if optsFunc == nil {
		optsFunc = func(*http.Request) pipeline.Options { return pipeline.Options{} }
	}
	return func(next http.Handler) http.Handler {
		return apierrors.ErrorHandler(func(w http.ResponseWriter, r *http.Request) error {
			token, err := bearerToken(r)
			if err != nil {
				return err
			}
			agentID := r.Header.Get("X-Phlow-Agent-Id")
			if agentID == "" {
				return apierrors.NewAgentUnknown("")
			}

			authCtx, err := p.Authenticate(r.Context(), token, agentID, optsFunc(r))
			if err != nil {
				return err
			}

			ctx := context.WithValue(r.Context(), authContextKey{}, authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
			return nil
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", apierrors.NewTokenMalformed(nil)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", apierrors.NewTokenMalformed(nil)
	}
	return token, nil
}
