package roleexchange

import (
	"context"

	"github.com/prassanna-ravishankar/phlow-go/pkg/credential"
)

// CredentialStore is the client-side seam: the credentials a peer holds
// about itself, searchable by role. It has no dependency on Exchanger or
// anything in server.go, per the no-back-edge design (§9).
type CredentialStore interface {
	CredentialFor(ctx context.Context, role string) (credential.Credential, bool, error)
}

// HandleRoleRequest is the client-side procedure (§4.6): locate a held
// credential matching msg.RequiredRole, sign it, and echo msg.Nonce. It is
// a free function, not a method on Exchanger or the pipeline, so the
// peer-messaging entry point never depends on the verifying side.
func HandleRoleRequest(ctx context.Context, store CredentialStore, privateKey any, msg RoleRequest) (RoleResponse, error) {
	cred, ok, err := store.CredentialFor(ctx, msg.RequiredRole)
	if err != nil {
		return RoleResponse{}, err
	}
	if !ok {
		return RoleResponse{
			Type:  MessageTypeResponse,
			Nonce: msg.Nonce,
			Error: "no credential held for requested role",
		}, nil
	}

	signed, err := credential.Sign(cred, privateKey)
	if err != nil {
		return RoleResponse{}, err
	}

	return RoleResponse{
		Type:         MessageTypeResponse,
		Nonce:        msg.Nonce,
		Presentation: &credential.Presentation{Credentials: []credential.Credential{signed}},
	}, nil
}
