// Package roleexchange implements the two-message role-credential exchange
// protocol (§4.6): a verifying agent requests proof of a role it hasn't
// cached, a peer responds with a signed presentation, and the nonce the
// peer echoes binds the response to that exact request.
package roleexchange

import "github.com/prassanna-ravishankar/phlow-go/pkg/credential"

const (
	MessageTypeRequest  = "role-credential-request"
	MessageTypeResponse = "role-credential-response"
)

// RoleRequest is sent by the verifying agent to a peer.
type RoleRequest struct {
	Type         string `json:"type"`
	RequiredRole string `json:"requiredRole"`
	Context      string `json:"context,omitempty"`
	Nonce        string `json:"nonce"`
}

// RoleResponse is the peer's answer. Exactly one of Presentation or Error
// is populated on a well-formed response.
type RoleResponse struct {
	Type         string                    `json:"type"`
	Nonce        string                    `json:"nonce"`
	Presentation *credential.Presentation  `json:"presentation,omitempty"`
	Error        string                    `json:"error,omitempty"`
}
