// Package credential implements the Verifiable Presentation verifier (§4.5):
// given a presentation, confirm every contained credential's proof
// validates under its issuer's DID-resolved key, and extract the verified
// roles.
package credential

import "time"

// Proof is the W3C-shaped proof block attached to a credential.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created,omitempty"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose,omitempty"`
	ProofValue         string `json:"proofValue"`
}

// CredentialSubject carries the asserted role(s). Role may be a single
// string or, per the W3C shape, an array; RoleValues normalizes either.
type CredentialSubject struct {
	ID   string `json:"id,omitempty"`
	Role any    `json:"role"`
}

// RoleValues normalizes CredentialSubject.Role to a slice regardless of
// whether it was encoded as a string or an array.
func (s CredentialSubject) RoleValues() []string {
	switch v := s.Role.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Credential is a single verifiable credential inside a presentation.
type Credential struct {
	Issuer            string             `json:"issuer"`
	IssuanceDate      string             `json:"issuanceDate"`
	ExpirationDate    string             `json:"expirationDate,omitempty"`
	CredentialSubject CredentialSubject  `json:"credentialSubject"`
	Proof             Proof              `json:"proof"`
}

// Expired reports whether the credential's expirationDate has passed.
func (c Credential) Expired(now time.Time) bool {
	if c.ExpirationDate == "" {
		return false
	}
	exp, err := time.Parse(time.RFC3339, c.ExpirationDate)
	if err != nil {
		return true
	}
	return !exp.After(now)
}

// Presentation wraps one or more credentials, per §3.
type Presentation struct {
	Credentials []Credential `json:"verifiableCredential"`
}

// VerifiedRoleClaim is one {role, issuer} pair extracted from a
// successfully verified presentation.
type VerifiedRoleClaim struct {
	Role   string
	Issuer string
}
