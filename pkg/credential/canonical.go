package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/cyberphone/json-canonicalization/go/jsoncanonicalizer"
)

// canonicalizationV1 reproduces the canonical signing input for a
// credential: the credential with an empty proof.proofValue, serialized
// per RFC 8785 (JSON Canonicalization Scheme). Signer and verifier must
// agree on this transform (§4.5 step d); this is the one this core ships.
func canonicalizationV1(c Credential) ([]byte, error) {
	unsigned := c
	unsigned.Proof.ProofValue = ""

	raw, err := json.Marshal(unsigned)
	if err != nil {
		return nil, err
	}
	return jsoncanonicalizer.Transform(raw)
}

// HashPresentation returns the hex-encoded sha256 of a presentation's
// canonical (RFC 8785) form, used as VerifiedRole.CredentialHash (§4.6
// step 7) so the cache row is bound to the exact bytes that were verified.
func HashPresentation(p Presentation) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
