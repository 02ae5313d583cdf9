package credential

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Sign canonicalizes cred (per canonicalizationV1) and fills proof.proofValue
// with a base64-std-encoded signature under privateKey. It is the
// credential-holding peer's half of §4.5/§4.6: the verifier's
// verifySignature must accept whatever this produces.
func Sign(cred Credential, privateKey any) (Credential, error) {
	signingInput, err := canonicalizationV1(cred)
	if err != nil {
		return Credential{}, err
	}

	var sig []byte
	switch key := privateKey.(type) {
	case *rsa.PrivateKey:
		digest := sha256.Sum256(signingInput)
		sig, err = rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
		if err != nil {
			return Credential{}, err
		}
	case ed25519.PrivateKey:
		sig = ed25519.Sign(key, signingInput)
	default:
		return Credential{}, fmt.Errorf("credential: unsupported signing key type %T", privateKey)
	}

	signed := cred
	signed.Proof.ProofValue = base64.StdEncoding.EncodeToString(sig)
	return signed, nil
}
