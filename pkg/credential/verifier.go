package credential

import (
	"context"
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
	"github.com/prassanna-ravishankar/phlow-go/pkg/breaker"
)

// Verifier implements the presentation-verification algorithm of §4.5: it
// confirms every credential's proof validates under its issuer's
// DID-resolved key and extracts the verified {role, issuer} pairs.
type Verifier struct {
	resolver        DIDResolver
	resolverBreaker *breaker.Breaker
	now             func() time.Time
}

// NewVerifier constructs a Verifier. resolverBreaker wraps every call to
// resolver so a flaky DID registry degrades predictably (§4.3).
func NewVerifier(resolver DIDResolver, resolverBreaker *breaker.Breaker) *Verifier {
	return &Verifier{resolver: resolver, resolverBreaker: resolverBreaker, now: time.Now}
}

// Verify runs the full §4.5 algorithm against a presentation and returns
// the set of {role, issuer} pairs proved by its credentials.
func (v *Verifier) Verify(ctx context.Context, pres Presentation) ([]VerifiedRoleClaim, error) {
	if len(pres.Credentials) == 0 {
		return nil, apierrors.NewCredentialMalformed(nil)
	}

	claims := make([]VerifiedRoleClaim, 0, len(pres.Credentials))
	for _, cred := range pres.Credentials {
		if err := validateShape(cred); err != nil {
			return nil, err
		}

		if cred.Expired(v.now()) {
			return nil, apierrors.NewCredentialExpired()
		}

		doc, err := v.resolveIssuer(ctx, cred.Issuer)
		if err != nil {
			return nil, err
		}

		method, ok := doc.Find(cred.Proof.VerificationMethod)
		if !ok {
			return nil, apierrors.NewVerificationMethodNotFound(cred.Proof.VerificationMethod)
		}

		pubKey, err := method.Key()
		if err != nil {
			return nil, apierrors.NewVerificationMethodNotFound(cred.Proof.VerificationMethod)
		}

		signingInput, err := canonicalizationV1(cred)
		if err != nil {
			return nil, apierrors.NewCredentialMalformed(err)
		}

		if err := verifySignature(pubKey, signingInput, cred.Proof.ProofValue); err != nil {
			return nil, apierrors.NewCredentialSignatureInvalid(err)
		}

		for _, role := range cred.CredentialSubject.RoleValues() {
			claims = append(claims, VerifiedRoleClaim{Role: role, Issuer: cred.Issuer})
		}
	}

	if len(claims) == 0 {
		return nil, apierrors.NewCredentialMalformed(nil)
	}
	return claims, nil
}

func validateShape(c Credential) error {
	if c.Issuer == "" || c.Proof.VerificationMethod == "" || c.Proof.ProofValue == "" {
		return apierrors.NewCredentialMalformed(nil)
	}
	if c.CredentialSubject.RoleValues() == nil {
		return apierrors.NewCredentialMalformed(nil)
	}
	return nil
}

func (v *Verifier) resolveIssuer(ctx context.Context, issuer string) (Document, error) {
	var doc Document
	err := v.resolverBreaker.Call(ctx, func(ctx context.Context) error {
		resolved, resolveErr := v.resolver.Resolve(ctx, issuer)
		if resolveErr != nil {
			return resolveErr
		}
		doc = resolved
		return nil
	})
	if err != nil {
		if _, ok := apierrors.KindOf(err); ok {
			return Document{}, err
		}
		return Document{}, apierrors.NewIssuerUnresolved(issuer, err)
	}
	return doc, nil
}

// verifySignature checks proofValue (base64-std encoded) against
// signingInput under pubKey. RSA keys verify RSASSA-PKCS1-v1_5 with SHA-256
// (matching the token codec's RS256); Ed25519 keys verify directly.
func verifySignature(pubKey any, signingInput []byte, proofValue string) error {
	sig, err := decodeProofValue(proofValue)
	if err != nil {
		return err
	}

	switch key := pubKey.(type) {
	case *rsa.PublicKey:
		digest := sha256.Sum256(signingInput)
		return rsa.VerifyPKCS1v15(key, crypto.SHA256, digest[:], sig)
	case ed25519.PublicKey:
		if !ed25519.Verify(key, signingInput, sig) {
			return errInvalidSignature
		}
		return nil
	default:
		return errUnsupportedKeyType
	}
}

var (
	errInvalidSignature   = errors.New("signature does not verify")
	errUnsupportedKeyType = errors.New("unsupported verification key type")
)

func decodeProofValue(proofValue string) ([]byte, error) {
	if sig, err := base64.StdEncoding.DecodeString(proofValue); err == nil {
		return sig, nil
	}
	return base64.RawURLEncoding.DecodeString(proofValue)
}
