package token

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

// ParseRSAPublicKeyPEM decodes a PEM-encoded PKIX public key, as stored in
// an AgentCard, into the *rsa.PublicKey Verify expects.
func ParseRSAPublicKeyPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, apierrors.NewConfigurationInvalid("publicKey", "not valid PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apierrors.NewConfigurationInvalid("publicKey", err.Error())
	}
	rsaKey, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, apierrors.NewConfigurationInvalid("publicKey", "not an RSA public key")
	}
	return rsaKey, nil
}
