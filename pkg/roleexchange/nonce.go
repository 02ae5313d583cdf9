package roleexchange

import (
	"crypto/rand"
	"encoding/hex"
)

// newNonce mints a 128-bit random value, hex-encoded. crypto/rand rather
// than google/uuid: a UUIDv4 only carries 122 bits of entropy once its
// fixed version/variant bits are accounted for, short of the full 128 bits
// the nonce-binding property wants.
func newNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
