package token

import (
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/prassanna-ravishankar/phlow-go/internal/durationfmt"
	"github.com/prassanna-ravishankar/phlow-go/pkg/apierrors"
)

func unixSeconds(sec int64) time.Time {
	return time.Unix(sec, 0)
}

// Codec signs and verifies bearer tokens with a single pinned algorithm.
// The zero value is not usable; construct with NewCodec.
type Codec struct {
	method jwt.SigningMethod
}

// NewCodec constructs a Codec pinned to RS256. Only RSA key material is
// accepted; this is the only algorithm spec'd for the core.
func NewCodec() *Codec {
	return &Codec{method: jwt.SigningMethodRS256}
}

// Sign fills iat = now and exp = now + ttl, then signs the claims with
// privateKey. ttl is parsed by durationfmt (accepts s|m|h|d suffixes by the
// time it reaches the pipeline; callers that already have a time.Duration
// should call SignWithTTL directly).
func (c *Codec) Sign(claims Claims, privateKey *rsa.PrivateKey, ttl string) (string, error) {
	d, err := durationfmt.Parse(ttl)
	if err != nil {
		return "", apierrors.NewConfigurationInvalid("ttl", err.Error())
	}
	return c.SignWithTTL(claims, privateKey, d)
}

// SignWithTTL is Sign with an already-parsed duration.
func (c *Codec) SignWithTTL(claims Claims, privateKey *rsa.PrivateKey, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = now.Unix()
	claims.ExpiresAt = now.Add(ttl).Unix()

	tok := jwt.NewWithClaims(c.method, toJWTClaims(claims))
	signed, err := tok.SignedString(privateKey)
	if err != nil {
		return "", apierrors.New(apierrors.TokenMalformed, "failed to sign token", err)
	}
	return signed, nil
}

// VerifyOptions constrains acceptance beyond signature and expiry.
type VerifyOptions struct {
	Audience      string
	Issuer        string
	AllowExpired  bool
	LeewaySeconds int64
}

// Verify checks the token's structure, signature, algorithm, expiry and
// claim constraints, in that order, returning the decoded Claims on success.
func (c *Codec) Verify(tokenString string, publicKey *rsa.PublicKey, opts VerifyOptions) (Claims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return Claims{}, apierrors.NewTokenMalformed(nil)
	}

	// Expiry is checked manually below so that AllowExpired and
	// LeewaySeconds apply exactly as specified rather than through the
	// library's own clock-skew handling.
	var claims jwtClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return publicKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, apierrors.NewTokenMalformed(err)
		default:
			return Claims{}, apierrors.NewTokenSignatureInvalid(err)
		}
	}

	decoded := fromJWTClaims(&claims)

	if decoded.IssuedAt > decoded.ExpiresAt {
		return Claims{}, apierrors.NewTokenClaimMismatch("iat must not be after exp")
	}

	leeway := time.Duration(opts.LeewaySeconds) * time.Second
	if !opts.AllowExpired {
		expiry := unixSeconds(decoded.ExpiresAt).Add(leeway)
		if expiry.Before(time.Now()) {
			return Claims{}, apierrors.NewTokenExpired(nil)
		}
	}

	if opts.Issuer != "" && decoded.Issuer != opts.Issuer {
		return Claims{}, apierrors.NewTokenClaimMismatch("issuer does not match expected value")
	}
	if opts.Audience != "" && decoded.Audience != opts.Audience {
		return Claims{}, apierrors.NewTokenClaimMismatch("audience does not match expected value")
	}
	if decoded.Subject != decoded.Issuer {
		return Claims{}, apierrors.NewTokenClaimMismatch("subject must equal issuer")
	}

	return decoded, nil
}

// DecodeUnsafe parses the claims without checking the signature. It exists
// solely for expiry inspection in the rate-limiter keying path and test
// tooling, and must never be used as a substitute for Verify.
func (c *Codec) DecodeUnsafe(tokenString string) (Claims, error) {
	if strings.Count(tokenString, ".") != 2 {
		return Claims{}, apierrors.NewTokenMalformed(nil)
	}
	var claims jwtClaims
	parser := jwt.NewParser()
	_, _, err := parser.ParseUnverified(tokenString, &claims)
	if err != nil {
		return Claims{}, apierrors.NewTokenMalformed(err)
	}
	return fromJWTClaims(&claims), nil
}

