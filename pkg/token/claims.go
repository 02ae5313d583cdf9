// Package token implements the bearer-token codec (sign/verify/decode) used
// by the authentication pipeline. Tokens are RS256-signed JWTs; the codec
// pins the signing algorithm at construction time and rejects any token
// whose header declares a different one, including "none".
package token

import "github.com/golang-jwt/jwt/v5"

// Claims is the decoded payload of a bearer token.
type Claims struct {
	Subject     string         `json:"sub"`
	Issuer      string         `json:"iss"`
	Audience    string         `json:"aud"`
	IssuedAt    int64          `json:"iat"`
	ExpiresAt   int64          `json:"exp"`
	Permissions []string       `json:"permissions"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// jwtClaims is the wire shape handed to golang-jwt, which expects
// jwt.Claims-satisfying accessor methods.
type jwtClaims struct {
	Permissions []string       `json:"permissions"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	jwt.RegisteredClaims
}

func toJWTClaims(c Claims) jwtClaims {
	return jwtClaims{
		Permissions: c.Permissions,
		Metadata:    c.Metadata,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.Subject,
			Issuer:    c.Issuer,
			Audience:  jwt.ClaimStrings{c.Audience},
			IssuedAt:  jwt.NewNumericDate(unixSeconds(c.IssuedAt)),
			ExpiresAt: jwt.NewNumericDate(unixSeconds(c.ExpiresAt)),
		},
	}
}

func fromJWTClaims(c *jwtClaims) Claims {
	aud := ""
	if len(c.Audience) > 0 {
		aud = c.Audience[0]
	}
	var iat, exp int64
	if c.IssuedAt != nil {
		iat = c.IssuedAt.Unix()
	}
	if c.ExpiresAt != nil {
		exp = c.ExpiresAt.Unix()
	}
	return Claims{
		Subject:     c.Subject,
		Issuer:      c.Issuer,
		Audience:    aud,
		IssuedAt:    iat,
		ExpiresAt:   exp,
		Permissions: c.Permissions,
		Metadata:    c.Metadata,
	}
}
