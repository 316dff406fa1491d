// Package auth owns the session lifecycle against the koola identity
// endpoints: decoding token claims, deciding expiry, and orchestrating
// login, refresh and logout.
//
// Tokens are decoded without verifying the signature. Signature trust is the
// issuing server's job; this client reads claims only for local decisions
// like expiry display and pre-flight checks, never for authorization.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/PhucVu3008/koola-admin/internal/store"
)

// ErrMalformedToken is returned when a token is not a three-segment signed
// token or its payload is not valid JSON. Callers treat such tokens as
// expired; decoding failures are never fatal.
var ErrMalformedToken = errors.New("malformed token")

// Claims is the decoded token payload.
type Claims struct {
	ID        int64
	Email     string
	Roles     []store.Role
	IssuedAt  int64 // seconds since epoch
	ExpiresAt int64 // seconds since epoch
}

// DecodeClaims parses the payload segment of a signed token without
// verifying its signature.
func DecodeClaims(raw string) (*Claims, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformedToken)
	}

	claims := &Claims{}

	if id, ok := mapClaims["id"].(float64); ok {
		claims.ID = int64(id)
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = int64(iat)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		claims.ExpiresAt = int64(exp)
	}

	if roles, ok := mapClaims["roles"].([]any); ok {
		for _, r := range roles {
			role, ok := r.(map[string]any)
			if !ok {
				continue
			}
			var parsed store.Role
			if id, ok := role["id"].(float64); ok {
				parsed.ID = int64(id)
			}
			if name, ok := role["name"].(string); ok {
				parsed.Name = name
			}
			claims.Roles = append(claims.Roles, parsed)
		}
	}

	return claims, nil
}
