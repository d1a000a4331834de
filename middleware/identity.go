// ABOUTME: Identity assertion codec for service-to-service callers
// ABOUTME: Mints and verifies HS256 JWTs carrying the session's user claims

package middleware

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityCodec mints short-lived identity assertions for callers that
// cannot hold a session cookie, and verifies them on the way back in. The
// upstream bearer token never leaves the server; these assertions only
// reference a session by its claims.
type IdentityCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewIdentityCodec returns a codec signing with the given secret. A nil
// codec is valid and refuses all tokens, which disables Bearer auth.
func NewIdentityCodec(secret string, ttl time.Duration) *IdentityCodec {
	if secret == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &IdentityCodec{secret: []byte(secret), ttl: ttl}
}

type identityClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Mint signs an assertion for the given user claims.
func (c *IdentityCodec) Mint(claims *UserClaims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Username: claims.Username,
		Roles:    claims.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", claims.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			Issuer:    "gallery-bff",
		},
	})
	return token.SignedString(c.secret)
}

// Verify parses and validates an assertion, returning the embedded claims.
func (c *IdentityCodec) Verify(tokenString string) (*UserClaims, error) {
	var claims identityClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithIssuer("gallery-bff"), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	var userID int
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return nil, fmt.Errorf("invalid subject claim")
	}
	if claims.Username == "" {
		return nil, fmt.Errorf("missing username claim")
	}

	return &UserClaims{
		UserID:   userID,
		Username: claims.Username,
		Roles:    claims.Roles,
	}, nil
}
