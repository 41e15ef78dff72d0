package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a JWT")

// Claims is what the client can read from an access token without the
// server's key. Nothing here is trusted for authorization.
type Claims struct {
	UserID    int64
	TokenType string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp is at or before now. Tokens
// without exp never expire client-side.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes the payload of an access token without verifying it.
func Inspect(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}

	var c Claims
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if tt, ok := mc["token_type"].(string); ok {
		c.TokenType = tt
	}
	switch v := mc["user_id"].(type) {
	case float64:
		c.UserID = int64(v)
	case string:
		_, _ = fmt.Sscan(v, &c.UserID)
	}
	return c, nil
}
