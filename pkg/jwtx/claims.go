package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of a bearer token issued at login. A
// student session lasts a working day, so the token does too.
const DefaultTokenTTL = 10 * time.Hour

// Claims are the bearer token claims. Only the registered sub/iat/exp
// claims are populated; identity details are resolved from the user
// directory on every request instead of being baked into the token.
type Claims struct {
	jwt.RegisteredClaims
}

// NewClaims builds claims for subject issued at now and expiring after ttl.
func NewClaims(subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// Expiry returns the exp claim, or the zero time when it is missing.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// ValidateExpiry ensures the token carries an exp claim that is still in
// the future at now.
func (c *Claims) ValidateExpiry(now time.Time) error {
	return c.ValidateExpiryWithLeeway(now, 0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	// A token without exp never expires, which we don't hand out.
	if c.ExpiresAt == nil {
		return ErrExpired
	}

	if !now.Before(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	return nil
}
