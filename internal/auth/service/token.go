package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/campus/pkg/jwtx"
)

// TokenService issues and verifies bearer tokens with the keys held by a
// jwtx.KeyManager. It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	ttl      time.Duration

	// Now is the clock for issuance and expiry checks. Defaults to time.Now.
	Now func() time.Time
}

// NewTokenService fails with a *jwtx.ConfigurationError when km has no
// primary key. A non-positive ttl falls back to jwtx.DefaultTokenTTL.
func NewTokenService(km *jwtx.KeyManager, ttl time.Duration) (*TokenService, error) {
	signer, err := jwtx.NewPrimarySigner(km)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	s := &TokenService{
		signer:   signer,
		verifier: jwtx.NewVerifierHS256(km),
		ttl:      ttl,
		Now:      time.Now,
	}
	s.verifier.Now = s.now
	return s, nil
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// TTL is the lifetime stamped into every issued token.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for identifier with the primary key.
func (s *TokenService) Issue(identifier string) (string, error) {
	token, _, err := s.IssueWithExpiry(identifier)
	return token, err
}

// IssueWithExpiry is Issue that also reports the exp it wrote, so the
// caller can register the session without parsing the token back.
func (s *TokenService) IssueWithExpiry(identifier string) (string, time.Time, error) {
	claims := jwtx.NewClaims(identifier, s.ttl, s.now())

	token, err := s.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, claims.Expiry(), nil
}

// Verify returns the claims of a token signed by any verification key.
// Errors are jwtx.ErrMalformed, jwtx.ErrInvalidSig or jwtx.ErrExpired.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	return s.verifier.Verify(token)
}

func (s *TokenService) ExtractSubject(claims jwtx.Claims) string {
	return claims.Subject
}

func (s *TokenService) ExtractExpiry(claims jwtx.Claims) time.Time {
	return claims.Expiry()
}

// ValidateForUser reports whether token verifies, names expected as its
// subject and has not expired. The failure reason is deliberately dropped.
func (s *TokenService) ValidateForUser(token, expected string) bool {
	claims, err := s.Verify(token)
	if err != nil {
		return false
	}
	if s.ExtractSubject(claims) != expected {
		return false
	}
	return s.now().Before(s.ExtractExpiry(claims))
}

// IsTokenError reports whether err is one of the verification failures,
// as opposed to a configuration or programming error.
func IsTokenError(err error) bool {
	return errors.Is(err, jwtx.ErrMalformed) ||
		errors.Is(err, jwtx.ErrInvalidSig) ||
		errors.Is(err, jwtx.ErrExpired)
}
