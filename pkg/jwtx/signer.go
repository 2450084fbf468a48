package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
}

// HS256Signer signs tokens with a shared HMAC-SHA256 secret.
type HS256Signer struct {
	kid string
	key []byte
}

// NewSignerHS256 creates an HS256 signer that stamps kid into the header.
func NewSignerHS256(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty HS256 secret")
	}
	return &HS256Signer{kid: kid, key: secret}, nil
}

// NewPrimarySigner returns the signer for the primary key of km.
func NewPrimarySigner(km *KeyManager) (*HS256Signer, error) {
	key, err := km.SigningKey()
	if err != nil {
		return nil, err
	}
	return NewSignerHS256(KIDPrimary, key)
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}
