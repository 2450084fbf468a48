package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
)

// HS256Verifier checks tokens against every verification key of a
// KeyManager in priority order. The first key whose signature matches wins.
type HS256Verifier struct {
	keys   *KeyManager
	parser *jwt.Parser

	// Leeway allows small clock skew when validating exp.
	Leeway time.Duration

	// Now is the clock used for the expiry check. Defaults to time.Now.
	Now func() time.Time
}

// NewVerifierHS256 creates a verifier over the keys held by km.
func NewVerifierHS256(km *KeyManager) *HS256Verifier {
	return &HS256Verifier{
		keys: km,
		// Expiry is checked by hand after the signature so we can tell
		// "bad signature" apart from "good signature, too old".
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
		Now: time.Now,
	}
}

// Verify returns ErrMalformed for structurally broken tokens without
// touching any key, ErrInvalidSig when no key matches, and ErrExpired when
// the signature is fine but exp has passed.
func (v *HS256Verifier) Verify(raw string) (Claims, error) {
	if _, _, err := v.parser.ParseUnverified(raw, &Claims{}); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, ErrMalformed
		}
		// Unknown alg and friends are well formed but can never verify, the
		// key loop below reports them as a bad signature.
	}

	for _, key := range v.keys.VerificationKeys() {
		claims, ok := v.tryKey(raw, key)
		if !ok {
			continue
		}

		if err := claims.ValidateExpiryWithLeeway(v.now(), v.Leeway); err != nil {
			return Claims{}, err
		}
		return *claims, nil
	}

	return Claims{}, ErrInvalidSig
}

func (v *HS256Verifier) tryKey(raw string, key VerificationKey) (*Claims, bool) {
	token, err := v.parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return key.Secret, nil
	})
	if err != nil || token == nil {
		return nil, false
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, false
	}
	return claims, true
}

func (v *HS256Verifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}
