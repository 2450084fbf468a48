package jwtx

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNoPrimaryKey is returned when no primary key material is configured.
var ErrNoPrimaryKey = errors.New("jwtx: primary signing key not configured")

// ConfigurationError reports unusable key configuration. It is fatal at
// startup and never produced per request.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("jwtx: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// KeyManagerOptions carries the base64 encoded key material from config.
type KeyManagerOptions struct {
	// Primary signs every new token. Required.
	Primary string

	// Previous is only tried when verifying, so tokens minted before a key
	// rotation stay valid until they expire. Optional.
	Previous string
}

// KeyManager owns the signing key set for the lifetime of the process.
// It is read-only after NewKeyManager returns and safe for concurrent use
// without locking.
type KeyManager struct {
	keys KeySet
}

// NewKeyManager decodes the configured key material. A missing or blank
// primary key is a *ConfigurationError wrapping ErrNoPrimaryKey.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if strings.TrimSpace(opts.Primary) == "" {
		return nil, &ConfigurationError{Field: "primary key", Err: ErrNoPrimaryKey}
	}

	primary, err := DecodeKey(opts.Primary)
	if err != nil {
		return nil, &ConfigurationError{Field: "primary key", Err: err}
	}

	var previous []byte
	if strings.TrimSpace(opts.Previous) != "" {
		previous, err = DecodeKey(opts.Previous)
		if err != nil {
			return nil, &ConfigurationError{Field: "previous key", Err: err}
		}
	}

	return &KeyManager{keys: KeySet{Primary: primary, Previous: previous}}, nil
}

// SigningKey returns the primary key used for issuance.
func (km *KeyManager) SigningKey() ([]byte, error) {
	if km == nil || len(km.keys.Primary) == 0 {
		return nil, &ConfigurationError{Field: "primary key", Err: ErrNoPrimaryKey}
	}
	return km.keys.Primary, nil
}

// VerificationKeys returns primary then previous (if configured).
func (km *KeyManager) VerificationKeys() []VerificationKey {
	if km == nil {
		return nil
	}
	return km.keys.Candidates()
}

// HasPrevious reports whether a rollover key is loaded.
func (km *KeyManager) HasPrevious() bool {
	return km != nil && km.keys.HasPrevious()
}

// DecodeKey accepts standard or URL-safe base64, padded or not.
func DecodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	for _, enc := range encodings {
		if b, err := enc.DecodeString(s); err == nil {
			if len(b) == 0 {
				return nil, errors.New("empty key material")
			}
			return b, nil
		}
	}

	return nil, errors.New("key material is not valid base64")
}
