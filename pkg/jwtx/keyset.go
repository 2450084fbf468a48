package jwtx

import "bytes"

// Key identifiers written into the "kid" header. Tokens are always issued
// under KIDPrimary; KIDPrevious only ever shows up on the verification side.
const (
	KIDPrimary  = "primary"
	KIDPrevious = "previous"
)

// VerificationKey is one candidate secret tried when verifying a token.
type VerificationKey struct {
	KID    string
	Secret []byte
}

// KeySet is the symmetric signing key set loaded at startup. It is never
// mutated after construction, rotating keys means redeploying with new
// configuration.
type KeySet struct {
	Primary  []byte
	Previous []byte
}

// HasPrevious reports whether a distinct previous key is configured.
func (k KeySet) HasPrevious() bool {
	return len(k.Previous) > 0 && !bytes.Equal(k.Previous, k.Primary)
}

// Candidates returns the verification keys in priority order: primary first,
// then previous if present. New key slots go at the end of this list.
func (k KeySet) Candidates() []VerificationKey {
	keys := make([]VerificationKey, 0, 2)
	if len(k.Primary) > 0 {
		keys = append(keys, VerificationKey{KID: KIDPrimary, Secret: k.Primary})
	}
	if k.HasPrevious() {
		keys = append(keys, VerificationKey{KID: KIDPrevious, Secret: k.Previous})
	}
	return keys
}
