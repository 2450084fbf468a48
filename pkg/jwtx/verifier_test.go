package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func mustKeyManager(t *testing.T, primary, previous string) *jwtx.KeyManager {
	t.Helper()
	opts := jwtx.KeyManagerOptions{Primary: b64(primary)}
	if previous != "" {
		opts.Previous = b64(previous)
	}
	km, err := jwtx.NewKeyManager(opts)
	require.NoError(t, err)
	return km
}

func mustSign(t *testing.T, km *jwtx.KeyManager, claims jwtx.Claims) string {
	t.Helper()
	signer, err := jwtx.NewPrimarySigner(km)
	require.NoError(t, err)
	token, err := signer.Sign(claims)
	require.NoError(t, err)
	return token
}

func TestHS256_SignAndVerifyRoundTrip(t *testing.T) {
	km := mustKeyManager(t, "primary-secret-0123456789abcdef", "")
	token := mustSign(t, km, jwtx.NewClaims("alice@example.com", time.Hour, time.Now()))

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwtx.Claims{})
	require.NoError(t, err)
	require.Equal(t, jwtx.KIDPrimary, parsed.Header["kid"])
	require.Equal(t, "HS256", parsed.Header["alg"])

	claims, err := jwtx.NewVerifierHS256(km).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
}

func TestHS256Verifier_Rotation(t *testing.T) {
	oldKeys := mustKeyManager(t, "old-secret", "")
	token := mustSign(t, oldKeys, jwtx.NewClaims("bob@example.com", time.Hour, time.Now()))

	t.Run("accepted while old key is previous", func(t *testing.T) {
		rotated := mustKeyManager(t, "new-secret", "old-secret")
		claims, err := jwtx.NewVerifierHS256(rotated).Verify(token)
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", claims.Subject)
	})

	t.Run("rejected once old key is dropped", func(t *testing.T) {
		dropped := mustKeyManager(t, "new-secret", "")
		_, err := jwtx.NewVerifierHS256(dropped).Verify(token)
		require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	})
}

func TestHS256Verifier_Errors(t *testing.T) {
	km := mustKeyManager(t, "primary", "previous")
	v := jwtx.NewVerifierHS256(km)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", jwtx.ErrMalformed},
		{"garbage", "not-a-jwt", jwtx.ErrMalformed},
		{"bad base64 segments", "a.b.c", jwtx.ErrMalformed},
		{
			name:  "foreign key",
			token: mustSign(t, mustKeyManager(t, "someone-else", ""), jwtx.NewClaims("eve", time.Hour, time.Now())),
			want:  jwtx.ErrInvalidSig,
		},
		{
			name:  "expired under valid key",
			token: mustSign(t, km, jwtx.NewClaims("carol", time.Minute, time.Now().Add(-time.Hour))),
			want:  jwtx.ErrExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHS256Verifier_RejectsOtherAlgorithms(t *testing.T) {
	km := mustKeyManager(t, "primary", "")
	key, err := km.SigningKey()
	require.NoError(t, err)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, jwtx.NewClaims("mallory", time.Hour, time.Now()))
	raw, err := tok.SignedString(key)
	require.NoError(t, err)

	_, err = jwtx.NewVerifierHS256(km).Verify(raw)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestHS256Verifier_Clock(t *testing.T) {
	km := mustKeyManager(t, "primary", "")
	issued := time.Now()
	token := mustSign(t, km, jwtx.NewClaims("dave", time.Minute, issued))

	v := jwtx.NewVerifierHS256(km)
	v.Now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err := v.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	v.Leeway = 5 * time.Minute
	_, err = v.Verify(token)
	require.NoError(t, err)
}
