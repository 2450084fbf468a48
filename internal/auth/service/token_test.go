package service_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueThenVerify(t *testing.T) {
	ts := newTokens(t, "primary-key-material", "")

	token, err := ts.Issue("alice@example.com")
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	claims, err := ts.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", ts.ExtractSubject(claims))
	require.True(t, ts.ValidateForUser(token, "alice@example.com"))
}

func TestTokenService_TokenShape(t *testing.T) {
	clock := newFakeClock()
	ts := newTokens(t, "primary-key-material", "")
	ts.Now = clock.Now

	token, exp, err := ts.IssueWithExpiry("bob@example.com")
	require.NoError(t, err)
	require.True(t, exp.Equal(clock.Now().Add(10*time.Hour)))

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwtx.Claims{})
	require.NoError(t, err)
	require.Equal(t, "primary", parsed.Header["kid"])
	require.Equal(t, "HS256", parsed.Header["alg"])

	claims := parsed.Claims.(*jwtx.Claims)
	require.Equal(t, "bob@example.com", claims.Subject)
	require.True(t, claims.IssuedAt.Time.Equal(clock.Now()))
	require.True(t, ts.ExtractExpiry(*claims).Equal(exp))
}

func TestTokenService_RotationCompatibility(t *testing.T) {
	before := newTokens(t, "old-key", "")
	token, err := before.Issue("carol@example.com")
	require.NoError(t, err)

	after := newTokens(t, "new-key", "old-key")
	claims, err := after.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", claims.Subject)
	require.True(t, after.ValidateForUser(token, "carol@example.com"))

	retired := newTokens(t, "new-key", "")
	_, err = retired.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
	require.False(t, retired.ValidateForUser(token, "carol@example.com"))
}

func TestTokenService_Expired(t *testing.T) {
	clock := newFakeClock()
	ts := newTokens(t, "primary-key-material", "")
	ts.Now = clock.Now

	token, err := ts.Issue("dave@example.com")
	require.NoError(t, err)

	clock.Advance(10*time.Hour - time.Second)
	_, err = ts.Verify(token)
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = ts.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrExpired)
	require.True(t, service.IsTokenError(err))
	require.False(t, ts.ValidateForUser(token, "dave@example.com"))
}

func TestTokenService_ValidateForUserNeverErrors(t *testing.T) {
	ts := newTokens(t, "primary-key-material", "")
	token, err := ts.Issue("erin@example.com")
	require.NoError(t, err)

	require.False(t, ts.ValidateForUser(token, "mallory@example.com"))
	require.False(t, ts.ValidateForUser("", "erin@example.com"))
	require.False(t, ts.ValidateForUser("not.a.token", "erin@example.com"))
}

func TestTokenService_Malformed(t *testing.T) {
	ts := newTokens(t, "primary-key-material", "previous-key")
	_, err := ts.Verify("definitely-not-a-jwt")
	require.ErrorIs(t, err, jwtx.ErrMalformed)
}

func TestNewTokenService_RequiresPrimaryKey(t *testing.T) {
	_, err := service.NewTokenService(nil, 0)

	var cfgErr *jwtx.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.ErrorIs(t, err, jwtx.ErrNoPrimaryKey)
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	ts, err := service.NewTokenService(keys(t, "k", ""), 0)
	require.NoError(t, err)
	require.Equal(t, jwtx.DefaultTokenTTL, ts.TTL())
}
