package identity_test

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/campus/internal/auth/identity"
	"github.com/stretchr/testify/require"
)

func TestPrincipalContext(t *testing.T) {
	_, ok := identity.FromContext(context.Background())
	require.False(t, ok)

	p := identity.Principal{Identifier: "alice@example.com", UserID: 1, Role: "teacher", Enabled: true}
	got, ok := identity.FromContext(identity.WithPrincipal(context.Background(), p))
	require.True(t, ok)
	require.Equal(t, p, got)

	require.True(t, got.HasRole("admin", "teacher"))
	require.False(t, got.HasRole("admin"))
	require.False(t, got.HasRole())
}
