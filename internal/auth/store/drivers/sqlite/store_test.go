package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/aussiebroadwan/campus/internal/auth/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsers_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	users := newTestStore(t).Users()

	empty, err := users.IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	id, err := users.CreateUser(ctx, domain.User{
		Email:        "Alice@Example.com",
		PasswordHash: "$argon2id$stub",
		Role:         domain.RoleTeacher,
		Enabled:      true,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	byEmail, err := users.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)
	require.Equal(t, domain.RoleTeacher, byEmail.Role)
	require.True(t, byEmail.Enabled)
	require.Empty(t, byEmail.TOTPSecret)
	require.False(t, byEmail.CreatedAt.IsZero())

	byID, err := users.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, byEmail, byID)

	empty, err = users.IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)
}

func TestUsers_DefaultsAndConstraints(t *testing.T) {
	ctx := context.Background()
	users := newTestStore(t).Users()

	id, err := users.CreateUser(ctx, domain.User{Email: "bob@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	u, err := users.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.RoleStudent, u.Role)
	require.False(t, u.Enabled)

	_, err = users.CreateUser(ctx, domain.User{Email: "BOB@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = users.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = users.GetUserByID(ctx, 9999)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_Updates(t *testing.T) {
	ctx := context.Background()
	users := newTestStore(t).Users()

	id, err := users.CreateUser(ctx, domain.User{Email: "carol@example.com", PasswordHash: "old", Enabled: true})
	require.NoError(t, err)

	require.NoError(t, users.SetEnabled(ctx, id, false))
	require.NoError(t, users.UpdateRole(ctx, id, domain.RoleAdmin))
	require.NoError(t, users.UpdatePasswordHash(ctx, id, "new"))
	require.NoError(t, users.UpdateTOTPSecret(ctx, id, "JBSWY3DPEHPK3PXP"))

	u, err := users.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.False(t, u.Enabled)
	require.Equal(t, domain.RoleAdmin, u.Role)
	require.Equal(t, "new", u.PasswordHash)
	require.Equal(t, "JBSWY3DPEHPK3PXP", u.TOTPSecret)

	require.NoError(t, users.UpdateTOTPSecret(ctx, id, ""))
	u, err = users.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.Empty(t, u.TOTPSecret)

	require.ErrorIs(t, users.SetEnabled(ctx, 4242, true), store.ErrNotFound)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	boom := errors.New("boom")

	err := st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, domain.User{Email: "dave@example.com", PasswordHash: "h"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = st.Users().GetUserByEmail(ctx, "dave@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, domain.User{Email: "dave@example.com", PasswordHash: "h"})
		return err
	}))

	_, err = st.Users().GetUserByEmail(ctx, "dave@example.com")
	require.NoError(t, err)
}
