package service_test

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/aussiebroadwan/campus/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/campus/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func keys(t *testing.T, primary, previous string) *jwtx.KeyManager {
	t.Helper()

	opts := jwtx.KeyManagerOptions{Primary: base64.StdEncoding.EncodeToString([]byte(primary))}
	if previous != "" {
		opts.Previous = base64.StdEncoding.EncodeToString([]byte(previous))
	}
	km, err := jwtx.NewKeyManager(opts)
	require.NoError(t, err)
	return km
}

func newTokens(t *testing.T, primary, previous string) *service.TokenService {
	t.Helper()

	ts, err := service.NewTokenService(keys(t, primary, previous), jwtx.DefaultTokenTTL)
	require.NoError(t, err)
	return ts
}

// fakeClock is a settable clock safe for the sweeper goroutine.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeLookup is an in-memory user directory that counts calls.
type fakeLookup struct {
	users map[string]domain.User
	calls atomic.Int32
}

func (f *fakeLookup) FindByIdentifier(_ context.Context, identifier string) (domain.User, error) {
	f.calls.Add(1)
	u, ok := f.users[service.NormalizeIdentifier(identifier)]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func newSQLiteStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.FileDSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}
