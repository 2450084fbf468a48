package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_PRIMARY_KEY", "cHJpbWFyeQ==")
	for _, k := range []string{"AUTH_PREVIOUS_KEY", "AUTH_TOKEN_TTL", "AUTH_MAX_ATTEMPTS", "SESSION_SWEEP_INTERVAL", "PORT"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	require.Equal(t, "cHJpbWFyeQ==", cfg.PrimaryKey)
	require.Empty(t, cfg.PreviousKey)
	require.Equal(t, 10*time.Hour, cfg.TokenTTL)
	require.Equal(t, 5, cfg.MaxAttempts)
	require.Equal(t, time.Minute, cfg.SessionSweepInterval)
	require.Equal(t, 8080, cfg.Port)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("AUTH_TOKEN_TTL", "2h")
	t.Setenv("AUTH_MAX_ATTEMPTS", "7")
	t.Setenv("SESSION_SWEEP_INTERVAL", "30")
	t.Setenv("PORT", "not-a-number")

	cfg := LoadConfig()

	require.Equal(t, 2*time.Hour, cfg.TokenTTL)
	require.Equal(t, 7, cfg.MaxAttempts)
	require.Equal(t, 30*time.Second, cfg.SessionSweepInterval)
	require.Equal(t, 8080, cfg.Port)
}
