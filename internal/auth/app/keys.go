package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/campus/pkg/jwtx"
)

// InitAuthKeys loads the HS256 key set from configuration. There is no
// generation fallback: a missing primary key stops startup, otherwise every
// restart would invalidate all outstanding tokens.
//
// Rotation is a redeploy: move the current primary into AUTH_PREVIOUS_KEY,
// set a new AUTH_PRIMARY_KEY, and drop the previous key once the longest
// token lifetime has passed.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Primary:  cfg.PrimaryKey,
		Previous: cfg.PreviousKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	logger.Info("signing keys loaded",
		"algorithm", "HS256",
		"previous_key", km.HasPrevious(),
		"token_ttl", cfg.TokenTTL,
	)
	if cfg.PreviousKey != "" && !km.HasPrevious() {
		logger.Warn("AUTH_PREVIOUS_KEY equals AUTH_PRIMARY_KEY, ignoring it")
	}

	return km, nil
}
