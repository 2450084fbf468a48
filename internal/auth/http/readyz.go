package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
)

// Pinger is satisfied by store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SigningKeySource is satisfied by *jwtx.KeyManager.
type SigningKeySource interface {
	SigningKey() ([]byte, error)
}

// ReadyzHandler godoc
//
//	@Summary		Readiness check
//	@Description	Answers 503 when the database or the signing key is not usable.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(startTime time.Time, version string, db Pinger, keys SigningKeySource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Signer:   "ok",
		}
		status := "ok"
		code := http.StatusOK

		if err := db.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		if _, err := keys.SigningKey(); err != nil {
			checks.Signer = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, authsdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
