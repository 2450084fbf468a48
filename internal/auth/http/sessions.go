package http

import (
	"net/http"

	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
)

// ActiveCounter reports the number of unexpired sessions.
type ActiveCounter interface {
	ActiveCount() int
}

// ActiveSessionsHandler serves GET /v1/sessions/active.
//
//	@Summary		Active session count
//	@Description	Number of users holding an unexpired session. Admin only.
//	@Tags			Sessions
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.ActiveSessionsResponse	"active"
//	@Failure		401	{object}	authsdk.APIError				"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.APIError				"forbidden, account_disabled"
//	@Router			/v1/sessions/active [get].
func ActiveSessionsHandler(sessions ActiveCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.NoCache(w)
		httpx.WriteJSON(w, http.StatusOK, authsdk.ActiveSessionsResponse{
			Active: sessions.ActiveCount(),
		})
	}
}
