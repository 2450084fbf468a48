package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// Notifier pushes a message to a user's open real-time connections.
type Notifier interface {
	SendToUser(identifier, destination, body string) int
}

// NotifyHandler serves POST /v1/realtime/users/{identifier}.
type NotifyHandler struct {
	Hub Notifier
}

// ServeHTTP godoc
//
//	@Summary		Notify a user
//	@Description	Pushes a MESSAGE frame to every open real-time connection of the user. Admin only.
//	@Tags			Realtime
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			identifier	path		string					true	"User email"
//	@Param			request		body		authsdk.NotifyRequest	true	"destination and body"
//	@Success		200			{object}	authsdk.NotifyResponse	"delivered"
//	@Failure		400			{object}	authsdk.APIError		"invalid_request"
//	@Failure		401			{object}	authsdk.APIError		"Invalid or missing access token"
//	@Failure		403			{object}	authsdk.APIError		"forbidden, account_disabled"
//	@Router			/v1/realtime/users/{identifier} [post].
func (h *NotifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	identifier := service.NormalizeIdentifier(r.PathValue("identifier"))
	if identifier == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var req authsdk.NotifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		log.Debug("bad notify body", "err", err)
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if strings.TrimSpace(req.Destination) == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	n := h.Hub.SendToUser(identifier, req.Destination, req.Body)
	log.Info("realtime notify", "target", identifier, "destination", req.Destination, "delivered", n)

	httpx.WriteJSON(w, http.StatusOK, authsdk.NotifyResponse{Delivered: n})
}
