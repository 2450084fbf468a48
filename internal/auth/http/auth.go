package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// AuthHandler serves the login, logout and whoami endpoints.
type AuthHandler struct {
	LoginService *service.LoginService

	// Now is used to compute expires_in. Defaults to time.Now.
	Now func() time.Time
}

// HandleLogin handles POST /v1/auth/login with form fields email,
// password and, for accounts with a TOTP secret, code.
//
//	@Summary		Log in
//	@Description	Exchanges email and password (plus a TOTP code when enrolled) for a bearer token.
//	@Description	Five consecutive failures block the email until a successful attempt.
//	@Tags			Auth
//	@Accept			x-www-form-urlencoded
//	@Produce		json
//	@Param			email		formData	string					true	"Account email"
//	@Param			password	formData	string					true	"Account password"
//	@Param			code		formData	string					false	"TOTP code, required once enrolled"
//	@Success		200			{object}	authsdk.LoginResponse	"access_token, token_type, expires_in, expires_at"
//	@Failure		400			{object}	authsdk.APIError		"invalid_request"
//	@Failure		401			{object}	authsdk.APIError		"invalid_credentials, code_required, invalid_code"
//	@Failure		403			{object}	authsdk.APIError		"account_disabled"
//	@Failure		429			{object}	authsdk.APIError		"account_locked or rate limited"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	req := service.LoginRequest{
		Identifier: strings.TrimSpace(r.PostFormValue("email")),
		Password:   r.PostFormValue("password"),
		Code:       strings.TrimSpace(r.PostFormValue("code")),
	}
	if req.Identifier == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	res, err := h.LoginService.Login(ctx, req)
	if err != nil {
		apiErr := loginError(err)
		if apiErr == authsdk.ErrServerError {
			log.Error("login failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		AccessToken: res.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(res.ExpiresAt.Sub(now).Seconds()),
		ExpiresAt:   res.ExpiresAt.UTC(),
	})
}

func loginError(err error) *authsdk.APIError {
	switch {
	case errors.Is(err, service.ErrAccountLocked):
		return authsdk.ErrAccountLocked
	case errors.Is(err, service.ErrInvalidCredentials):
		return authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrAccountDisabled):
		return authsdk.ErrAccountDisabled
	case errors.Is(err, service.ErrCodeRequired):
		return authsdk.ErrCodeRequired
	case errors.Is(err, service.ErrInvalidCode):
		return authsdk.ErrInvalidCode
	default:
		return authsdk.ErrServerError
	}
}

// HandleLogout handles POST /v1/auth/logout. The token itself stays valid
// until it expires, only the active session entry is dropped.
//
//	@Summary		Log out
//	@Description	Removes the caller from the active session count.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.APIError	"account_disabled"
//	@Router			/v1/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	h.LoginService.Logout(r.Context(), p)
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me.
//
//	@Summary		Current principal
//	@Description	Returns the principal resolved from the bearer token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.PrincipalResponse	"identifier, user_id, role, enabled"
//	@Failure		401	{object}	authsdk.APIError			"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.APIError			"account_disabled"
//	@Router			/v1/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.PrincipalResponse{
		Identifier: p.Identifier,
		UserID:     p.UserID,
		Role:       p.Role,
		Enabled:    p.Enabled,
	})
}
