package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// MFAHandler manages the caller's TOTP secret.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleEnroll handles POST /v1/auth/mfa/totp. The secret is only ever
// returned here.
//
//	@Summary		Enroll in TOTP
//	@Description	Generates a TOTP secret for the caller. Later logins must send a code.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.TOTPEnrollResponse	"secret, otpauth_url, issuer, account"
//	@Failure		401	{object}	authsdk.APIError			"Invalid or missing access token"
//	@Failure		409	{object}	authsdk.APIError			"conflict: already enrolled"
//	@Failure		500	{object}	authsdk.APIError			"server_error"
//	@Router			/v1/auth/mfa/totp [post].
func (h *MFAHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	p, ok := principal(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	enrollment, err := h.MFAService.EnrollTOTP(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, service.ErrCodeAlreadyEnrolled) {
			authsdk.ErrConflict.WriteError(w)
			return
		}
		log.Error("failed to enroll TOTP", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("TOTP enrolled")
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.TOTPEnrollResponse{
		Secret:  enrollment.Secret,
		URL:     enrollment.URL,
		Issuer:  enrollment.Issuer,
		Account: enrollment.Account,
	})
}

// HandleRemove handles DELETE /v1/auth/mfa/totp.
//
//	@Summary		Remove TOTP
//	@Description	Clears the caller's TOTP secret.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.APIError	"server_error"
//	@Router			/v1/auth/mfa/totp [delete].
func (h *MFAHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	p, ok := principal(r)
	if !ok {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.MFAService.RemoveTOTP(ctx, p.UserID); err != nil {
		slogx.FromContext(ctx).Error("failed to remove TOTP", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
