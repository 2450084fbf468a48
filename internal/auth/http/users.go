package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/service"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/aussiebroadwan/campus/pkg/authsdk"
	"github.com/aussiebroadwan/campus/pkg/httpx"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

// UsersHandler serves the admin user directory endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles POST /v1/users.
//
//	@Summary		Create user
//	@Description	Adds an account to the directory. Enabled defaults to true. Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CreateUserRequest	true	"email, password, role, enabled"
//	@Success		201		{object}	authsdk.UserResponse		"Created user"
//	@Failure		400		{object}	authsdk.APIError			"invalid_request"
//	@Failure		401		{object}	authsdk.APIError			"Invalid or missing access token"
//	@Failure		403		{object}	authsdk.APIError			"forbidden, account_disabled"
//	@Failure		409		{object}	authsdk.APIError			"conflict"
//	@Failure		500		{object}	authsdk.APIError			"server_error"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.CreateUserRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	u, err := h.UserService.CreateUser(ctx, service.NewUser{
		Email:    req.Email,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		Enabled:  enabled,
	})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrWeakPassword):
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.APIError{
			Code:        authsdk.ErrorCodeInvalidRequest,
			Description: err.Error(),
		})
		return
	case errors.Is(err, store.ErrAlreadyExists):
		authsdk.ErrConflict.WriteError(w)
		return
	default:
		log.Error("failed to create user", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("user created", "new_user_id", u.ID, "role", u.Role)
	httpx.WriteJSON(w, http.StatusCreated, userResponse(u))
}

// HandleSetEnabled handles PUT /v1/users/{id}/enabled. The change applies
// to the user's very next request.
//
//	@Summary		Enable or disable user
//	@Description	Flips the enabled flag. Tokens already issued to the user stop working immediately. Admin only.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			id		path	int							true	"User ID"
//	@Param			request	body	authsdk.SetEnabledRequest	true	"enabled"
//	@Success		204
//	@Failure		400	{object}	authsdk.APIError	"invalid_request"
//	@Failure		401	{object}	authsdk.APIError	"Invalid or missing access token"
//	@Failure		403	{object}	authsdk.APIError	"forbidden, account_disabled"
//	@Failure		404	{object}	authsdk.APIError	"not_found"
//	@Router			/v1/users/{id}/enabled [put].
func (h *UsersHandler) HandleSetEnabled(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	var req authsdk.SetEnabledRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10)).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.UserService.SetEnabled(ctx, id, req.Enabled); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			authsdk.ErrNotFound.WriteError(w)
			return
		}
		log.Error("failed to update user", "target_user_id", id, "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	log.Info("user enabled flag changed", "target_user_id", id, "enabled", req.Enabled)
	w.WriteHeader(http.StatusNoContent)
}

func userResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		Enabled:   u.Enabled,
		MFA:       u.RequiresCode(),
		CreatedAt: u.CreatedAt.UTC(),
	}
}
