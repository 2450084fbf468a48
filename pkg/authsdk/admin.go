package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// CreateUser adds an account to the directory. Admin only.
func (s *Session) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/users",
		bytes.NewReader(payload),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserEnabled enables or disables an account. Admin only.
func (s *Session) SetUserEnabled(ctx context.Context, userID int64, enabled bool) error {
	payload, err := json.Marshal(SetEnabledRequest{Enabled: enabled})
	if err != nil {
		return err
	}

	path := "/v1/users/" + strconv.FormatInt(userID, 10) + "/enabled"
	resp, err := s.doAuthRequest(ctx, http.MethodPut, path,
		bytes.NewReader(payload),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// EnrollTOTP creates a one-time code secret for the caller. Subsequent
// logins must send a code.
func (s *Session) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/mfa/totp", nil, nil)
	if err != nil {
		return nil, err
	}

	var out TOTPEnrollResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveTOTP clears the caller's one-time code secret.
func (s *Session) RemoveTOTP(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/auth/mfa/totp", nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
