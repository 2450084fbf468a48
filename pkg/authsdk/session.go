package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrSessionExpired is returned locally when the token is past its expiry.
// There is no refresh grant, the caller has to log in again.
var ErrSessionExpired = errors.New("authsdk: session token expired")

// Session performs authenticated calls with a bearer token. It is safe for
// concurrent use.
type Session struct {
	client *SDKClient

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// AccessToken returns the bearer token, e.g. for a real-time CONNECT frame.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// ExpiresAt returns when the token stops being accepted.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

func (s *Session) validToken() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrSessionExpired
	}
	if !s.expiresAt.IsZero() && !time.Now().Before(s.expiresAt) {
		return "", ErrSessionExpired
	}
	return s.token, nil
}

// Me returns the principal the server resolved for this token.
func (s *Session) Me(ctx context.Context) (*PrincipalResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/auth/me", nil, nil)
	if err != nil {
		return nil, err
	}

	var out PrincipalResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout drops the server-side active session entry and clears the token.
func (s *Session) Logout(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/logout", nil, nil)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// ActiveSessions returns the number of currently active sessions. Admin only.
func (s *Session) ActiveSessions(ctx context.Context) (int, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/sessions/active", nil, nil)
	if err != nil {
		return 0, err
	}

	var out ActiveSessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Active, nil
}

// NotifyUser pushes a message to every real-time connection of identifier.
// Admin only.
func (s *Session) NotifyUser(ctx context.Context, identifier string, req NotifyRequest) (int, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, err
	}

	path := "/v1/realtime/users/" + url.PathEscape(strings.TrimSpace(identifier))
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path,
		bytes.NewReader(payload),
		map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return 0, err
	}

	var out NotifyResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Delivered, nil
}
