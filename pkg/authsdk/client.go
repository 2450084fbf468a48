package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SDKClient talks to the campus auth API. It covers the public endpoints and
// hands out a Session after a successful login.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client for baseURL with a 10 second timeout.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges credentials for a bearer token. code is only needed for
// accounts with a one-time code configured; pass "" otherwise.
func (c *SDKClient) Login(ctx context.Context, email, password, code string) (*LoginResponse, error) {
	form := url.Values{
		"email":    {email},
		"password": {password},
	}
	if code != "" {
		form.Set("code", code)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/login",
		strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Authenticate logs in and wraps the token in a Session.
func (c *SDKClient) Authenticate(ctx context.Context, email, password, code string) (*Session, error) {
	login, err := c.Login(ctx, email, password, code)
	if err != nil {
		return nil, err
	}
	return c.NewSessionFromToken(login.AccessToken, login.ExpiresAt), nil
}

// NewSessionFromToken wraps an already issued token.
func (c *SDKClient) NewSessionFromToken(token string, expiresAt time.Time) *Session {
	return &Session{client: c, token: token, expiresAt: expiresAt}
}

// GetLiveness calls GET /livez.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness calls GET /readyz. A 503 is returned as an error.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
