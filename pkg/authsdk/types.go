package authsdk

import "time"

// LoginResponse is returned by POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PrincipalResponse describes the caller, returned by GET /v1/auth/me.
type PrincipalResponse struct {
	Identifier string `json:"identifier"`
	UserID     int64  `json:"user_id"`
	Role       string `json:"role"`
	Enabled    bool   `json:"enabled"`
}

// ActiveSessionsResponse is returned by GET /v1/sessions/active.
type ActiveSessionsResponse struct {
	Active int `json:"active"`
}

// NotifyRequest is the body of POST /v1/realtime/users/{identifier}.
type NotifyRequest struct {
	Destination string `json:"destination"`
	Body        string `json:"body"`
}

// NotifyResponse reports how many open connections received the message.
type NotifyResponse struct {
	Delivered int `json:"delivered"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks lists per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// CreateUserRequest is the body of POST /v1/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Enabled  *bool  `json:"enabled,omitempty"`
}

// UserResponse describes an account in the user directory.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Enabled   bool      `json:"enabled"`
	MFA       bool      `json:"mfa"`
	CreatedAt time.Time `json:"created_at"`
}

// SetEnabledRequest is the body of PUT /v1/users/{id}/enabled.
type SetEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// TOTPEnrollResponse is returned once by POST /v1/auth/mfa/totp.
type TOTPEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"otpauth_url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}
