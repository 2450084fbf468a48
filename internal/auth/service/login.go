package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/identity"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

var (
	ErrAccountLocked      = errors.New("account_locked")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAccountDisabled    = errors.New("account_disabled")
	ErrCodeRequired       = errors.New("code_required")
	ErrInvalidCode        = errors.New("invalid_code")
)

// PasswordVerifier checks a password against a stored hash.
type PasswordVerifier interface {
	Verify(password, encodedHash string) error
}

// CodeValidator checks a one-time code against a stored secret.
type CodeValidator interface {
	ValidateCode(secret, code string) bool
}

// LoginService ties the attempt limiter, the password and code checks,
// token issuance and the session registry together.
type LoginService struct {
	Users     UserLookup
	Passwords PasswordVerifier
	Codes     CodeValidator
	Attempts  *AttemptLimiter
	Tokens    *TokenService
	Sessions  *SessionRegistry
}

type LoginRequest struct {
	Identifier string
	Password   string
	Code       string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

// Login authenticates req and issues a token. Counters are keyed by the
// normalized identifier, whether or not an account exists for it.
func (s *LoginService) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	id := NormalizeIdentifier(req.Identifier)
	log := slogx.FromContext(ctx).With("identifier", id)

	if s.Attempts.IsBlocked(CategoryLogin, id) {
		log.Warn("login refused, identifier locked")
		return LoginResult{}, ErrAccountLocked
	}

	user, err := s.Users.FindByIdentifier(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		n := s.Attempts.RecordFailure(CategoryLogin, id)
		log.Info("login failed, unknown identifier", "failures", n)
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.Passwords.Verify(req.Password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			return LoginResult{}, fmt.Errorf("verify password: %w", err)
		}
		n := s.Attempts.RecordFailure(CategoryLogin, id)
		log.Info("login failed, wrong password", "failures", n)
		return LoginResult{}, ErrInvalidCredentials
	}

	if !user.Enabled {
		log.Info("login refused, account disabled", "user_id", user.ID)
		return LoginResult{}, ErrAccountDisabled
	}

	if user.RequiresCode() {
		if err := s.checkCode(ctx, id, user, req.Code); err != nil {
			return LoginResult{}, err
		}
	}

	s.Attempts.RecordSuccess(CategoryLogin, id)

	token, exp, err := s.Tokens.IssueWithExpiry(user.Email)
	if err != nil {
		return LoginResult{}, err
	}
	s.Sessions.RegisterLogin(user.ID, exp)

	log.Info("login succeeded", "user_id", user.ID)
	return LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *LoginService) checkCode(ctx context.Context, id string, user domain.User, code string) error {
	log := slogx.FromContext(ctx).With("identifier", id, "user_id", user.ID)

	if s.Attempts.IsBlocked(CategoryCode, id) {
		log.Warn("code refused, identifier locked")
		return ErrAccountLocked
	}
	if code == "" {
		return ErrCodeRequired
	}
	if !s.Codes.ValidateCode(user.TOTPSecret, code) {
		n := s.Attempts.RecordFailure(CategoryCode, id)
		log.Info("code rejected", "failures", n)
		return ErrInvalidCode
	}

	s.Attempts.RecordSuccess(CategoryCode, id)
	return nil
}

// Logout drops the caller's active session entry.
func (s *LoginService) Logout(ctx context.Context, p identity.Principal) {
	s.Sessions.RegisterLogout(p.UserID)
	slogx.FromContext(ctx).Info("logout", "user_id", p.UserID)
}
