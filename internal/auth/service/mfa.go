package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var ErrCodeAlreadyEnrolled = errors.New("one-time code already configured for this user")

// MFAService manages the TOTP secrets behind the "code" attempt category.
type MFAService struct {
	Store  store.Store
	Issuer string // shown in authenticator apps, e.g. "Campus"

	// Now is the clock used to validate codes. Defaults to time.Now.
	Now func() time.Time
}

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// EnrollTOTP generates and stores a new secret for the user. From then on
// login requires a code.
func (s *MFAService) EnrollTOTP(ctx context.Context, userID int64) (domain.TOTPEnrollment, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.TOTPEnrollment{}, err
	}
	if u.RequiresCode() {
		return domain.TOTPEnrollment{}, ErrCodeAlreadyEnrolled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      totpOpts.Period,
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateTOTPSecret(ctx, userID, key.Secret()); err != nil {
		return domain.TOTPEnrollment{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return domain.TOTPEnrollment{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: u.Email,
	}, nil
}

// RemoveTOTP clears the user's secret.
func (s *MFAService) RemoveTOTP(ctx context.Context, userID int64) error {
	return s.Store.Users().UpdateTOTPSecret(ctx, userID, "")
}

// ValidateCode checks code against secret, allowing one period of skew.
func (s *MFAService) ValidateCode(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	ok, err := totp.ValidateCustom(code, secret, now.UTC(), totpOpts)
	return err == nil && ok
}
