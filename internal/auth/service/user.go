package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
	"github.com/aussiebroadwan/campus/internal/auth/identity"
	"github.com/aussiebroadwan/campus/internal/auth/store"
	"github.com/aussiebroadwan/campus/pkg/cryptox"
	"github.com/aussiebroadwan/campus/pkg/slogx"
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidRole  = errors.New("invalid role")
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

const minPasswordLength = 8

// UserLookup resolves a token subject to the account behind it. It is the
// only way the gateway, the real-time bridge and login learn about users.
type UserLookup interface {
	FindByIdentifier(ctx context.Context, identifier string) (domain.User, error)
}

// PrincipalFor builds the per-call principal from a resolved user.
func PrincipalFor(u domain.User) identity.Principal {
	return identity.Principal{
		Identifier: u.Email,
		UserID:     u.ID,
		Role:       string(u.Role),
		Enabled:    u.Enabled,
	}
}

// NormalizeIdentifier lower-cases and trims an email so counters and
// lookups agree on one spelling.
func NormalizeIdentifier(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

type UserService struct {
	Store  store.Store
	Hasher cryptox.PasswordHasher
}

var _ UserLookup = (*UserService)(nil)

func (s *UserService) FindByIdentifier(ctx context.Context, identifier string) (domain.User, error) {
	return s.Store.Users().GetUserByEmail(ctx, NormalizeIdentifier(identifier))
}

func (s *UserService) GetUserByID(ctx context.Context, userID int64) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, userID)
}

// NewUser describes an account to create.
type NewUser struct {
	Email    string
	Password string
	Role     domain.Role
	Enabled  bool
}

// CreateUser hashes the password and stores the account.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	return s.createUser(ctx, s.Store.Users(), in)
}

func (s *UserService) createUser(ctx context.Context, users store.Users, in NewUser) (domain.User, error) {
	email := NormalizeIdentifier(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidEmail
	}
	if in.Role == "" {
		in.Role = domain.RoleStudent
	}
	if !in.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: %q", ErrInvalidRole, in.Role)
	}
	if len(in.Password) < minPasswordLength {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Enabled:      in.Enabled,
	}
	id, err := users.CreateUser(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	return users.GetUserByID(ctx, id)
}

// SetEnabled enables or disables an account. Disabling takes effect on the
// next request since principals are rebuilt from the store every time.
func (s *UserService) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	return s.Store.Users().SetEnabled(ctx, userID, enabled)
}

// SeedAdmin creates an enabled admin account when the directory is empty.
// It reports whether an account was created.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) (bool, error) {
	log := slogx.FromContext(ctx)

	created := false
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return nil
		}

		u, err := s.createUser(ctx, tx.Users(), NewUser{
			Email:    email,
			Password: password,
			Role:     domain.RoleAdmin,
			Enabled:  true,
		})
		if err != nil {
			return err
		}

		log.Info("seeded admin account", "user_id", u.ID, "email", u.Email)
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return created, nil
}
