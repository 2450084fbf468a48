package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface implemented by the concrete
// drivers. Repositories hang off it so a Tx exposes exactly the same
// surface as the store it came from.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// WithTx runs fn inside a transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store. Nested transactions are not supported.
type Tx interface {
	Users() Users
}

// Users is the user directory backing token subject lookups and login.
type Users interface {
	GetUserByID(ctx context.Context, id int64) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts u and returns the assigned id. A duplicate email
	// is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) (int64, error)

	SetEnabled(ctx context.Context, id int64, enabled bool) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// UpdateTOTPSecret sets the one-time code secret; "" removes it.
	UpdateTOTPSecret(ctx context.Context, id int64, secret string) error

	IsEmpty(ctx context.Context) (bool, error)
}
