package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/campus/internal/auth/domain"
)

const userColumns = `id, email, password_hash, role, enabled, totp_secret, created_at, updated_at`

type usersRepo struct {
	db dbtx
}

// Timestamps are stored as unix seconds.
func (r *usersRepo) stamp() int64 {
	return time.Now().Unix()
}

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u         domain.User
		role      string
		secret    sql.NullString
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.Enabled, &secret, &createdAt, &updatedAt); err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.TOTPSecret = secret.String
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	u.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.TrimSpace(email)))
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (int64, error) {
	role := u.Role
	if role == "" {
		role = domain.RoleStudent
	}

	now := r.stamp()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, password_hash, role, enabled, totp_secret, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		strings.TrimSpace(u.Email),
		u.PasswordHash,
		string(role),
		u.Enabled,
		stringToNullString(u.TOTPSecret),
		now,
		now,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	return requireOne(r.db.ExecContext(ctx,
		`UPDATE users SET enabled = ?, updated_at = ? WHERE id = ?`, enabled, r.stamp(), id))
}

func (r *usersRepo) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	return requireOne(r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`, string(role), r.stamp(), id))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return requireOne(r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, r.stamp(), id))
}

func (r *usersRepo) UpdateTOTPSecret(ctx context.Context, id int64, secret string) error {
	return requireOne(r.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = ?, updated_at = ? WHERE id = ?`,
		stringToNullString(secret), r.stamp(), id))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
