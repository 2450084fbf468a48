package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/campus/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Users() store.Users { return &usersRepo{db: t.tx} }
