package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SQLTeacherRepository is the Postgres counterpart of MongoTeacherRepository.
type SQLTeacherRepository struct {
	db *sqlx.DB
}

// NewSQLTeacherRepository constructs a SQLTeacherRepository.
func NewSQLTeacherRepository(db *sqlx.DB) *SQLTeacherRepository {
	return &SQLTeacherRepository{db: db}
}

// Exists reports whether a teacher with the given username is registered.
func (r *SQLTeacherRepository) Exists(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, "SELECT 1 FROM teachers WHERE username = $1 LIMIT 1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find teacher %q: %w", username, err)
	}
	return true, nil
}
