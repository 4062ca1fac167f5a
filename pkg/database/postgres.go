package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/sma-announcements/pkg/config"
)

// postgresSchema mirrors the two Mongo collections. Announcement ids keep the
// 24-char object id form so both backends hand out the same identifiers.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS teachers (
	username TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS announcements (
	id          CHAR(24) PRIMARY KEY,
	title       TEXT NOT NULL,
	message     TEXT NOT NULL,
	start_date  TEXT NULL,
	expire_date TEXT NULL,
	created_by  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_announcements_expire_date ON announcements (expire_date);
`

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// EnsurePostgresSchema creates the announcement tables when missing.
func EnsurePostgresSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure postgres schema: %w", err)
	}
	return nil
}
