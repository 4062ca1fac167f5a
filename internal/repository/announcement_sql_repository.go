package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-announcements/internal/models"
)

const announcementColumns = "id, title, message, start_date, expire_date, created_by, created_at"

type announcementRow struct {
	ID         string         `db:"id"`
	Title      string         `db:"title"`
	Message    string         `db:"message"`
	StartDate  sql.NullString `db:"start_date"`
	ExpireDate sql.NullString `db:"expire_date"`
	CreatedBy  string         `db:"created_by"`
	CreatedAt  string         `db:"created_at"`
}

func (r announcementRow) model() (models.Announcement, error) {
	id, err := models.ParseAnnouncementID(strings.TrimSpace(r.ID))
	if err != nil {
		return models.Announcement{}, fmt.Errorf("announcement row %q: %w", r.ID, err)
	}
	a := models.Announcement{
		ID:         id,
		Title:      r.Title,
		Message:    r.Message,
		ExpireDate: r.ExpireDate.String,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
	}
	if r.StartDate.Valid {
		start := r.StartDate.String
		a.StartDate = &start
	}
	return a, nil
}

// SQLAnnouncementRepository persists announcements in PostgreSQL. Ordering
// matches MongoAnnouncementRepository: missing expire dates come first.
type SQLAnnouncementRepository struct {
	db *sqlx.DB
}

// NewSQLAnnouncementRepository creates the repository.
func NewSQLAnnouncementRepository(db *sqlx.DB) *SQLAnnouncementRepository {
	return &SQLAnnouncementRepository{db: db}
}

// List returns all announcements sorted by expire_date ascending.
func (r *SQLAnnouncementRepository) List(ctx context.Context) ([]models.Announcement, error) {
	query := "SELECT " + announcementColumns + " FROM announcements ORDER BY expire_date ASC NULLS FIRST"
	var rows []announcementRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	out := make([]models.Announcement, 0, len(rows))
	for _, row := range rows {
		a, err := row.model()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// GetByID loads one announcement.
func (r *SQLAnnouncementRepository) GetByID(ctx context.Context, id models.AnnouncementID) (*models.Announcement, error) {
	query := "SELECT " + announcementColumns + " FROM announcements WHERE id = $1"
	var row announcementRow
	if err := r.db.GetContext(ctx, &row, query, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get announcement %s: %w", id, err)
	}
	a, err := row.model()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new announcement, generating its id when unset.
func (r *SQLAnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID.IsZero() {
		announcement.ID = models.NewAnnouncementID()
	}
	row := announcementRow{
		ID:         announcement.ID.String(),
		Title:      announcement.Title,
		Message:    announcement.Message,
		ExpireDate: sql.NullString{String: announcement.ExpireDate, Valid: true},
		CreatedBy:  announcement.CreatedBy,
		CreatedAt:  announcement.CreatedAt,
	}
	if announcement.StartDate != nil {
		row.StartDate = sql.NullString{String: *announcement.StartDate, Valid: true}
	}
	query := `INSERT INTO announcements (` + announcementColumns + `)
VALUES (:id, :title, :message, :start_date, :expire_date, :created_by, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update sets only the supplied columns and returns the stored result.
func (r *SQLAnnouncementRepository) Update(ctx context.Context, id models.AnnouncementID, changes models.AnnouncementChanges) (*models.Announcement, error) {
	var sets []string
	var args []interface{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if changes.Title != nil {
		add("title", *changes.Title)
	}
	if changes.Message != nil {
		add("message", *changes.Message)
	}
	if changes.ExpireDate != nil {
		add("expire_date", *changes.ExpireDate)
	}
	if changes.ClearStartDate {
		add("start_date", nil)
	} else if changes.StartDate != nil {
		add("start_date", *changes.StartDate)
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id.String())

	query := fmt.Sprintf("UPDATE announcements SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), announcementColumns)
	var row announcementRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update announcement %s: %w", id, err)
	}
	a, err := row.model()
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes one announcement and reports the affected row count.
func (r *SQLAnnouncementRepository) Delete(ctx context.Context, id models.AnnouncementID) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id.String())
	if err != nil {
		return 0, fmt.Errorf("delete announcement %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete announcement %s: %w", id, err)
	}
	return n, nil
}

// Ping checks connectivity to the database.
func (r *SQLAnnouncementRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
