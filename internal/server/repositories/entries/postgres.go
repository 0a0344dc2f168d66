// Package entries provides PostgreSQL-backed storage for day entries.
package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

const selectColumns = `entry_id, user_id, entry_date, section_type, status,
		ai_generated_summary, ai_generated_summary_ai, created_at, updated_at`

// PostgresRepository implements entry storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.Entry, error) {
	var (
		e         models.Entry
		status    string
		summary   sql.NullString
		summaryAI sql.NullString
	)
	if err := s.Scan(&e.ID, &e.UserID, &e.Date, &e.SectionType, &status,
		&summary, &summaryAI, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Status = common.EntryStatus(status)
	e.Summary.Current = summary.String
	e.Summary.Original = dbx.StringPtr(summaryAI)
	return &e, nil
}

// FindByDate returns the live entry for (user, date, section) or ErrorNotFound.
func (r *PostgresRepository) FindByDate(ctx context.Context, userID string, date timex.Date, section string) (*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries
		WHERE user_id = $1 AND entry_date = $2 AND section_type = $3 AND deleted_at IS NULL
		LIMIT 1`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, date, section))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, entryID string) (*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries
		WHERE entry_id = $1 AND user_id = $2 AND deleted_at IS NULL`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, entryID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Insert creates the entry with a client-generated ID. A concurrent insert
// for the same user and day yields ErrorAlreadyExists.
func (r *PostgresRepository) Insert(ctx context.Context, entry *models.Entry) error {
	query := `INSERT INTO entries (entry_id, user_id, entry_date, section_type, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Date, entry.SectionType, string(entry.Status),
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateSummary(ctx context.Context, userID, entryID, summary string) error {
	query := `UPDATE entries
		SET ai_generated_summary = $1,
			ai_generated_summary_ai = COALESCE(ai_generated_summary_ai, $1),
			updated_at = now()
		WHERE entry_id = $2 AND user_id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, summary, entryID, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// ListRecentWithSummary returns the newest entries that already carry a summary.
func (r *PostgresRepository) ListRecentWithSummary(ctx context.Context, userID string, limit int) ([]*models.Entry, error) {
	query := `SELECT ` + selectColumns + ` FROM entries
		WHERE user_id = $1 AND deleted_at IS NULL AND ai_generated_summary IS NOT NULL
		ORDER BY entry_date DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
