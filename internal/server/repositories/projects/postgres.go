// Package projects provides PostgreSQL-backed storage for projects and their
// highlight summaries.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, p *models.Project) error {
	query := `INSERT INTO projects (project_id, user_id, name, description, status, is_highlight)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Name, dbx.NullStringPtr(p.Description), string(p.Status), p.IsHighlight,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	query := `SELECT project_id, user_id, name, description, status, is_highlight,
			highlight_summary, highlight_summary_ai, highlight_summary_last_edited_at,
			created_at, updated_at
		FROM projects
		WHERE project_id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var (
		p                  models.Project
		description        sql.NullString
		status             string
		summary, summaryAI sql.NullString
		lastEditedAt       sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, projectID, userID).Scan(
		&p.ID, &p.UserID, &p.Name, &description, &status, &p.IsHighlight,
		&summary, &summaryAI, &lastEditedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	p.Description = dbx.StringPtr(description)
	p.Status = common.ProjectStatus(status)
	p.Summary.Current = summary.String
	p.Summary.Original = dbx.StringPtr(summaryAI)
	p.SummaryLastEditedAt = dbx.TimePtr(lastEditedAt)
	return &p, nil
}

func (r *PostgresRepository) UpdateRollupSummary(ctx context.Context, userID, projectID, summary string) (bool, error) {
	query := `UPDATE projects
		SET highlight_summary = $1,
			highlight_summary_ai = COALESCE(highlight_summary_ai, $1),
			updated_at = now()
		WHERE project_id = $2 AND user_id = $3 AND deleted_at IS NULL
			AND highlight_summary_last_edited_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, summary, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) EditSummary(ctx context.Context, userID, projectID, summary string, at time.Time) error {
	query := `UPDATE projects
		SET highlight_summary = $1, highlight_summary_last_edited_at = $2, updated_at = now()
		WHERE project_id = $3 AND user_id = $4 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, summary, at, projectID, userID)
	return checkOne(res, err)
}

func (r *PostgresRepository) ClearManualEdit(ctx context.Context, userID, projectID string) error {
	query := `UPDATE projects
		SET highlight_summary_last_edited_at = NULL, updated_at = now()
		WHERE project_id = $1 AND user_id = $2 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, projectID, userID)
	return checkOne(res, err)
}

func checkOne(res sql.Result, err error) error {
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
