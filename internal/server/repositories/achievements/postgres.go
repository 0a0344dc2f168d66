// Package achievements provides PostgreSQL-backed storage for professional
// achievements and their current/original synthesis fields.
package achievements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

const selectColumns = `achievement_id, entry_id, user_id, project_id, company_id,
		company_name_snapshot, role_title, display_order, source_platform, synthesis_status,
		ai_generated_name, ai_generated_name_ai, synthesis_paragraph, synthesis_paragraph_ai,
		synthesis_bullets, synthesis_bullets_ai,
		star_situation, star_situation_ai, star_task, star_task_ai,
		star_action, star_action_ai, star_result, star_result_ai,
		completeness_score, completeness_flags, completeness_calculated_at,
		synthesis_edited, synthesis_last_edited_at, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

type textPair struct {
	cur, orig sql.NullString
}

func (p textPair) into(dst *models.Provenance[string]) {
	dst.Current = p.cur.String
	dst.Original = dbx.StringPtr(p.orig)
}

func scanAchievement(s scanner) (*models.Achievement, error) {
	var (
		a                               models.Achievement
		projectID, companyID            sql.NullString
		companyName, roleTitle          sql.NullString
		status                          string
		name, paragraph                 textPair
		situation, task, action, result textPair
		bullets, bulletsAI              dbx.NullStringList
		score                           sql.NullInt64
		flags                           dbx.StringList
		calculatedAt, lastEditedAt      sql.NullTime
	)
	err := s.Scan(
		&a.ID, &a.EntryID, &a.UserID, &projectID, &companyID,
		&companyName, &roleTitle, &a.DisplayOrder, &a.SourcePlatform, &status,
		&name.cur, &name.orig, &paragraph.cur, &paragraph.orig,
		&bullets, &bulletsAI,
		&situation.cur, &situation.orig, &task.cur, &task.orig,
		&action.cur, &action.orig, &result.cur, &result.orig,
		&score, &flags, &calculatedAt,
		&a.SynthesisEdited, &lastEditedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.ProjectID = dbx.StringPtr(projectID)
	a.CompanyID = dbx.StringPtr(companyID)
	a.CompanyNameSnapshot = dbx.StringPtr(companyName)
	a.RoleTitle = dbx.StringPtr(roleTitle)
	a.Status = common.SynthesisStatus(status)

	name.into(&a.Name)
	paragraph.into(&a.Paragraph)
	situation.into(&a.Situation)
	task.into(&a.Task)
	action.into(&a.Action)
	result.into(&a.Result)

	a.Bullets.Current = bullets.List
	if bulletsAI.Valid {
		orig := bulletsAI.List
		a.Bullets.Original = &orig
	}

	if score.Valid {
		v := int(score.Int64)
		a.CompletenessScore = &v
	}
	a.CompletenessFlags = flags
	a.CompletenessCalculatedAt = dbx.TimePtr(calculatedAt)
	a.SynthesisLastEditedAt = dbx.TimePtr(lastEditedAt)
	return &a, nil
}

func (r *PostgresRepository) CountByEntry(ctx context.Context, userID, entryID string) (int, error) {
	query := `SELECT COUNT(*) FROM professional_achievements
		WHERE entry_id = $1 AND user_id = $2 AND deleted_at IS NULL`

	var n int
	if err := r.db.QueryRowContext(ctx, query, entryID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Insert creates a pending achievement with every synthesis field empty.
func (r *PostgresRepository) Insert(ctx context.Context, a *models.Achievement) error {
	query := `INSERT INTO professional_achievements
		(achievement_id, entry_id, user_id, project_id, company_id, company_name_snapshot,
		 role_title, display_order, source_platform, synthesis_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		a.ID, a.EntryID, a.UserID,
		dbx.NullStringPtr(a.ProjectID), dbx.NullStringPtr(a.CompanyID),
		dbx.NullStringPtr(a.CompanyNameSnapshot), dbx.NullStringPtr(a.RoleTitle),
		a.DisplayOrder, a.SourcePlatform, string(a.Status),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, userID, achievementID string) (*models.Achievement, error) {
	query := `SELECT ` + selectColumns + ` FROM professional_achievements
		WHERE achievement_id = $1 AND user_id = $2 AND deleted_at IS NULL`

	a, err := scanAchievement(r.db.QueryRowContext(ctx, query, achievementID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func originalText(p models.Provenance[string]) sql.NullString {
	if p.Original == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p.Original, Valid: true}
}

func originalList(p models.Provenance[[]string]) dbx.NullStringList {
	if p.Original == nil {
		return dbx.NullStringList{}
	}
	return dbx.NullStringList{List: *p.Original, Valid: true}
}

func (r *PostgresRepository) UpdateSynthesis(ctx context.Context, a *models.Achievement) error {
	query := `UPDATE professional_achievements SET
			synthesis_status = $1,
			ai_generated_name = $2,
			synthesis_paragraph = $3,
			synthesis_bullets = $4,
			star_situation = $5,
			star_task = $6,
			star_action = $7,
			star_result = $8,
			completeness_score = $9,
			completeness_flags = $10,
			completeness_calculated_at = $11,
			ai_generated_name_ai = COALESCE(ai_generated_name_ai, $12),
			synthesis_paragraph_ai = COALESCE(synthesis_paragraph_ai, $13),
			synthesis_bullets_ai = COALESCE(synthesis_bullets_ai, $14),
			star_situation_ai = COALESCE(star_situation_ai, $15),
			star_task_ai = COALESCE(star_task_ai, $16),
			star_action_ai = COALESCE(star_action_ai, $17),
			star_result_ai = COALESCE(star_result_ai, $18),
			updated_at = now()
		WHERE achievement_id = $19 AND user_id = $20 AND deleted_at IS NULL`

	var score sql.NullInt64
	if a.CompletenessScore != nil {
		score = sql.NullInt64{Int64: int64(*a.CompletenessScore), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, query,
		string(a.Status),
		dbx.NullString(a.Name.Current),
		dbx.NullString(a.Paragraph.Current),
		dbx.StringList(a.Bullets.Current),
		dbx.NullString(a.Situation.Current),
		dbx.NullString(a.Task.Current),
		dbx.NullString(a.Action.Current),
		dbx.NullString(a.Result.Current),
		score,
		dbx.StringList(a.CompletenessFlags),
		dbx.NullTime(a.CompletenessCalculatedAt),
		originalText(a.Name),
		originalText(a.Paragraph),
		originalList(a.Bullets),
		originalText(a.Situation),
		originalText(a.Task),
		originalText(a.Action),
		originalText(a.Result),
		a.ID, a.UserID,
	)
	return checkOne(res, err)
}

func (r *PostgresRepository) UpdateCurrent(ctx context.Context, a *models.Achievement) error {
	query := `UPDATE professional_achievements SET
			ai_generated_name = $1,
			synthesis_paragraph = $2,
			synthesis_bullets = $3,
			star_situation = $4,
			star_task = $5,
			star_action = $6,
			star_result = $7,
			synthesis_edited = $8,
			synthesis_last_edited_at = $9,
			updated_at = now()
		WHERE achievement_id = $10 AND user_id = $11 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		dbx.NullString(a.Name.Current),
		dbx.NullString(a.Paragraph.Current),
		dbx.StringList(a.Bullets.Current),
		dbx.NullString(a.Situation.Current),
		dbx.NullString(a.Task.Current),
		dbx.NullString(a.Action.Current),
		dbx.NullString(a.Result.Current),
		a.SynthesisEdited,
		dbx.NullTime(a.SynthesisLastEditedAt),
		a.ID, a.UserID,
	)
	return checkOne(res, err)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, userID, achievementID string, status common.SynthesisStatus) error {
	query := `UPDATE professional_achievements SET synthesis_status = $1, updated_at = now()
		WHERE achievement_id = $2 AND user_id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, string(status), achievementID, userID)
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

func (r *PostgresRepository) ListByEntry(ctx context.Context, userID, entryID string) ([]*models.Achievement, error) {
	query := `SELECT ` + selectColumns + ` FROM professional_achievements
		WHERE entry_id = $1 AND user_id = $2 AND deleted_at IS NULL
		ORDER BY display_order ASC`

	return r.list(ctx, query, entryID, userID)
}

func (r *PostgresRepository) ListByProject(ctx context.Context, userID, projectID string) ([]*models.Achievement, error) {
	query := `SELECT ` + selectColumns + ` FROM professional_achievements
		WHERE project_id = $1 AND user_id = $2 AND deleted_at IS NULL
		ORDER BY created_at ASC`

	return r.list(ctx, query, projectID, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Achievement, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select achievements: %w", err)
	}
	defer rows.Close()

	var result []*models.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
