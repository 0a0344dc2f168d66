// Package tags provides PostgreSQL-backed tag lookup and achievement tagging.
package tags

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/careermemory/internal/dbx"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindBySlugs(ctx context.Context, userID string, slugs []string) ([]*models.Tag, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(slugs))
	args := make([]any, 0, len(slugs)+1)
	args = append(args, userID)
	for i, s := range slugs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, s)
	}

	query := `SELECT tag_id, user_id, name, slug, is_system FROM tags
		WHERE deleted_at IS NULL AND (user_id IS NULL OR user_id = $1)
		AND slug IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tags: %w", err)
	}
	defer rows.Close()

	var result []*models.Tag
	for rows.Next() {
		var (
			tag   models.Tag
			owner sql.NullString
		)
		if err := rows.Scan(&tag.ID, &owner, &tag.Name, &tag.Slug, &tag.IsSystem); err != nil {
			return nil, err
		}
		tag.UserID = dbx.StringPtr(owner)
		result = append(result, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Attach(ctx context.Context, rows []*models.AchievementTag) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args = make([]any, 0, len(rows)*5)
	)
	sb.WriteString(`INSERT INTO achievement_tags
		(achievement_tag_id, achievement_id, tag_id, is_ai_suggested, is_confirmed)
		VALUES `)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, row.ID, row.AchievementID, row.TagID, row.IsAISuggested, row.IsConfirmed)
	}
	sb.WriteString(" ON CONFLICT (achievement_id, tag_id) DO NOTHING")

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
