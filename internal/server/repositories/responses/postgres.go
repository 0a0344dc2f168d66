// Package responses provides PostgreSQL-backed storage for raw achievement answers.
package responses

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

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

// InsertMany writes all rows in one statement. Rows with an ID that is
// already stored are skipped, so a retried call after an ambiguous
// timeout does not duplicate answers.
func (r *PostgresRepository) InsertMany(ctx context.Context, rows []*models.Response) error {
	if len(rows) == 0 {
		return nil
	}

	var (
		sb   strings.Builder
		args = make([]any, 0, len(rows)*5)
	)
	sb.WriteString(`INSERT INTO achievement_responses
		(response_id, achievement_id, question_key, question_text_snapshot, response_text)
		VALUES `)
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 5
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5)
		args = append(args, row.ID, row.AchievementID, string(row.QuestionKey),
			dbx.NullString(row.QuestionTextSnapshot), row.ResponseText)
	}
	sb.WriteString(" ON CONFLICT (response_id) DO NOTHING")

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByAchievement returns the answers of an achievement owned by userID,
// in insertion order.
func (r *PostgresRepository) ListByAchievement(ctx context.Context, userID, achievementID string) ([]*models.Response, error) {
	query := `SELECT r.response_id, r.achievement_id, r.question_key,
			r.question_text_snapshot, r.response_text, r.created_at
		FROM achievement_responses r
		JOIN professional_achievements a ON a.achievement_id = r.achievement_id
		WHERE r.achievement_id = $1 AND a.user_id = $2 AND a.deleted_at IS NULL
		ORDER BY r.created_at ASC, r.response_id ASC`

	rows, err := r.db.QueryContext(ctx, query, achievementID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select responses: %w", err)
	}
	defer rows.Close()

	var result []*models.Response
	for rows.Next() {
		var (
			item     models.Response
			key      string
			snapshot sql.NullString
			text     sql.NullString
		)
		if err := rows.Scan(&item.ID, &item.AchievementID, &key, &snapshot, &text, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.QuestionKey = common.QuestionKey(key)
		item.QuestionTextSnapshot = snapshot.String
		item.ResponseText = text.String
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
