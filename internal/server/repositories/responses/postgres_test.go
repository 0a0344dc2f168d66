package responses

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestInsertMany_SingleStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO achievement_responses.*VALUES \(\$1, \$2, \$3, \$4, \$5\), \(\$6, \$7, \$8, \$9, \$10\) ON CONFLICT \(response_id\) DO NOTHING`).
		WithArgs(
			"r1", "a1", "headline", "What did you accomplish?", "Migrated billing",
			"r2", "a1", "result", "What was the result or impact?", "30% faster",
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.InsertMany(context.Background(), []*models.Response{
		{ID: "r1", AchievementID: "a1", QuestionKey: common.QuestionHeadline, QuestionTextSnapshot: common.HeadlineSnapshot, ResponseText: "Migrated billing"},
		{ID: "r2", AchievementID: "a1", QuestionKey: common.QuestionResult, QuestionTextSnapshot: "What was the result or impact?", ResponseText: "30% faster"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMany_EmptyIsNoop(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	require.NoError(t, repo.InsertMany(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMany_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO achievement_responses`).WillReturnError(errors.New("db is down"))

	err := repo.InsertMany(context.Background(), []*models.Response{{ID: "r1", AchievementID: "a1", QuestionKey: common.QuestionHeadline}})
	assert.ErrorContains(t, err, "db error: db is down")
}

func TestListByAchievement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM achievement_responses r\s+JOIN professional_achievements a .*WHERE r.achievement_id = \$1 AND a.user_id = \$2`).
		WithArgs("a1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"response_id", "achievement_id", "question_key", "question_text_snapshot", "response_text", "created_at"}).
			AddRow("r1", "a1", "headline", "What did you accomplish?", "Migrated billing", now).
			AddRow("r2", "a1", "skills", nil, "Go", now))

	list, err := repo.ListByAchievement(context.Background(), "u1", "a1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, common.QuestionHeadline, list[0].QuestionKey)
	assert.Equal(t, "", list[1].QuestionTextSnapshot)
	assert.Equal(t, "Go", list[1].ResponseText)
}
