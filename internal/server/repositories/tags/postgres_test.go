package tags

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestFindBySlugs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT tag_id, user_id, name, slug, is_system FROM tags\s+WHERE deleted_at IS NULL AND \(user_id IS NULL OR user_id = \$1\)\s+AND slug IN \(\$2, \$3\)`).
		WithArgs("u1", "process_improvement", "made_up").
		WillReturnRows(sqlmock.NewRows([]string{"tag_id", "user_id", "name", "slug", "is_system"}).
			AddRow("t1", nil, "Process improvement", "process_improvement", true))

	list, err := repo.FindBySlugs(context.Background(), "u1", []string{"process_improvement", "made_up"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "t1", list[0].ID)
	assert.Nil(t, list[0].UserID)
	assert.True(t, list[0].IsSystem)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBySlugs_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	list, err := repo.FindBySlugs(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindBySlugs_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM tags`).WillReturnError(errors.New("boom"))

	_, err := repo.FindBySlugs(context.Background(), "u1", []string{"leadership"})
	assert.ErrorContains(t, err, "failed to select tags")
}

func TestAttach(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO achievement_tags.*VALUES \(\$1, \$2, \$3, \$4, \$5\) ON CONFLICT \(achievement_id, tag_id\) DO NOTHING`).
		WithArgs("at1", "a1", "t1", true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Attach(context.Background(), []*models.AchievementTag{
		{ID: "at1", AchievementID: "a1", TagID: "t1", IsAISuggested: true, IsConfirmed: true},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
