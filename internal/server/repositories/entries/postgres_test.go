package entries

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/careermemory/internal/common"
	"github.com/dmitrijs2005/careermemory/internal/server/models"
	"github.com/dmitrijs2005/careermemory/internal/timex"
)

var entryColumns = []string{
	"entry_id", "user_id", "entry_date", "section_type", "status",
	"ai_generated_summary", "ai_generated_summary_ai", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestFindByDate_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	day := timex.Date{Year: 2026, Month: time.March, Day: 1}

	mock.ExpectQuery(`SELECT .* FROM entries\s+WHERE user_id = \$1 AND entry_date = \$2 AND section_type = \$3 AND deleted_at IS NULL`).
		WithArgs("u1", "2026-03-01", common.SectionProfessional).
		WillReturnRows(sqlmock.NewRows(entryColumns).AddRow(
			"e1", "u1", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), "professional", "complete",
			"summary", nil, now, now,
		))

	e, err := repo.FindByDate(context.Background(), "u1", day, common.SectionProfessional)
	require.NoError(t, err)
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, day, e.Date)
	assert.Equal(t, common.EntryComplete, e.Status)
	assert.Equal(t, "summary", e.Summary.Current)
	assert.Nil(t, e.Summary.Original)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByDate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM entries`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByDate(context.Background(), "u1", timex.Date{Year: 2026, Month: 3, Day: 1}, common.SectionProfessional)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGet_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM entries\s+WHERE entry_id = \$1 AND user_id = \$2`).
		WithArgs("e1", "u1").
		WillReturnError(errors.New("db is down"))

	_, err := repo.Get(context.Background(), "u1", "e1")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db is down`), err.Error())
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`INSERT INTO entries \(entry_id, user_id, entry_date, section_type, status\)`).
		WithArgs("e1", "u1", "2026-03-01", "professional", "complete").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	e := &models.Entry{
		ID:          "e1",
		UserID:      "u1",
		Date:        timex.Date{Year: 2026, Month: time.March, Day: 1},
		SectionType: common.SectionProfessional,
		Status:      common.EntryComplete,
	}
	require.NoError(t, repo.Insert(context.Background(), e))
	assert.Equal(t, now, e.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO entries`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Insert(context.Background(), &models.Entry{ID: "e1", UserID: "u1"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpdateSummary(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "updated", rows: 1},
		{name: "missing", rows: 0, wantErr: common.ErrorNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectExec(`UPDATE entries\s+SET ai_generated_summary = \$1,\s+ai_generated_summary_ai = COALESCE\(ai_generated_summary_ai, \$1\)`).
				WithArgs("rolled up", "e1", "u1").
				WillReturnResult(sqlmock.NewResult(0, tt.rows))

			err := repo.UpdateSummary(context.Background(), "u1", "e1", "rolled up")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestListRecentWithSummary(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT .* FROM entries\s+WHERE user_id = \$1 AND deleted_at IS NULL AND ai_generated_summary IS NOT NULL\s+ORDER BY entry_date DESC\s+LIMIT \$2`).
		WithArgs("u1", 2).
		WillReturnRows(sqlmock.NewRows(entryColumns).
			AddRow("e2", "u1", "2026-03-02", "professional", "complete", "two", "two", now, now).
			AddRow("e1", "u1", "2026-03-01", "professional", "complete", "one", "one", now, now))

	list, err := repo.ListRecentWithSummary(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "e2", list[0].ID)
	require.NotNil(t, list[1].Summary.Original)
	assert.Equal(t, "one", *list[1].Summary.Original)
}
