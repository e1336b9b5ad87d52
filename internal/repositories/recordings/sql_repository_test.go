package recordings

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(db, dbx.Postgres), mock
}

var recordingColumns = []string{"id", "name", "owner_user_id", "created_at", "duration_seconds", "storage_location", "wrapped_key", "checksum"}

func TestInsert_ReturnsID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rec := &models.Recording{
		Name:            "memo",
		OwnerUserID:     7,
		CreatedAt:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		DurationSeconds: 3,
		StorageLocation: "recordings/7/a.pcm",
		WrappedKey:      "wk",
		Checksum:        "sum",
	}

	mock.ExpectQuery(`(?s)^INSERT INTO recordings .* VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7\) RETURNING id$`).
		WithArgs("memo", int64(7), rec.CreatedAt, int64(3), "recordings/7/a.pcm", "wk", "sum").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO recordings`).WillReturnError(errors.New("db down"))

	_, err := repo.Insert(context.Background(), &models.Recording{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert recording")
	assert.Contains(t, err.Error(), "db down")
}

func TestGetByID_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)^SELECT id, name, .* FROM recordings WHERE id = \$1$`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(recordingColumns).
			AddRow(int64(5), "memo", int64(7), created, int64(2), "loc", "wk", "sum"))

	rec, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, &models.Recording{
		ID: 5, Name: "memo", OwnerUserID: 7, CreatedAt: created, DurationSeconds: 2,
		StorageLocation: "loc", WrappedKey: "wk", Checksum: "sum",
	}, rec)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM recordings WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM recordings WHERE id = \$1`).WillReturnError(errors.New("boom"))

	_, err := repo.GetByID(context.Background(), 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
	assert.Contains(t, err.Error(), "failed to get recording[1]")
}

func TestGetByOwner_ReturnsRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	t1 := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)FROM recordings WHERE owner_user_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(recordingColumns).
			AddRow(int64(2), "b", int64(7), t1, int64(1), "l2", "w2", "c2").
			AddRow(int64(1), "a", int64(7), t0, int64(1), "l1", "w1", "c1"))

	got, err := repo.GetByOwner(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(1), got[1].ID)
}

func TestGetByOwner_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM recordings WHERE owner_user_id`).
		WillReturnRows(sqlmock.NewRows(recordingColumns).
			AddRow("not-an-int", "a", int64(7), time.Now(), int64(1), "l", "w", "c"))

	_, err := repo.GetByOwner(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan recording row")
}

func TestGetByOwner_RowError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM recordings WHERE owner_user_id`).
		WillReturnRows(sqlmock.NewRows(recordingColumns).
			AddRow(int64(1), "a", int64(7), time.Now(), int64(1), "l", "w", "c").
			RowError(0, errors.New("row broke")))

	_, err := repo.GetByOwner(context.Background(), 7)
	require.Error(t, err)
}

func TestDeleteByID_RowsAffected(t *testing.T) {
	tests := []struct {
		name    string
		result  sql.Result
		wantErr error
		wantAny bool
	}{
		{name: "deleted", result: sqlmock.NewResult(0, 1)},
		{name: "missing", result: sqlmock.NewResult(0, 0), wantErr: common.ErrorNotFound},
		{name: "too many", result: sqlmock.NewResult(0, 2), wantAny: true},
		{name: "rows affected error", result: sqlmock.NewErrorResult(errors.New("n/a")), wantAny: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectExec(`^DELETE FROM recordings WHERE id = \$1$`).WithArgs(int64(3)).WillReturnResult(tt.result)

			err := repo.DeleteByID(context.Background(), 3)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantAny:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}

func TestDeleteByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM recordings WHERE id = \$1$`).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.DeleteByID(context.Background(), 9))

	mock.ExpectExec(`^DELETE FROM recordings WHERE id = \$1$`).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.DeleteByID(context.Background(), 9), common.ErrorNotFound)

	mock.ExpectExec(`DELETE FROM recordings`).WillReturnError(errors.New("boom"))
	err := repo.DeleteByID(context.Background(), 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to delete recording")
}

func TestSQLiteDialect_KeepsQuestionMarks(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLRepository(db, dbx.SQLite)
	mock.ExpectExec(`DELETE FROM recordings WHERE id = ?`).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteByID(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}
