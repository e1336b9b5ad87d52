package userkeys

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

const insertQuery = `(?s)^INSERT INTO user_keys \(user_id, public_key, private_key, created_at\) VALUES \(\$1, \$2, \$3, \$4\) ON CONFLICT \(user_id\) DO NOTHING$`

func TestInsertIfAbsent(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	k := &models.UserKeyPair{UserID: 4, PublicKey: "pub", PrivateKey: "priv", CreatedAt: now}

	t.Run("written", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQuery).WithArgs(int64(4), "pub", "priv", now).WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.InsertIfAbsent(context.Background(), k)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("conflict", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.InsertIfAbsent(context.Background(), k)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("exec error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQuery).WillReturnError(errors.New("disk full"))

		_, err := repo.InsertIfAbsent(context.Background(), k)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert user keys[4]")
	})

	t.Run("rows affected error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewErrorResult(errors.New("n/a")))

		_, err := repo.InsertIfAbsent(context.Background(), k)
		require.Error(t, err)
	})
}

func TestGetByUserID(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q := `^SELECT user_id, public_key, private_key, created_at FROM user_keys WHERE user_id = \$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "public_key", "private_key", "created_at"}).
				AddRow(int64(4), "pub", "priv", now))

		k, err := repo.GetByUserID(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, &models.UserKeyPair{UserID: 4, PublicKey: "pub", PrivateKey: "priv", CreatedAt: now}, k)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUserID(context.Background(), 4)
		require.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WillReturnError(errors.New("boom"))

		_, err := repo.GetByUserID(context.Background(), 4)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
	})
}
