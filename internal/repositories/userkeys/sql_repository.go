package userkeys

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/models"
)

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) InsertIfAbsent(ctx context.Context, k *models.UserKeyPair) (bool, error) {
	query := r.dialect.Rebind(`INSERT INTO user_keys (user_id, public_key, private_key, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING`)

	res, err := r.db.ExecContext(ctx, query, k.UserID, k.PublicKey, k.PrivateKey, k.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("failed to insert user keys[%d]: %w", k.UserID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) GetByUserID(ctx context.Context, userID int64) (*models.UserKeyPair, error) {
	query := r.dialect.Rebind(`SELECT user_id, public_key, private_key, created_at FROM user_keys WHERE user_id = ?`)

	k := &models.UserKeyPair{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&k.UserID, &k.PublicKey, &k.PrivateKey, &k.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user keys[%d]: %w", userID, err)
	}
	return k, nil
}
