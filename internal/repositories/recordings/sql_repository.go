package recordings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/models"
)

const columns = `id, name, owner_user_id, created_at, duration_seconds, storage_location, wrapped_key, checksum`

// SQLRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Insert(ctx context.Context, rec *models.Recording) (int64, error) {
	query := r.dialect.Rebind(`INSERT INTO recordings (name, owner_user_id, created_at, duration_seconds, storage_location, wrapped_key, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rec.Name, rec.OwnerUserID, rec.CreatedAt.UTC(), rec.DurationSeconds, rec.StorageLocation, rec.WrappedKey, rec.Checksum).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recording: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.Recording, error) {
	query := r.dialect.Rebind(`SELECT ` + columns + ` FROM recordings WHERE id = ?`)

	rec, err := scanRecording(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recording[%d]: %w", id, err)
	}
	return rec, nil
}

func (r *SQLRepository) GetByOwner(ctx context.Context, userID int64) ([]*models.Recording, error) {
	query := r.dialect.Rebind(`SELECT ` + columns + ` FROM recordings WHERE owner_user_id = ? ORDER BY created_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select recordings: %w", err)
	}
	defer rows.Close()

	var result []*models.Recording
	for rows.Next() {
		rec, err := scanRecording(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recording row: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recording rows: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) DeleteByID(ctx context.Context, id int64) error {
	query := r.dialect.Rebind(`DELETE FROM recordings WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	return expectOneRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecording(s scanner) (*models.Recording, error) {
	rec := &models.Recording{}
	err := s.Scan(&rec.ID, &rec.Name, &rec.OwnerUserID, &rec.CreatedAt, &rec.DurationSeconds, &rec.StorageLocation, &rec.WrappedKey, &rec.Checksum)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
