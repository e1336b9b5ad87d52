package notifications

import (
	"context"
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

func (r *SQLRepository) Insert(ctx context.Context, n *models.Notification) (int64, error) {
	query := r.dialect.Rebind(`INSERT INTO notifications (user_id, message, is_read, created_at, recording_id)
		VALUES (?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	if err := r.db.QueryRowContext(ctx, query, n.UserID, n.Message, n.IsRead, n.CreatedAt.UTC(), n.RecordingID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert notification: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	query := r.dialect.Rebind(`SELECT id, user_id, message, is_read, created_at, recording_id
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select notifications: %w", err)
	}
	defer rows.Close()

	var result []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt, &n.RecordingID); err != nil {
			return nil, fmt.Errorf("failed to scan notification row: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notification rows: %w", err)
	}
	return result, nil
}

func (r *SQLRepository) MarkRead(ctx context.Context, id, userID int64) error {
	query := r.dialect.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ? AND user_id = ?`)

	res, err := r.db.ExecContext(ctx, query, true, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n != 1 {
		return common.ErrorNotFound
	}
	return nil
}
