package sharegrants

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/models"
)

const columns = `id, recording_id, source_user_id, target_user_id, wrapped_key_for_target, storage_location, checksum, shared_at, recording_name, duration_seconds`

type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
}

func NewSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) Insert(ctx context.Context, g *models.ShareGrant) (int64, error) {
	query := r.dialect.Rebind(`INSERT INTO share_grants (recording_id, source_user_id, target_user_id, wrapped_key_for_target, storage_location, checksum, shared_at, recording_name, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		g.RecordingID, g.SourceUserID, g.TargetUserID, g.WrappedKeyForTarget, g.StorageLocation, g.Checksum, g.SharedAt.UTC(), g.RecordingName, g.DurationSeconds).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert share grant: %w", err)
	}
	return id, nil
}

func (r *SQLRepository) GetForTarget(ctx context.Context, userID int64) ([]*models.ShareGrant, error) {
	return r.selectGrants(ctx, `SELECT `+columns+` FROM share_grants WHERE target_user_id = ? ORDER BY shared_at DESC, id DESC`, userID)
}

func (r *SQLRepository) GetForRecordingAndTarget(ctx context.Context, recordingID, userID int64) ([]*models.ShareGrant, error) {
	return r.selectGrants(ctx, `SELECT `+columns+` FROM share_grants WHERE recording_id = ? AND target_user_id = ? ORDER BY shared_at DESC, id DESC`, recordingID, userID)
}

func (r *SQLRepository) GetForRecording(ctx context.Context, recordingID int64) ([]*models.ShareGrant, error) {
	return r.selectGrants(ctx, `SELECT `+columns+` FROM share_grants WHERE recording_id = ? ORDER BY id`, recordingID)
}

func (r *SQLRepository) selectGrants(ctx context.Context, query string, args ...any) ([]*models.ShareGrant, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select share grants: %w", err)
	}
	defer rows.Close()

	var result []*models.ShareGrant
	for rows.Next() {
		g := &models.ShareGrant{}
		if err := rows.Scan(&g.ID, &g.RecordingID, &g.SourceUserID, &g.TargetUserID, &g.WrappedKeyForTarget, &g.StorageLocation, &g.Checksum, &g.SharedAt, &g.RecordingName, &g.DurationSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan share grant row: %w", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate share grant rows: %w", err)
	}
	return result, nil
}
