// Package sharegrants persists ShareGrant rows. Grants are insert-only.
package sharegrants

import (
	"context"

	"github.com/dmitrijs2005/voicevault/internal/models"
)

type Repository interface {
	// Insert stores g and returns its id.
	Insert(ctx context.Context, g *models.ShareGrant) (int64, error)

	// GetForTarget lists every grant naming userID as target, newest first.
	GetForTarget(ctx context.Context, userID int64) ([]*models.ShareGrant, error)

	// GetForRecordingAndTarget lists the grants of one recording for one
	// target, newest first. An empty result is not an error.
	GetForRecordingAndTarget(ctx context.Context, recordingID, userID int64) ([]*models.ShareGrant, error)

	// GetForRecording lists every grant of a recording.
	GetForRecording(ctx context.Context, recordingID int64) ([]*models.ShareGrant, error)
}
