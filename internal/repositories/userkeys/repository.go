// Package userkeys persists one RSA key pair per user. user_id is the
// primary key, so concurrent first inserts cannot create two pairs.
package userkeys

import (
	"context"

	"github.com/dmitrijs2005/voicevault/internal/models"
)

type Repository interface {
	// InsertIfAbsent stores k unless a pair already exists for k.UserID.
	// It reports whether k was the row written.
	InsertIfAbsent(ctx context.Context, k *models.UserKeyPair) (bool, error)

	// GetByUserID returns common.ErrorNotFound when the user has no pair.
	GetByUserID(ctx context.Context, userID int64) (*models.UserKeyPair, error)
}
