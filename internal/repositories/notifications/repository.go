// Package notifications persists the messages shown to share recipients.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/voicevault/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, n *models.Notification) (int64, error)

	// GetByUser lists the user's notifications, newest first.
	GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error)

	// MarkRead flags one notification of userID as read. It returns
	// common.ErrorNotFound when the id does not belong to userID.
	MarkRead(ctx context.Context, id, userID int64) error
}
