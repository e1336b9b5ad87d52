package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/logging"
	"github.com/dmitrijs2005/voicevault/internal/models"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
)

// NotificationSink is told about new shares after they are committed.
// Delivery is fire-and-forget: errors are not reported back.
type NotificationSink interface {
	Notify(ctx context.Context, userID int64, message string, recordingID int64)
}

// LogSink is a NotificationSink that writes to the log.
type LogSink struct {
	log logging.Logger
}

func NewLogSink(log logging.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Notify(ctx context.Context, userID int64, message string, recordingID int64) {
	s.log.Info(ctx, "notification", "user_id", userID, "recording_id", recordingID, "message", message)
}

// Notifications reads and acknowledges a user's stored notifications.
type Notifications struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNotifications(db *sql.DB, m repomanager.RepositoryManager) *Notifications {
	return &Notifications{db: db, repomanager: m}
}

func (n *Notifications) List(ctx context.Context, userID int64) ([]*models.Notification, error) {
	items, err := n.repomanager.Notifications(n.db).GetByUser(ctx, userID)
	if err != nil {
		return nil, common.NewOpError("list notifications", common.ErrStoreFailed, 0, userID, err)
	}
	return items, nil
}

// MarkRead fails with ErrorNotFound when the notification is not the user's.
func (n *Notifications) MarkRead(ctx context.Context, id, userID int64) error {
	err := n.repomanager.Notifications(n.db).MarkRead(ctx, id, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewOpError("mark notification read", common.ErrorNotFound, 0, userID, nil)
	}
	if err != nil {
		return common.NewOpError("mark notification read", common.ErrStoreFailed, 0, userID, err)
	}
	return nil
}
