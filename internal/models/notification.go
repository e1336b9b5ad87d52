package models

import "time"

type Notification struct {
	ID          int64
	UserID      int64
	Message     string
	IsRead      bool
	CreatedAt   time.Time
	RecordingID int64
}

type User struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}
