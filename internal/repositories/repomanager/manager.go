package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/repositories/notifications"
	"github.com/dmitrijs2005/voicevault/internal/repositories/recordings"
	"github.com/dmitrijs2005/voicevault/internal/repositories/sharegrants"
	"github.com/dmitrijs2005/voicevault/internal/repositories/userkeys"
	"github.com/dmitrijs2005/voicevault/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	EnsureSchema(context.Context, *sql.DB) error
	Dialect() dbx.Dialect

	Recordings(db dbx.DBTX) recordings.Repository
	ShareGrants(db dbx.DBTX) sharegrants.Repository
	UserKeys(db dbx.DBTX) userkeys.Repository
	Notifications(db dbx.DBTX) notifications.Repository
	Users(db dbx.DBTX) users.Repository
}
