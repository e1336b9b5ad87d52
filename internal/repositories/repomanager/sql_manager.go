// Package repomanager vends the SQL repositories for one dialect and owns the
// schema: goose migrations plus a column check for databases that drifted.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/dmitrijs2005/voicevault/internal/dbx"
	"github.com/dmitrijs2005/voicevault/internal/migrations"
	"github.com/dmitrijs2005/voicevault/internal/repositories/notifications"
	"github.com/dmitrijs2005/voicevault/internal/repositories/recordings"
	"github.com/dmitrijs2005/voicevault/internal/repositories/sharegrants"
	"github.com/dmitrijs2005/voicevault/internal/repositories/userkeys"
	"github.com/dmitrijs2005/voicevault/internal/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLRepositoryManager vends repositories bound to a DBTX for its dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) (*SQLRepositoryManager, error) {
	if _, err := dbx.ParseDialect(string(dialect)); err != nil {
		return nil, err
	}
	return &SQLRepositoryManager{dialect: dialect}, nil
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect { return m.dialect }

func (m *SQLRepositoryManager) Recordings(db dbx.DBTX) recordings.Repository {
	return recordings.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) ShareGrants(db dbx.DBTX) sharegrants.Repository {
	return sharegrants.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) UserKeys(db dbx.DBTX) userkeys.Repository {
	return userkeys.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Notifications(db dbx.DBTX) notifications.Repository {
	return notifications.NewSQLRepository(db, m.dialect)
}

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db, m.dialect)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (m *SQLRepositoryManager) migrationSource() (fs.FS, string, string) {
	if m.dialect == dbx.Postgres {
		return migrations.Postgres, "postgres", "postgres"
	}
	return migrations.SQLite, "sqlite3", "sqlite"
}

// RunMigrations applies the embedded migrations of the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	fsys, gooseDialect, dir := m.migrationSource()
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return err
	}
	return nil
}

// Open connects with the dialect's driver, pings, migrates and checks the
// schema.
func Open(ctx context.Context, dialect dbx.Dialect, dsn string) (*sql.DB, *SQLRepositoryManager, error) {
	m, err := NewSQLRepositoryManager(dialect)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == dbx.SQLite {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := m.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, m, nil
}
