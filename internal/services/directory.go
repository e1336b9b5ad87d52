package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/dmitrijs2005/voicevault/internal/repositories/repomanager"
)

// UserDirectory resolves users by email.
type UserDirectory interface {
	ResolveUserIDByEmail(ctx context.Context, email string) (int64, bool, error)
	GetEmail(ctx context.Context, userID int64) (string, error)
}

// SQLUserDirectory is the UserDirectory backed by the users table.
type SQLUserDirectory struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSQLUserDirectory(db *sql.DB, m repomanager.RepositoryManager) *SQLUserDirectory {
	return &SQLUserDirectory{db: db, repomanager: m}
}

func (d *SQLUserDirectory) ResolveUserIDByEmail(ctx context.Context, email string) (int64, bool, error) {
	u, err := d.repomanager.Users(d.db).GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return u.ID, true, nil
}

func (d *SQLUserDirectory) GetEmail(ctx context.Context, userID int64) (string, error) {
	u, err := d.repomanager.Users(d.db).GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

// Register adds a user and returns its id. Registering an existing email
// returns the existing id.
func (d *SQLUserDirectory) Register(ctx context.Context, email string) (int64, error) {
	id, err := d.repomanager.Users(d.db).Create(ctx, email)
	if errors.Is(err, common.ErrorAlreadyExists) {
		return id, nil
	}
	return id, err
}
