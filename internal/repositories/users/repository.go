// Package users persists the user directory: integer ids and unique emails.
package users

import (
	"context"

	"github.com/dmitrijs2005/voicevault/internal/models"
)

type Repository interface {
	// Create inserts a user and returns its id. A duplicate email returns
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, email string) (int64, error)

	// GetByEmail returns common.ErrorNotFound when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns common.ErrorNotFound when the id is unknown.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
