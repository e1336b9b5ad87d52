// Package recordings persists Recording metadata rows.
package recordings

import (
	"context"

	"github.com/dmitrijs2005/voicevault/internal/models"
)

// Repository describes CRUD over recording metadata. Each method is a
// single-row statement.
type Repository interface {
	// Insert stores r and returns the id assigned by the database.
	Insert(ctx context.Context, r *models.Recording) (int64, error)

	// GetByID returns common.ErrorNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*models.Recording, error)

	// GetByOwner returns the owner's recordings, newest first.
	GetByOwner(ctx context.Context, userID int64) ([]*models.Recording, error)

	// DeleteByID removes the row. Share grants are left untouched.
	DeleteByID(ctx context.Context, id int64) error
}
