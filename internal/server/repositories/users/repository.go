// Package users defines the repository contract for User records.
package users

import (
	"context"

	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// Repository is the persistence contract for users.
type Repository interface {
	// Create inserts the user and returns it with its assigned ID.
	// A duplicate (siteID, username) pair yields common.ErrNameInUse.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the site's user or common.ErrNotFound.
	GetByID(ctx context.Context, siteID, id int64) (*models.User, error)

	// GetByUsername returns the site's user or common.ErrNotFound.
	GetByUsername(ctx context.Context, siteID int64, username string) (*models.User, error)

	// ListBySite returns all users of the site ordered by username.
	ListBySite(ctx context.Context, siteID int64) ([]*models.User, error)

	// Delete removes the user; common.ErrNotFound if it is already gone.
	Delete(ctx context.Context, siteID, id int64) error
}
