// Package sites defines the repository contract for Site records.
package sites

import (
	"context"

	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// Repository is the persistence contract for sites.
type Repository interface {
	// Create inserts the site and returns it with its assigned ID.
	// A duplicate name yields common.ErrNameInUse.
	Create(ctx context.Context, site *models.Site) (*models.Site, error)

	// GetByID returns the site or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Site, error)

	// GetByName returns the site or common.ErrNotFound.
	GetByName(ctx context.Context, name string) (*models.Site, error)

	// List returns all sites ordered by name.
	List(ctx context.Context) ([]*models.Site, error)

	// Delete removes the site; common.ErrNotFound if it is already gone.
	Delete(ctx context.Context, id int64) error
}
