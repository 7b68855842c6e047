// Package sessions defines the repository contract for Session records.
package sessions

import (
	"context"
	"time"

	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// Repository is the persistence contract for sessions. The schema enforces
// at most one session per user.
type Repository interface {
	// Create inserts the session. A second session for the same user yields
	// common.ErrNameInUse from the unique constraint.
	Create(ctx context.Context, session *models.Session) error

	// Get returns the site's session or common.ErrNotFound.
	Get(ctx context.Context, siteID int64, id string) (*models.Session, error)

	// GetByUserID returns the user's session or common.ErrNotFound.
	GetByUserID(ctx context.Context, userID int64) (*models.Session, error)

	// UpdateValidUntil moves the session's expiry; common.ErrNotFound if the
	// session no longer exists.
	UpdateValidUntil(ctx context.Context, id string, validUntil time.Time) error

	// ListBySite returns all sessions of the site.
	ListBySite(ctx context.Context, siteID int64) ([]*models.Session, error)

	// Delete removes the session; common.ErrNotFound if it is already gone.
	Delete(ctx context.Context, siteID int64, id string) error

	// DeleteByUserID removes the user's session if any.
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired removes every session of the site whose validity ended
	// before now and returns the number of rows removed.
	DeleteExpired(ctx context.Context, siteID int64, now time.Time) (int64, error)
}
