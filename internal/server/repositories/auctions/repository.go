// Package auctions defines the repository contract for Auction records.
package auctions

import (
	"context"

	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// Repository is the persistence contract for auctions.
type Repository interface {
	// Create inserts the auction and returns it with its assigned ID and
	// initial version.
	Create(ctx context.Context, auction *models.Auction) (*models.Auction, error)

	// Get returns the site's auction or common.ErrNotFound.
	Get(ctx context.Context, siteID, id int64) (*models.Auction, error)

	// ListBySite returns the site's auctions ordered by id.
	ListBySite(ctx context.Context, siteID int64) ([]*models.Auction, error)

	// ListBySeller returns the auctions the user listed.
	ListBySeller(ctx context.Context, sellerID int64) ([]*models.Auction, error)

	// ListByWinner returns the auctions the user is currently winning.
	ListByWinner(ctx context.Context, winnerID int64) ([]*models.Auction, error)

	// UpdateBidState persists (price, highest_bid, winner_id) guarded by the
	// auction's version: the row is written only if the stored version still
	// matches auction.Version, and the version is incremented. A mismatch
	// yields common.ErrConcurrentChange; on success auction.Version carries
	// the new value.
	UpdateBidState(ctx context.Context, auction *models.Auction) error

	// Delete removes the auction; common.ErrNotFound if it is already gone.
	Delete(ctx context.Context, siteID, id int64) error
}
