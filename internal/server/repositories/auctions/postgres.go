package auctions

import (
	"context"
	"fmt"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/dbx"
	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const auctionColumns = `id, site_id, seller_id, description, ends_on, price, highest_bid, winner_id, version`

func (r *PostgresRepository) Create(ctx context.Context, auction *models.Auction) (*models.Auction, error) {
	query := `
		INSERT INTO auctions (site_id, seller_id, description, ends_on, price, highest_bid, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version
	`
	err := r.db.QueryRowContext(ctx, query,
		auction.SiteID, auction.SellerID, auction.Description, auction.EndsOn,
		auction.Price, auction.HighestBid, auction.WinnerID).Scan(&auction.ID, &auction.Version)
	if err != nil {
		return nil, fmt.Errorf("error creating auction: %w", dbx.NormalizeError(err))
	}
	return auction, nil
}

func (r *PostgresRepository) Get(ctx context.Context, siteID, id int64) (*models.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE site_id = $1 AND id = $2`
	return scanAuction(r.db.QueryRowContext(ctx, query, siteID, id))
}

func (r *PostgresRepository) ListBySite(ctx context.Context, siteID int64) ([]*models.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE site_id = $1 ORDER BY id`
	return r.list(ctx, query, siteID)
}

func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*models.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE seller_id = $1 ORDER BY id`
	return r.list(ctx, query, sellerID)
}

func (r *PostgresRepository) ListByWinner(ctx context.Context, winnerID int64) ([]*models.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE winner_id = $1 ORDER BY id`
	return r.list(ctx, query, winnerID)
}

func (r *PostgresRepository) UpdateBidState(ctx context.Context, auction *models.Auction) error {
	query := `
		UPDATE auctions
		SET price = $1, highest_bid = $2, winner_id = $3, version = version + 1
		WHERE site_id = $4 AND id = $5 AND version = $6
	`
	res, err := r.db.ExecContext(ctx, query,
		auction.Price, auction.HighestBid, auction.WinnerID,
		auction.SiteID, auction.ID, auction.Version)
	if err != nil {
		return fmt.Errorf("error updating auction: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error updating auction: %w", err)
	}
	if n == 0 {
		// Either the row vanished or someone else committed first; the
		// caller re-reads to find out which.
		return common.ErrConcurrentChange
	}
	auction.Version++
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, siteID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM auctions WHERE site_id = $1 AND id = $2`, siteID, id)
	if err != nil {
		return fmt.Errorf("error deleting auction: %w", dbx.NormalizeError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error deleting auction: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Auction, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("error listing auctions: %w", dbx.NormalizeError(err))
	}
	defer rows.Close()

	var result []*models.Auction
	for rows.Next() {
		auction := &models.Auction{}
		if err := rows.Scan(&auction.ID, &auction.SiteID, &auction.SellerID, &auction.Description,
			&auction.EndsOn, &auction.Price, &auction.HighestBid, &auction.WinnerID, &auction.Version); err != nil {
			return nil, fmt.Errorf("error scanning auction: %w", err)
		}
		result = append(result, auction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing auctions: %w", dbx.NormalizeError(err))
	}
	return result, nil
}

func scanAuction(row interface{ Scan(...any) error }) (*models.Auction, error) {
	auction := &models.Auction{}
	err := row.Scan(&auction.ID, &auction.SiteID, &auction.SellerID, &auction.Description,
		&auction.EndsOn, &auction.Price, &auction.HighestBid, &auction.WinnerID, &auction.Version)
	if err != nil {
		return nil, dbx.NormalizeError(err)
	}
	return auction, nil
}

var _ Repository = (*PostgresRepository)(nil)
