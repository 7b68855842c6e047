package inmemory

import (
	"context"
	"fmt"
	"sort"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/auctions"
)

type auctionsRepo struct {
	s    *Store
	inTx bool
}

func copyAuction(a models.Auction) *models.Auction {
	if a.WinnerID != nil {
		w := *a.WinnerID
		a.WinnerID = &w
	}
	return &a
}

func (r *auctionsRepo) Create(ctx context.Context, auction *models.Auction) (*models.Auction, error) {
	err := r.s.run(r.inTx, func(d *dataset) error {
		if _, ok := d.sites[auction.SiteID]; !ok {
			return fmt.Errorf("%w: auctions_site_id_fkey", common.ErrForeignKey)
		}
		if _, ok := d.users[auction.SellerID]; !ok {
			return fmt.Errorf("%w: auctions_seller_id_fkey", common.ErrForeignKey)
		}
		if auction.WinnerID != nil {
			if _, ok := d.users[*auction.WinnerID]; !ok {
				return fmt.Errorf("%w: auctions_winner_id_fkey", common.ErrForeignKey)
			}
		}
		r.s.nextAuctionID++
		auction.ID = r.s.nextAuctionID
		auction.Version = 1
		d.auctions[auction.ID] = *copyAuction(*auction)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return auction, nil
}

func (r *auctionsRepo) Get(ctx context.Context, siteID, id int64) (*models.Auction, error) {
	var found *models.Auction
	err := r.s.run(r.inTx, func(d *dataset) error {
		auction, ok := d.auctions[id]
		if !ok || auction.SiteID != siteID {
			return common.ErrNotFound
		}
		found = copyAuction(auction)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *auctionsRepo) ListBySite(ctx context.Context, siteID int64) ([]*models.Auction, error) {
	return r.list(func(a models.Auction) bool { return a.SiteID == siteID })
}

func (r *auctionsRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*models.Auction, error) {
	return r.list(func(a models.Auction) bool { return a.SellerID == sellerID })
}

func (r *auctionsRepo) ListByWinner(ctx context.Context, winnerID int64) ([]*models.Auction, error) {
	return r.list(func(a models.Auction) bool { return a.WinnerID != nil && *a.WinnerID == winnerID })
}

func (r *auctionsRepo) list(match func(models.Auction) bool) ([]*models.Auction, error) {
	var result []*models.Auction
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, auction := range d.auctions {
			if match(auction) {
				result = append(result, copyAuction(auction))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *auctionsRepo) UpdateBidState(ctx context.Context, auction *models.Auction) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		stored, ok := d.auctions[auction.ID]
		if !ok || stored.SiteID != auction.SiteID || stored.Version != auction.Version {
			return common.ErrConcurrentChange
		}
		stored.Price = auction.Price
		stored.HighestBid = auction.HighestBid
		if auction.WinnerID != nil {
			if _, ok := d.users[*auction.WinnerID]; !ok {
				return fmt.Errorf("%w: auctions_winner_id_fkey", common.ErrForeignKey)
			}
			w := *auction.WinnerID
			stored.WinnerID = &w
		} else {
			stored.WinnerID = nil
		}
		stored.Version++
		d.auctions[auction.ID] = stored
		auction.Version = stored.Version
		return nil
	})
}

func (r *auctionsRepo) Delete(ctx context.Context, siteID, id int64) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		auction, ok := d.auctions[id]
		if !ok || auction.SiteID != siteID {
			return common.ErrNotFound
		}
		delete(d.auctions, id)
		return nil
	})
}

var _ auctions.Repository = (*auctionsRepo)(nil)
