package services

import (
	"context"
	"errors"
	"math"

	"github.com/mkuznecov/auctionsite/internal/clock"
	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/metrics"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

// BidOutcome is the non-exceptional result of a bid attempt. A rejected bid
// is a normal outcome, distinct from errors like an expired session.
type BidOutcome int

const (
	BidRejected BidOutcome = iota
	BidAccepted
)

func (o BidOutcome) String() string {
	if o == BidAccepted {
		return "accepted"
	}
	return "rejected"
}

// BiddingEngine applies the English-auction proxy-bid rules. An auction's
// price is what bidders see; highestBid is the winner's committed maximum
// and only ever leaks into price through competition.
type BiddingEngine struct {
	store    repomanager.Store
	clk      clock.Clock
	sessions *SessionManager
	log      logging.Logger
	metrics  *metrics.Metrics
}

// NewBiddingEngine constructs a BiddingEngine.
func NewBiddingEngine(store repomanager.Store, clk clock.Clock, sessions *SessionManager, log logging.Logger, m *metrics.Metrics) *BiddingEngine {
	return &BiddingEngine{
		store:    store,
		clk:      clk,
		sessions: sessions,
		log:      log.With("component", "bidding"),
		metrics:  m,
	}
}

// PlaceBid applies offer to the auction on behalf of the session's user.
//
// The whole attempt runs in one transaction: session validation and renewal,
// the price/winner computation and the version-guarded auction update commit
// or roll back together. A version conflict (someone else's bid committed
// first) is retried once against the fresh state before surfacing
// ErrConcurrentChange.
//
// A bid on an already-ended auction is BidRejected with no state change and
// no session renewal. Any other valid attempt renews the session even when
// the offer is too low to be accepted.
func (e *BiddingEngine) PlaceBid(ctx context.Context, site *models.Site, auctionID int64, sessionID string, offer float64) (BidOutcome, error) {
	if offer < 0 {
		return BidRejected, common.ErrInvalidArgument
	}

	var outcome BidOutcome
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		outcome, err = e.placeBidOnce(ctx, site, auctionID, sessionID, offer)
		if !errors.Is(err, common.ErrConcurrentChange) {
			break
		}
		e.metrics.BidConflictsTotal.Inc()
		e.log.Debug(ctx, "bid conflict, retrying", "site_id", site.ID, "auction_id", auctionID)
	}
	if err != nil {
		return BidRejected, err
	}

	e.metrics.BidsTotal.WithLabelValues(outcome.String()).Inc()
	return outcome, nil
}

func (e *BiddingEngine) placeBidOnce(ctx context.Context, site *models.Site, auctionID int64, sessionID string, offer float64) (BidOutcome, error) {
	outcome := BidRejected
	err := e.store.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		auction, err := r.Auctions.Get(ctx, site.ID, auctionID)
		if err != nil {
			return err
		}

		session, err := r.Sessions.Get(ctx, site.ID, sessionID)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		if err != nil {
			return err
		}
		now := e.clk.Now(site.Timezone)
		if session.Expired(now) {
			return common.ErrSessionExpired
		}

		// A closed auction rejects without renewing the session.
		if auction.Ended(now) {
			return nil
		}

		if _, err := e.sessions.touch(ctx, r, site, sessionID); err != nil {
			return err
		}

		if !applyBid(auction, session.UserID, offer, site.MinimumBidIncrement) {
			return nil
		}
		outcome = BidAccepted
		return r.Auctions.UpdateBidState(ctx, auction)
	})
	if err != nil {
		return BidRejected, err
	}
	return outcome, nil
}

// applyBid mutates auction per the proxy-bid rules and reports whether the
// offer was accepted. Accepted covers both taking the lead and pushing the
// incumbent's price up without displacing them.
func applyBid(auction *models.Auction, bidder int64, offer float64, increment float64) bool {
	switch {
	case auction.WinnerID == nil:
		// First bid wins at the starting price; the visible price only
		// rises once a second bidder competes.
		if offer < auction.Price {
			return false
		}
		auction.HighestBid = offer
		auction.WinnerID = &bidder

	case *auction.WinnerID == bidder:
		// Raising one's own maximum never moves the public price.
		if offer < auction.HighestBid+increment {
			return false
		}
		auction.HighestBid = offer

	default:
		if offer < auction.Price+increment {
			return false
		}
		if offer > auction.HighestBid {
			// Incumbent displaced; price lands one increment above
			// their maximum, capped by the new bid.
			auction.Price = math.Min(auction.HighestBid+increment, offer)
			auction.HighestBid = offer
			auction.WinnerID = &bidder
		} else {
			// Incumbent's proxy maximum absorbs the challenge; the
			// price climbs to reflect the competition.
			auction.Price = math.Min(auction.HighestBid, offer+increment)
		}
	}
	return true
}

// CurrentPrice returns the auction's visible clearing price.
func (e *BiddingEngine) CurrentPrice(ctx context.Context, siteID, auctionID int64) (float64, error) {
	auction, err := e.store.View().Auctions.Get(ctx, siteID, auctionID)
	if err != nil {
		return 0, err
	}
	return auction.Price, nil
}

// CurrentWinner returns the user holding the winning bid, or (nil, nil)
// while no bid has been accepted yet.
func (e *BiddingEngine) CurrentWinner(ctx context.Context, siteID, auctionID int64) (*models.User, error) {
	auction, err := e.store.View().Auctions.Get(ctx, siteID, auctionID)
	if err != nil {
		return nil, err
	}
	if auction.WinnerID == nil {
		return nil, nil
	}
	return e.store.View().Users.GetByID(ctx, siteID, *auction.WinnerID)
}
