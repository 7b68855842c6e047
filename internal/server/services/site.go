package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkuznecov/auctionsite/internal/clock"
	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/cryptox"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

// SiteService orchestrates every site-scoped operation by composing the
// SessionManager and BiddingEngine over the store. Each operation first
// asserts the site still exists, so a handle to a deleted site fails with
// ErrNotFound instead of acting on thin air.
type SiteService struct {
	store    repomanager.Store
	clk      clock.Clock
	log      logging.Logger
	sessions *SessionManager
	bidding  *BiddingEngine
	sweeper  *Sweeper
}

// NewSiteService constructs a SiteService.
func NewSiteService(store repomanager.Store, clk clock.Clock, log logging.Logger, sessions *SessionManager, bidding *BiddingEngine, sweeper *Sweeper) *SiteService {
	return &SiteService{
		store:    store,
		clk:      clk,
		log:      log.With("component", "site"),
		sessions: sessions,
		bidding:  bidding,
		sweeper:  sweeper,
	}
}

func (s *SiteService) site(ctx context.Context, siteID int64) (*models.Site, error) {
	site, err := s.store.View().Sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("resolving site %d: %w", siteID, err)
	}
	return site, nil
}

// Now returns the site's current local time.
func (s *SiteService) Now(ctx context.Context, siteID int64) (time.Time, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return time.Time{}, err
	}
	return s.clk.Now(site.Timezone), nil
}

// CreateUser registers a new account on the site. The password is stored as
// an argon2id hash; a taken username yields ErrNameInUse.
func (s *SiteService) CreateUser(ctx context.Context, siteID int64, username, password string) (*models.User, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.store.View().Users.Create(ctx, &models.User{
		SiteID:       site.ID,
		Username:     username,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user created", "site_id", site.ID, "user_id", user.ID)
	return user, nil
}

// Login authenticates the user and returns their (possibly pre-existing,
// now extended) session.
func (s *SiteService) Login(ctx context.Context, siteID int64, username, password string) (*models.Session, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if err := common.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}
	return s.sessions.Login(ctx, site, username, password)
}

// Logout ends the session; ErrNotFound if it is already gone.
func (s *SiteService) Logout(ctx context.Context, siteID int64, sessionID string) error {
	if _, err := s.site(ctx, siteID); err != nil {
		return err
	}
	return s.sessions.Logout(ctx, siteID, sessionID)
}

// CreateAuction lists a new auction on behalf of the session's user. The
// description must be non-empty, the end time must not precede the site's
// current time (ErrTimeMachine) and the starting price must not be negative.
func (s *SiteService) CreateAuction(ctx context.Context, siteID int64, sessionID, description string, endsOn time.Time, startingPrice float64) (*models.Auction, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: empty description", common.ErrInvalidArgument)
	}
	if startingPrice < 0 {
		return nil, fmt.Errorf("%w: negative starting price", common.ErrInvalidArgument)
	}

	var auction *models.Auction
	err = s.store.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		session, err := s.sessions.touch(ctx, r, site, sessionID)
		if err != nil {
			return err
		}
		if endsOn.Before(s.clk.Now(site.Timezone)) {
			return common.ErrTimeMachine
		}
		auction, err = r.Auctions.Create(ctx, &models.Auction{
			SiteID:      site.ID,
			SellerID:    session.UserID,
			Description: description,
			EndsOn:      endsOn,
			Price:       startingPrice,
			HighestBid:  startingPrice,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "auction created", "site_id", site.ID, "auction_id", auction.ID, "seller_id", auction.SellerID)
	return auction, nil
}

// PlaceBid forwards to the bidding engine.
func (s *SiteService) PlaceBid(ctx context.Context, siteID, auctionID int64, sessionID string, offer float64) (BidOutcome, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return BidRejected, err
	}
	return s.bidding.PlaceBid(ctx, site, auctionID, sessionID, offer)
}

// CurrentPrice returns the auction's visible price.
func (s *SiteService) CurrentPrice(ctx context.Context, siteID, auctionID int64) (float64, error) {
	if _, err := s.site(ctx, siteID); err != nil {
		return 0, err
	}
	return s.bidding.CurrentPrice(ctx, siteID, auctionID)
}

// CurrentWinner returns the auction's current winner, nil while none.
func (s *SiteService) CurrentWinner(ctx context.Context, siteID, auctionID int64) (*models.User, error) {
	if _, err := s.site(ctx, siteID); err != nil {
		return nil, err
	}
	return s.bidding.CurrentWinner(ctx, siteID, auctionID)
}

// ListUsers returns the site's users ordered by username.
func (s *SiteService) ListUsers(ctx context.Context, siteID int64) ([]*models.User, error) {
	if _, err := s.site(ctx, siteID); err != nil {
		return nil, err
	}
	return s.store.View().Users.ListBySite(ctx, siteID)
}

// ListSessions returns the site's live sessions. Expired ones are swept
// first so a stale row is never observed.
func (s *SiteService) ListSessions(ctx context.Context, siteID int64) ([]*models.Session, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessions.SweepExpired(ctx, site); err != nil {
		return nil, err
	}
	return s.store.View().Sessions.ListBySite(ctx, siteID)
}

// ListAuctions returns the site's auctions as a point-in-time snapshot,
// restricted to those still running when onlyActive is set.
func (s *SiteService) ListAuctions(ctx context.Context, siteID int64, onlyActive bool) ([]*models.Auction, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return nil, err
	}
	auctions, err := s.store.View().Auctions.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !onlyActive {
		return auctions, nil
	}
	now := s.clk.Now(site.Timezone)
	active := auctions[:0]
	for _, a := range auctions {
		if !a.Ended(now) {
			active = append(active, a)
		}
	}
	return active, nil
}

// WonAuctions returns the ended auctions the user has won.
func (s *SiteService) WonAuctions(ctx context.Context, siteID, userID int64) ([]*models.Auction, error) {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.View().Users.GetByID(ctx, siteID, userID); err != nil {
		return nil, err
	}
	winning, err := s.store.View().Auctions.ListByWinner(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now(site.Timezone)
	won := winning[:0]
	for _, a := range winning {
		if a.Ended(now) {
			won = append(won, a)
		}
	}
	return won, nil
}

// DeleteAuction removes the auction; ErrNotFound if it is already gone.
func (s *SiteService) DeleteAuction(ctx context.Context, siteID, auctionID int64) error {
	if _, err := s.site(ctx, siteID); err != nil {
		return err
	}
	return s.store.View().Auctions.Delete(ctx, siteID, auctionID)
}

// DeleteUser removes the user, their session and the auctions they listed.
// It fails while the user is winning any still-running auction, so a live
// winner is never silently dropped.
func (s *SiteService) DeleteUser(ctx context.Context, siteID int64, username string) error {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return err
	}
	err = s.store.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		user, err := r.Users.GetByUsername(ctx, site.ID, username)
		if err != nil {
			return err
		}
		return s.deleteUser(ctx, r, site, user)
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "user deleted", "site_id", site.ID, "username", username)
	return nil
}

// deleteUser is the cascade shared by DeleteUser and DeleteSite; it runs
// inside the caller's transaction.
func (s *SiteService) deleteUser(ctx context.Context, r repomanager.Repos, site *models.Site, user *models.User) error {
	now := s.clk.Now(site.Timezone)
	winning, err := r.Auctions.ListByWinner(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, a := range winning {
		if !a.Ended(now) {
			return fmt.Errorf("%w: %w", common.ErrInvalidOperation, common.ErrUserIsWinning)
		}
	}

	listed, err := r.Auctions.ListBySeller(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, a := range listed {
		if err := r.Auctions.Delete(ctx, site.ID, a.ID); err != nil {
			return err
		}
	}
	if err := r.Sessions.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}
	return r.Users.Delete(ctx, site.ID, user.ID)
}

// DeleteSite cancels the site's sweep task, cascades user deletion over all
// users and removes the site itself, all in one transaction. It fails, and
// the site survives, while any user is winning a live auction.
func (s *SiteService) DeleteSite(ctx context.Context, siteID int64) error {
	site, err := s.site(ctx, siteID)
	if err != nil {
		return err
	}
	err = s.store.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		users, err := r.Users.ListBySite(ctx, site.ID)
		if err != nil {
			return err
		}
		for _, user := range users {
			if err := s.deleteUser(ctx, r, site, user); err != nil {
				return err
			}
		}
		return r.Sites.Delete(ctx, site.ID)
	})
	if err != nil {
		return err
	}
	s.sweeper.Unregister(site.ID)
	s.log.Info(ctx, "site deleted", "site_id", site.ID, "name", site.Name)
	return nil
}
