package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

func seedSite(t *testing.T, s *Store, name string) *models.Site {
	t.Helper()
	site, err := s.View().Sites.Create(context.Background(), &models.Site{
		Name:                     name,
		Timezone:                 2,
		SessionExpirationSeconds: 3600,
		MinimumBidIncrement:      1,
	})
	require.NoError(t, err)
	return site
}

func seedUser(t *testing.T, s *Store, siteID int64, username string) *models.User {
	t.Helper()
	user, err := s.View().Users.Create(context.Background(), &models.User{
		SiteID:       siteID,
		Username:     username,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user
}

func TestSites_UniqueName(t *testing.T) {
	s := NewStore()
	seedSite(t, s, "market")

	_, err := s.View().Sites.Create(context.Background(), &models.Site{Name: "market"})
	require.ErrorIs(t, err, common.ErrNameInUse)
}

func TestSites_DeleteWithUsers(t *testing.T) {
	s := NewStore()
	site := seedSite(t, s, "market")
	seedUser(t, s, site.ID, "alice")

	err := s.View().Sites.Delete(context.Background(), site.ID)
	require.ErrorIs(t, err, common.ErrForeignKey)
}

func TestUsers_UniquePerSite(t *testing.T) {
	s := NewStore()
	a := seedSite(t, s, "a")
	b := seedSite(t, s, "b")
	seedUser(t, s, a.ID, "alice")

	_, err := s.View().Users.Create(context.Background(), &models.User{SiteID: a.ID, Username: "alice"})
	require.ErrorIs(t, err, common.ErrNameInUse)

	// same username on another site is fine
	_, err = s.View().Users.Create(context.Background(), &models.User{SiteID: b.ID, Username: "alice"})
	require.NoError(t, err)
}

func TestUsers_DeleteCascadesSessionAndWinner(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	site := seedSite(t, s, "market")
	seller := seedUser(t, s, site.ID, "seller")
	bidder := seedUser(t, s, site.ID, "bidder")

	require.NoError(t, s.View().Sessions.Create(ctx, &models.Session{
		ID: "7", SiteID: site.ID, UserID: bidder.ID, ValidUntil: time.Now().Add(time.Hour),
	}))
	auction, err := s.View().Auctions.Create(ctx, &models.Auction{
		SiteID: site.ID, SellerID: seller.ID, Description: "lamp",
		EndsOn: time.Now().Add(time.Hour), Price: 10, HighestBid: 25, WinnerID: &bidder.ID,
	})
	require.NoError(t, err)

	require.NoError(t, s.View().Users.Delete(ctx, site.ID, bidder.ID))

	_, err = s.View().Sessions.Get(ctx, site.ID, "7")
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := s.View().Auctions.Get(ctx, site.ID, auction.ID)
	require.NoError(t, err)
	require.Nil(t, got.WinnerID)
}

func TestUsers_DeleteSellerBlocked(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	site := seedSite(t, s, "market")
	seller := seedUser(t, s, site.ID, "seller")

	_, err := s.View().Auctions.Create(ctx, &models.Auction{
		SiteID: site.ID, SellerID: seller.ID, EndsOn: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	err = s.View().Users.Delete(ctx, site.ID, seller.ID)
	require.ErrorIs(t, err, common.ErrForeignKey)
}

func TestSessions_OnePerUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	site := seedSite(t, s, "market")
	user := seedUser(t, s, site.ID, "alice")

	require.NoError(t, s.View().Sessions.Create(ctx, &models.Session{
		ID: "1", SiteID: site.ID, UserID: user.ID, ValidUntil: time.Now().Add(time.Hour),
	}))
	err := s.View().Sessions.Create(ctx, &models.Session{
		ID: "other", SiteID: site.ID, UserID: user.ID, ValidUntil: time.Now().Add(time.Hour),
	})
	require.ErrorIs(t, err, common.ErrNameInUse)
}

func TestSessions_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewStore()
	site := seedSite(t, s, "market")
	alice := seedUser(t, s, site.ID, "alice")
	bob := seedUser(t, s, site.ID, "bob")

	require.NoError(t, s.View().Sessions.Create(ctx, &models.Session{
		ID: "1", SiteID: site.ID, UserID: alice.ID, ValidUntil: now.Add(-time.Minute),
	}))
	require.NoError(t, s.View().Sessions.Create(ctx, &models.Session{
		ID: "2", SiteID: site.ID, UserID: bob.ID, ValidUntil: now.Add(time.Hour),
	}))

	n, err := s.View().Sessions.DeleteExpired(ctx, site.ID, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	remaining, err := s.View().Sessions.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "2", remaining[0].ID)
}

func TestAuctions_VersionGuard(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	site := seedSite(t, s, "market")
	seller := seedUser(t, s, site.ID, "seller")
	bidder := seedUser(t, s, site.ID, "bidder")

	auction, err := s.View().Auctions.Create(ctx, &models.Auction{
		SiteID: site.ID, SellerID: seller.ID, EndsOn: time.Now().Add(time.Hour),
		Price: 10, HighestBid: 10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), auction.Version)

	auction.HighestBid = 20
	auction.WinnerID = &bidder.ID
	require.NoError(t, s.View().Auctions.UpdateBidState(ctx, auction))
	require.Equal(t, int64(2), auction.Version)

	stale := *auction
	stale.Version = 1
	err = s.View().Auctions.UpdateBidState(ctx, &stale)
	require.ErrorIs(t, err, common.ErrConcurrentChange)
}

func TestWithin_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	site := seedSite(t, s, "market")

	sentinel := errors.New("boom")
	err := s.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		if _, err := r.Users.Create(ctx, &models.User{SiteID: site.ID, Username: "ghost"}); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	users, err := s.View().Users.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Empty(t, users)

	// counters advance even across rollback, so the next id is fresh
	u := seedUser(t, s, site.ID, "real")
	require.Greater(t, u.ID, int64(1))
}

func TestWithin_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	site := seedSite(t, s, "market")

	err := s.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		_, err := r.Users.Create(ctx, &models.User{SiteID: site.ID, Username: "alice"})
		return err
	})
	require.NoError(t, err)

	users, err := s.View().Users.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedSite(t, s, "zulu")
	seedSite(t, s, "alpha")

	sitesList, err := s.View().Sites.List(ctx)
	require.NoError(t, err)
	require.Len(t, sitesList, 2)
	require.Equal(t, "alpha", sitesList[0].Name)
	require.Equal(t, "zulu", sitesList[1].Name)
}
