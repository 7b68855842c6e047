package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/auctionsite/internal/clock"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/metrics"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/inmemory"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type env struct {
	store    repomanager.Store
	clk      *clock.FakeClock
	sessions *SessionManager
	bidding  *BiddingEngine
	sweeper  *Sweeper
	site     *SiteService
	host     *HostService
}

func newEnv(t *testing.T) *env {
	return newEnvWithStore(t, inmemory.NewStore())
}

func newEnvWithStore(t *testing.T, store repomanager.Store) *env {
	t.Helper()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	clk := clock.NewFakeClock(testStart)
	m := metrics.New(prometheus.NewRegistry())
	sessions := NewSessionManager(store, clk, log)
	bidding := NewBiddingEngine(store, clk, sessions, log, m)
	sweeper := NewSweeper(clk, sessions, log, m, 5*time.Minute)
	site := NewSiteService(store, clk, log, sessions, bidding, sweeper)
	host := NewHostService(store, log, sweeper, site)
	t.Cleanup(sweeper.StopAll)
	return &env{
		store:    store,
		clk:      clk,
		sessions: sessions,
		bidding:  bidding,
		sweeper:  sweeper,
		site:     site,
		host:     host,
	}
}

// market returns a site with starting increment 5 and a one-hour session.
func (e *env) market(t *testing.T) *models.Site {
	t.Helper()
	site, err := e.host.CreateSite(context.Background(), "market", 0, 3600, 5)
	require.NoError(t, err)
	return site
}

// bidder registers a user and logs them in.
func (e *env) bidder(t *testing.T, siteID int64, username string) (*models.User, *models.Session) {
	t.Helper()
	ctx := context.Background()
	user, err := e.site.CreateUser(ctx, siteID, username, "secret-pass")
	require.NoError(t, err)
	session, err := e.site.Login(ctx, siteID, username, "secret-pass")
	require.NoError(t, err)
	return user, session
}

// listing creates a one-hour auction with the given starting price.
func (e *env) listing(t *testing.T, siteID int64, sessionID string, startingPrice float64) *models.Auction {
	t.Helper()
	auction, err := e.site.CreateAuction(context.Background(), siteID, sessionID, "a fine lamp",
		testStart.Add(time.Hour), startingPrice)
	require.NoError(t, err)
	return auction
}
