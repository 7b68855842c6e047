package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/auctionsite/internal/common"
)

func TestLogin_CreatesSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t)
	user, session := e.bidder(t, site.ID, "alice")

	require.Equal(t, SessionIDFor(user.ID), session.ID)
	require.True(t, session.ValidUntil.Equal(testStart.Add(time.Hour)))

	_, err := e.site.Login(ctx, site.ID, "alice", "wrong-pass")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = e.site.Login(ctx, site.ID, "nobody-here", "secret-pass")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLogin_IdempotentReLogin(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t)
	_, first := e.bidder(t, site.ID, "alice")

	e.clk.Advance(time.Minute)
	second, err := e.site.Login(ctx, site.ID, "alice", "secret-pass")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.True(t, second.ValidUntil.After(first.ValidUntil))

	all, err := e.store.View().Sessions.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestTouch(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t)
	_, session := e.bidder(t, site.ID, "alice")

	e.clk.Advance(time.Minute)
	touched, err := e.sessions.Touch(ctx, site, session.ID)
	require.NoError(t, err)
	require.True(t, touched.ValidUntil.After(session.ValidUntil))

	_, err = e.sessions.Touch(ctx, site, "no-such-session")
	require.ErrorIs(t, err, common.ErrUnauthorized)

	e.clk.Advance(61 * time.Minute)
	_, err = e.sessions.Touch(ctx, site, session.ID)
	require.ErrorIs(t, err, common.ErrSessionExpired)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t)
	_, session := e.bidder(t, site.ID, "alice")

	require.NoError(t, e.site.Logout(ctx, site.ID, session.ID))
	require.ErrorIs(t, e.site.Logout(ctx, site.ID, session.ID), common.ErrNotFound)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t)
	e.bidder(t, site.ID, "alice")
	e.bidder(t, site.ID, "bob")

	e.sweeper.StopAll() // drive the sweep by hand
	e.clk.Advance(50 * time.Minute)
	_, err := e.site.Login(ctx, site.ID, "bob", "secret-pass")
	require.NoError(t, err)

	e.clk.Advance(11 * time.Minute) // alice expired at +60, bob lives to +110
	n, err := e.sessions.SweepExpired(ctx, site)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	remaining, err := e.store.View().Sessions.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
}

func TestSweeper_ReapsOnSchedule(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t) // CreateSite registered the recurring sweep
	e.bidder(t, site.ID, "alice")

	// one second past expiry is enough for the next tick to reap it
	e.clk.Advance(65 * time.Minute)

	sessions, err := e.store.View().Sessions.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestSweeper_UnregisterStopsSweeping(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	site := e.market(t)
	e.bidder(t, site.ID, "alice")

	e.sweeper.Unregister(site.ID)
	e.clk.Advance(2 * time.Hour)

	sessions, err := e.store.View().Sessions.ListBySite(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1) // expired but nobody sweeps anymore
}
