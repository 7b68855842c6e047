// Package services contains the auction site's business logic: session
// lifecycle, the bidding engine, site-scoped orchestration and the host-level
// site registry. Services observe time only through clock.Clock and storage
// only through repomanager.Store, so every piece is testable against the
// in-memory store and a fake clock.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mkuznecov/auctionsite/internal/clock"
	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/cryptox"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

// SessionManager creates, renews and reaps login sessions. A user holds at
// most one session; its id is derived from the user id, which is what makes
// re-login idempotent.
type SessionManager struct {
	store repomanager.Store
	clk   clock.Clock
	log   logging.Logger
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(store repomanager.Store, clk clock.Clock, log logging.Logger) *SessionManager {
	return &SessionManager{store: store, clk: clk, log: log.With("component", "sessions")}
}

// SessionIDFor derives the session id owned by the given user.
func SessionIDFor(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (m *SessionManager) validUntil(site *models.Site) time.Time {
	now := m.clk.Now(site.Timezone)
	return now.Add(time.Duration(site.SessionExpirationSeconds) * time.Second)
}

// Login verifies the user's credentials and returns their session. If the
// user already holds one it is extended in place; a second row is never
// created. Unknown users and wrong passwords both yield ErrUnauthorized.
func (m *SessionManager) Login(ctx context.Context, site *models.Site, username, password string) (*models.Session, error) {
	var session *models.Session
	err := m.store.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		user, err := r.Users.GetByUsername(ctx, site.ID, username)
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnauthorized
		}
		if err != nil {
			return err
		}

		ok, err := cryptox.VerifyPassword(user.PasswordHash, password)
		if err != nil {
			return fmt.Errorf("verifying password: %w", err)
		}
		if !ok {
			return common.ErrUnauthorized
		}

		validUntil := m.validUntil(site)

		existing, err := r.Sessions.GetByUserID(ctx, user.ID)
		if err == nil {
			existing.ValidUntil = validUntil
			session = existing
			return r.Sessions.UpdateValidUntil(ctx, existing.ID, validUntil)
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}

		session = &models.Session{
			ID:         SessionIDFor(user.ID),
			SiteID:     site.ID,
			UserID:     user.ID,
			ValidUntil: validUntil,
		}
		return r.Sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug(ctx, "login", "site_id", site.ID, "user_id", session.UserID)
	return session, nil
}

// Logout removes the session; ErrNotFound if it is already gone.
func (m *SessionManager) Logout(ctx context.Context, siteID int64, sessionID string) error {
	return m.store.View().Sessions.Delete(ctx, siteID, sessionID)
}

// Touch validates the session and extends its validity. Missing sessions
// yield ErrUnauthorized, expired ones ErrSessionExpired. Every operation
// that consumes a session goes through here.
func (m *SessionManager) Touch(ctx context.Context, site *models.Site, sessionID string) (*models.Session, error) {
	var session *models.Session
	err := m.store.Within(ctx, func(ctx context.Context, r repomanager.Repos) error {
		var err error
		session, err = m.touch(ctx, r, site, sessionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// touch is Touch running inside an enclosing transaction's repositories.
func (m *SessionManager) touch(ctx context.Context, r repomanager.Repos, site *models.Site, sessionID string) (*models.Session, error) {
	session, err := r.Sessions.Get(ctx, site.ID, sessionID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	now := m.clk.Now(site.Timezone)
	if session.Expired(now) {
		return nil, common.ErrSessionExpired
	}

	session.ValidUntil = now.Add(time.Duration(site.SessionExpirationSeconds) * time.Second)
	if err := r.Sessions.UpdateValidUntil(ctx, session.ID, session.ValidUntil); err != nil {
		return nil, err
	}
	return session, nil
}

// SweepExpired deletes every session of the site whose validity has ended
// and returns how many were removed. A single statement, so it never races
// a concurrent extension into a torn state.
func (m *SessionManager) SweepExpired(ctx context.Context, site *models.Site) (int64, error) {
	now := m.clk.Now(site.Timezone)
	n, err := m.store.View().Sessions.DeleteExpired(ctx, site.ID, now)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		m.log.Debug(ctx, "sessions swept", "site_id", site.ID, "reaped", n)
	}
	return n, nil
}
