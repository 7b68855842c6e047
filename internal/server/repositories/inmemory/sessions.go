package inmemory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/sessions"
)

type sessionsRepo struct {
	s    *Store
	inTx bool
}

func (r *sessionsRepo) Create(ctx context.Context, session *models.Session) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		if _, ok := d.sites[session.SiteID]; !ok {
			return fmt.Errorf("%w: sessions_site_id_fkey", common.ErrForeignKey)
		}
		if _, ok := d.users[session.UserID]; !ok {
			return fmt.Errorf("%w: sessions_user_id_fkey", common.ErrForeignKey)
		}
		if _, ok := d.sessions[session.ID]; ok {
			return fmt.Errorf("%w: sessions_pkey", common.ErrNameInUse)
		}
		for _, existing := range d.sessions {
			if existing.UserID == session.UserID {
				return fmt.Errorf("%w: sessions_user_unique", common.ErrNameInUse)
			}
		}
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r *sessionsRepo) Get(ctx context.Context, siteID int64, id string) (*models.Session, error) {
	var found models.Session
	err := r.s.run(r.inTx, func(d *dataset) error {
		session, ok := d.sessions[id]
		if !ok || session.SiteID != siteID {
			return common.ErrNotFound
		}
		found = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *sessionsRepo) GetByUserID(ctx context.Context, userID int64) (*models.Session, error) {
	var found models.Session
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, session := range d.sessions {
			if session.UserID == userID {
				found = session
				return nil
			}
		}
		return common.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *sessionsRepo) UpdateValidUntil(ctx context.Context, id string, validUntil time.Time) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		session, ok := d.sessions[id]
		if !ok {
			return common.ErrNotFound
		}
		session.ValidUntil = validUntil
		d.sessions[id] = session
		return nil
	})
}

func (r *sessionsRepo) ListBySite(ctx context.Context, siteID int64) ([]*models.Session, error) {
	var result []*models.Session
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, session := range d.sessions {
			if session.SiteID == siteID {
				s := session
				result = append(result, &s)
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

func (r *sessionsRepo) Delete(ctx context.Context, siteID int64, id string) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		session, ok := d.sessions[id]
		if !ok || session.SiteID != siteID {
			return common.ErrNotFound
		}
		delete(d.sessions, id)
		return nil
	})
}

func (r *sessionsRepo) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		for id, session := range d.sessions {
			if session.UserID == userID {
				delete(d.sessions, id)
			}
		}
		return nil
	})
}

func (r *sessionsRepo) DeleteExpired(ctx context.Context, siteID int64, now time.Time) (int64, error) {
	var n int64
	err := r.s.run(r.inTx, func(d *dataset) error {
		for id, session := range d.sessions {
			if session.SiteID == siteID && session.ValidUntil.Before(now) {
				delete(d.sessions, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

var _ sessions.Repository = (*sessionsRepo)(nil)
