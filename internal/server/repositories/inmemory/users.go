package inmemory

import (
	"context"
	"fmt"
	"sort"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/users"
)

type usersRepo struct {
	s    *Store
	inTx bool
}

func (r *usersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	err := r.s.run(r.inTx, func(d *dataset) error {
		if _, ok := d.sites[user.SiteID]; !ok {
			return fmt.Errorf("%w: users_site_id_fkey", common.ErrForeignKey)
		}
		for _, existing := range d.users {
			if existing.SiteID == user.SiteID && existing.Username == user.Username {
				return fmt.Errorf("%w: users_site_username_unique", common.ErrNameInUse)
			}
		}
		r.s.nextUserID++
		user.ID = r.s.nextUserID
		d.users[user.ID] = *user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *usersRepo) GetByID(ctx context.Context, siteID, id int64) (*models.User, error) {
	var found models.User
	err := r.s.run(r.inTx, func(d *dataset) error {
		user, ok := d.users[id]
		if !ok || user.SiteID != siteID {
			return common.ErrNotFound
		}
		found = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *usersRepo) GetByUsername(ctx context.Context, siteID int64, username string) (*models.User, error) {
	var found models.User
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, user := range d.users {
			if user.SiteID == siteID && user.Username == username {
				found = user
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

func (r *usersRepo) ListBySite(ctx context.Context, siteID int64) ([]*models.User, error) {
	var result []*models.User
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, user := range d.users {
			if user.SiteID == siteID {
				u := user
				result = append(result, &u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

func (r *usersRepo) Delete(ctx context.Context, siteID, id int64) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		user, ok := d.users[id]
		if !ok || user.SiteID != siteID {
			return common.ErrNotFound
		}
		for _, a := range d.auctions {
			if a.SellerID == id {
				return fmt.Errorf("%w: auctions_seller_id_fkey", common.ErrForeignKey)
			}
		}
		// ON DELETE CASCADE on sessions, ON DELETE SET NULL on winners.
		for sid, s := range d.sessions {
			if s.UserID == id {
				delete(d.sessions, sid)
			}
		}
		for aid, a := range d.auctions {
			if a.WinnerID != nil && *a.WinnerID == id {
				a.WinnerID = nil
				d.auctions[aid] = a
			}
		}
		delete(d.users, id)
		return nil
	})
}

var _ users.Repository = (*usersRepo)(nil)
