package inmemory

import (
	"context"
	"fmt"
	"sort"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/sites"
)

type sitesRepo struct {
	s    *Store
	inTx bool
}

func (r *sitesRepo) Create(ctx context.Context, site *models.Site) (*models.Site, error) {
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, existing := range d.sites {
			if existing.Name == site.Name {
				return fmt.Errorf("%w: sites_name_unique", common.ErrNameInUse)
			}
		}
		r.s.nextSiteID++
		site.ID = r.s.nextSiteID
		d.sites[site.ID] = *site
		return nil
	})
	if err != nil {
		return nil, err
	}
	return site, nil
}

func (r *sitesRepo) GetByID(ctx context.Context, id int64) (*models.Site, error) {
	var found models.Site
	err := r.s.run(r.inTx, func(d *dataset) error {
		site, ok := d.sites[id]
		if !ok {
			return common.ErrNotFound
		}
		found = site
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &found, nil
}

func (r *sitesRepo) GetByName(ctx context.Context, name string) (*models.Site, error) {
	var found models.Site
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, site := range d.sites {
			if site.Name == name {
				found = site
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

func (r *sitesRepo) List(ctx context.Context) ([]*models.Site, error) {
	var result []*models.Site
	err := r.s.run(r.inTx, func(d *dataset) error {
		for _, site := range d.sites {
			s := site
			result = append(result, &s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *sitesRepo) Delete(ctx context.Context, id int64) error {
	return r.s.run(r.inTx, func(d *dataset) error {
		if _, ok := d.sites[id]; !ok {
			return common.ErrNotFound
		}
		for _, u := range d.users {
			if u.SiteID == id {
				return fmt.Errorf("%w: users_site_id_fkey", common.ErrForeignKey)
			}
		}
		for _, a := range d.auctions {
			if a.SiteID == id {
				return fmt.Errorf("%w: auctions_site_id_fkey", common.ErrForeignKey)
			}
		}
		for _, s := range d.sessions {
			if s.SiteID == id {
				return fmt.Errorf("%w: sessions_site_id_fkey", common.ErrForeignKey)
			}
		}
		delete(d.sites, id)
		return nil
	})
}

var _ sites.Repository = (*sitesRepo)(nil)
