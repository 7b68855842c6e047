package services

import (
	"context"
	"fmt"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

// HostService is the top-level site registry: it creates, loads and lists
// sites and keeps each loaded site's session sweep registered.
type HostService struct {
	store   repomanager.Store
	log     logging.Logger
	sweeper *Sweeper
	sites   *SiteService
}

// NewHostService constructs a HostService.
func NewHostService(store repomanager.Store, log logging.Logger, sweeper *Sweeper, sites *SiteService) *HostService {
	return &HostService{
		store:   store,
		log:     log.With("component", "host"),
		sweeper: sweeper,
		sites:   sites,
	}
}

// CreateSite registers a new marketplace and starts its session sweep.
// A duplicate name yields ErrNameInUse.
func (h *HostService) CreateSite(ctx context.Context, name string, timezone int, sessionExpirationSeconds int, minimumBidIncrement float64) (*models.Site, error) {
	if err := common.ValidateSiteName(name); err != nil {
		return nil, err
	}
	if err := common.ValidateTimezone(timezone); err != nil {
		return nil, err
	}
	if sessionExpirationSeconds <= 0 {
		return nil, fmt.Errorf("%w: session expiration must be positive", common.ErrInvalidArgument)
	}
	if minimumBidIncrement <= 0 {
		return nil, fmt.Errorf("%w: minimum bid increment must be positive", common.ErrInvalidArgument)
	}

	site, err := h.store.View().Sites.Create(ctx, &models.Site{
		Name:                     name,
		Timezone:                 timezone,
		SessionExpirationSeconds: sessionExpirationSeconds,
		MinimumBidIncrement:      minimumBidIncrement,
	})
	if err != nil {
		return nil, err
	}
	h.sweeper.Register(site)
	h.log.Info(ctx, "site created", "site_id", site.ID, "name", site.Name)
	return site, nil
}

// LoadSite resolves a site by name and (re)registers its session sweep.
// Unknown names yield ErrNotFound.
func (h *HostService) LoadSite(ctx context.Context, name string) (*models.Site, error) {
	if err := common.ValidateSiteName(name); err != nil {
		return nil, err
	}
	site, err := h.store.View().Sites.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	h.sweeper.Register(site)
	return site, nil
}

// ListSites returns all sites ordered by name.
func (h *HostService) ListSites(ctx context.Context) ([]*models.Site, error) {
	return h.store.View().Sites.List(ctx)
}

// DeleteSite tears the named site down, cascading over its users.
func (h *HostService) DeleteSite(ctx context.Context, name string) error {
	site, err := h.store.View().Sites.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return h.sites.DeleteSite(ctx, site.ID)
}
