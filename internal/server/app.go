// Package server initializes and runs the auction site server: it wires the
// store, clock, services and HTTP facade together, starts the per-site
// session sweeps and handles graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkuznecov/auctionsite/internal/clock"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/config"
	"github.com/mkuznecov/auctionsite/internal/server/httpapi"
	"github.com/mkuznecov/auctionsite/internal/server/metrics"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/inmemory"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
	"github.com/mkuznecov/auctionsite/internal/server/services"
)

// App bundles the wired components of one server process.
type App struct {
	config   *config.Config
	logger   logging.Logger
	store    repomanager.Store
	sweeper  *services.Sweeper
	host     *services.HostService
	site     *services.SiteService
	registry *prometheus.Registry
}

// NewApp wires the application from its configuration. With UseMemoryStore
// set everything runs against the in-memory store, otherwise a Postgres
// connection is opened and migrations applied.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	var store repomanager.Store
	if cfg.UseMemoryStore {
		store = inmemory.NewStore()
	} else {
		pg, err := repomanager.NewPostgresStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		store = pg
	}

	clk := clock.NewSystemClock()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	sessions := services.NewSessionManager(store, clk, logger)
	bidding := services.NewBiddingEngine(store, clk, sessions, logger, m)
	sweeper := services.NewSweeper(clk, sessions, logger, m, cfg.SessionSweepPeriod)
	site := services.NewSiteService(store, clk, logger, sessions, bidding, sweeper)
	host := services.NewHostService(store, logger, sweeper, site)

	return &App{
		config:   cfg,
		logger:   logger,
		store:    store,
		sweeper:  sweeper,
		host:     host,
		site:     site,
		registry: registry,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// registerSweeps restarts the session sweep of every site already in the
// store, so a process restart does not leave expired sessions unreaped.
func (app *App) registerSweeps(ctx context.Context) error {
	sites, err := app.host.ListSites(ctx)
	if err != nil {
		return err
	}
	for _, site := range sites {
		app.sweeper.Register(site)
	}
	return nil
}

// Run serves until the context is cancelled or the listener fails, then
// shuts down the HTTP server, the sweep tasks and the store.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	if err := app.registerSweeps(ctx); err != nil {
		return fmt.Errorf("registering session sweeps: %w", err)
	}

	facade := httpapi.NewServer(app.host, app.site, app.logger, app.config)
	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: facade.Router(app.registry),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "http server starting", "addr", app.config.EndpointAddrHTTP)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		app.logger.Error(ctx, "http server failed", "error", runErr)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown failed", "error", err)
	}

	app.sweeper.StopAll()
	if err := app.store.Close(); err != nil {
		app.logger.Error(ctx, "store close failed", "error", err)
	}

	app.logger.Info(ctx, "server stopped")
	return runErr
}
