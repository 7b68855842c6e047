// Package httpapi is the thin HTTP facade over the host and site services:
// JSON in, JSON out, session ids wrapped in signed tokens at this boundary
// only. No business rule lives here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/config"
	"github.com/mkuznecov/auctionsite/internal/server/services"
)

// Server bundles the handlers' dependencies.
type Server struct {
	host          *services.HostService
	site          *services.SiteService
	log           logging.Logger
	secretKey     []byte
	tokenValidity time.Duration
	loginLimiter  *addrLimiter
}

// NewServer constructs the facade.
func NewServer(host *services.HostService, site *services.SiteService, log logging.Logger, cfg *config.Config) *Server {
	return &Server{
		host:          host,
		site:          site,
		log:           log.With("component", "httpapi"),
		secretKey:     []byte(cfg.SecretKey),
		tokenValidity: cfg.TokenValidityDuration,
		loginLimiter:  newAddrLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst),
	}
}

// Router assembles the route tree.
func (s *Server) Router(registry *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api/sites", func(r chi.Router) {
		r.Post("/", s.handleCreateSite)
		r.Get("/", s.handleListSites)

		r.Route("/{site}", func(r chi.Router) {
			r.Get("/", s.handleGetSite)
			r.Delete("/", s.handleDeleteSite)
			r.Get("/time", s.handleSiteTime)

			r.Post("/users", s.handleCreateUser)
			r.Get("/users", s.handleListUsers)
			r.Delete("/users/{username}", s.handleDeleteUser)
			r.Get("/users/{id}/won", s.handleWonAuctions)

			r.With(s.rateLimitLogin).Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/sessions", s.handleListSessions)

			r.Post("/auctions", s.handleCreateAuction)
			r.Get("/auctions", s.handleListAuctions)
			r.Delete("/auctions/{id}", s.handleDeleteAuction)
			r.Post("/auctions/{id}/bids", s.handlePlaceBid)
			r.Get("/auctions/{id}/price", s.handleCurrentPrice)
			r.Get("/auctions/{id}/winner", s.handleCurrentWinner)
		})
	})

	return r
}
