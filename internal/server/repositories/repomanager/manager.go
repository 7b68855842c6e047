// Package repomanager defines the Store abstraction the service layer talks
// to: a bundle of per-entity repositories plus a transactional scope. The
// Postgres implementation lives here; an in-memory implementation (used by
// tests and the -m server mode) lives in repositories/inmemory.
package repomanager

import (
	"context"

	"github.com/mkuznecov/auctionsite/internal/server/repositories/auctions"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/sessions"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/sites"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/users"
)

// Repos bundles the per-entity repositories bound to one scope: either a
// single transaction (inside Store.Within) or auto-commit statements
// (Store.View).
type Repos struct {
	Sites    sites.Repository
	Users    users.Repository
	Sessions sessions.Repository
	Auctions auctions.Repository
}

// Store is the durable persistence collaborator. All mutating service
// operations run inside Within so partial state never becomes visible.
type Store interface {
	// Within runs fn atomically: every repository call through r commits
	// together on success or rolls back entirely when fn returns an error
	// or panics.
	Within(ctx context.Context, fn func(ctx context.Context, r Repos) error) error

	// View returns repositories for individual auto-commit statements
	// (single reads and single-statement writes, which are atomic on
	// their own).
	View() Repos

	// Close releases the underlying resources.
	Close() error
}
