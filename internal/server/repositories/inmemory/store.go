// Package inmemory implements the Store contract on plain maps guarded by a
// mutex. It enforces the same constraints as the Postgres schema (unique
// site name, unique (site, username), one session per user, foreign keys,
// auction version checks) so the service layer behaves identically against
// either backend. Used by tests and by the server's -m mode.
package inmemory

import (
	"context"
	"sync"

	"github.com/mkuznecov/auctionsite/internal/server/models"
	"github.com/mkuznecov/auctionsite/internal/server/repositories/repomanager"
)

// Store holds all entities of all sites in memory.
type Store struct {
	mu sync.Mutex

	data *dataset

	nextSiteID    int64
	nextUserID    int64
	nextAuctionID int64
}

type dataset struct {
	sites    map[int64]models.Site
	users    map[int64]models.User
	sessions map[string]models.Session
	auctions map[int64]models.Auction
}

func newDataset() *dataset {
	return &dataset{
		sites:    make(map[int64]models.Site),
		users:    make(map[int64]models.User),
		sessions: make(map[string]models.Session),
		auctions: make(map[int64]models.Auction),
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for id, s := range d.sites {
		c.sites[id] = s
	}
	for id, u := range d.users {
		c.users[id] = u
	}
	for id, s := range d.sessions {
		c.sessions[id] = s
	}
	for id, a := range d.auctions {
		if a.WinnerID != nil {
			w := *a.WinnerID
			a.WinnerID = &w
		}
		c.auctions[id] = a
	}
	return c
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Within runs fn under the store lock against a snapshot-protected dataset:
// when fn fails the dataset is restored, so partial writes never survive.
// ID counters keep advancing on rollback, like database sequences.
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, r repomanager.Repos) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	return fn(ctx, s.repos(true))
}

// View returns repositories whose every call takes the store lock on its
// own, mirroring auto-commit statements.
func (s *Store) View() repomanager.Repos {
	return s.repos(false)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) repos(inTx bool) repomanager.Repos {
	return repomanager.Repos{
		Sites:    &sitesRepo{s: s, inTx: inTx},
		Users:    &usersRepo{s: s, inTx: inTx},
		Sessions: &sessionsRepo{s: s, inTx: inTx},
		Auctions: &auctionsRepo{s: s, inTx: inTx},
	}
}

// run executes fn against the dataset, locking unless already inside Within.
func (s *Store) run(inTx bool, fn func(d *dataset) error) error {
	if inTx {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

var _ repomanager.Store = (*Store)(nil)
