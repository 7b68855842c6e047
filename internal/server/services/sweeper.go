package services

import (
	"context"
	"sync"
	"time"

	"github.com/mkuznecov/auctionsite/internal/clock"
	"github.com/mkuznecov/auctionsite/internal/logging"
	"github.com/mkuznecov/auctionsite/internal/server/metrics"
	"github.com/mkuznecov/auctionsite/internal/server/models"
)

// Sweeper owns one recurring session-sweep task per site. Sites register at
// create/load time and unregister at deletion; StopAll cancels everything at
// shutdown. The sweeper is the only component that schedules work, entities
// never do.
type Sweeper struct {
	clk      clock.Clock
	sessions *SessionManager
	log      logging.Logger
	metrics  *metrics.Metrics
	period   time.Duration

	mu     sync.Mutex
	alarms map[int64]clock.Alarm
}

// NewSweeper constructs a Sweeper firing each site's sweep every period.
func NewSweeper(clk clock.Clock, sessions *SessionManager, log logging.Logger, m *metrics.Metrics, period time.Duration) *Sweeper {
	return &Sweeper{
		clk:      clk,
		sessions: sessions,
		log:      log.With("component", "sweeper"),
		metrics:  m,
		period:   period,
		alarms:   make(map[int64]clock.Alarm),
	}
}

// Register starts the recurring sweep for the site. Registering an already
// registered site is a no-op.
func (w *Sweeper) Register(site *models.Site) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.alarms[site.ID]; ok {
		return
	}
	s := *site
	w.alarms[site.ID] = w.clk.ScheduleRecurring(w.period, func() {
		w.sweep(&s)
	})
}

func (w *Sweeper) sweep(site *models.Site) {
	ctx := context.Background()
	w.metrics.SweepRunsTotal.Inc()
	n, err := w.sessions.SweepExpired(ctx, site)
	if err != nil {
		w.log.Error(ctx, "session sweep failed", "site_id", site.ID, "error", err)
		return
	}
	w.metrics.SessionsSweptTotal.Add(float64(n))
}

// Unregister cancels the site's sweep task if one is registered.
func (w *Sweeper) Unregister(siteID int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if alarm, ok := w.alarms[siteID]; ok {
		alarm.Stop()
		delete(w.alarms, siteID)
	}
}

// StopAll cancels every registered sweep task.
func (w *Sweeper) StopAll() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, alarm := range w.alarms {
		alarm.Stop()
		delete(w.alarms, id)
	}
}
