// Package clock abstracts time for the auction site. Sites live in fixed
// whole-hour UTC offsets, and housekeeping work (session sweeps) runs off
// recurring alarms, so both concerns are behind one interface that tests can
// replace with a deterministic fake.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// Alarm is a handle to a recurring callback registration.
type Alarm interface {
	// Stop cancels the alarm. It is safe to call more than once.
	Stop()
}

// Clock supplies current time per site timezone and fires recurring alarms.
type Clock interface {
	// Now returns the current instant localized to the given whole-hour UTC
	// offset. The instant itself is absolute; only the presentation zone
	// changes with the offset.
	Now(timezone int) time.Time

	// ScheduleRecurring invokes fn every period until the returned alarm is
	// stopped.
	ScheduleRecurring(period time.Duration, fn func()) Alarm
}

// SystemClock implements Clock on top of the runtime clock and time.Ticker.
type SystemClock struct{}

// NewSystemClock returns the process-wide real clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func zoneFor(timezone int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", timezone), timezone*3600)
}

func (c *SystemClock) Now(timezone int) time.Time {
	return time.Now().In(zoneFor(timezone))
}

func (c *SystemClock) ScheduleRecurring(period time.Duration, fn func()) Alarm {
	a := &systemAlarm{
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-a.done:
				return
			case <-a.ticker.C:
				fn()
			}
		}
	}()
	return a
}

type systemAlarm struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (a *systemAlarm) Stop() {
	a.once.Do(func() {
		a.ticker.Stop()
		close(a.done)
	})
}
