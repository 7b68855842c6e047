package clock

import (
	"sync"
	"time"
)

// FakeClock is a manually driven Clock for tests. Time moves only through
// Advance/Set, which also fire any recurring alarms that come due, in
// chronological order and on the calling goroutine.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	alarms []*fakeAlarm
}

type fakeAlarm struct {
	clk     *FakeClock
	period  time.Duration
	next    time.Time
	fn      func()
	stopped bool
}

func (a *fakeAlarm) Stop() {
	a.clk.mu.Lock()
	defer a.clk.mu.Unlock()
	a.stopped = true
}

// NewFakeClock returns a FakeClock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start.UTC()}
}

func (c *FakeClock) Now(timezone int) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.In(zoneFor(timezone))
}

func (c *FakeClock) ScheduleRecurring(period time.Duration, fn func()) Alarm {
	c.mu.Lock()
	defer c.mu.Unlock()
	a := &fakeAlarm{clk: c, period: period, next: c.now.Add(period), fn: fn}
	c.alarms = append(c.alarms, a)
	return a
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()
	c.Set(target)
}

// Set moves the clock to target, firing due alarms along the way. Callbacks
// run without the clock lock held so they may use the clock themselves.
func (c *FakeClock) Set(target time.Time) {
	target = target.UTC()
	for {
		c.mu.Lock()
		var due *fakeAlarm
		for _, a := range c.alarms {
			if a.stopped || a.next.After(target) {
				continue
			}
			if due == nil || a.next.Before(due.next) {
				due = a
			}
		}
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = due.next
		due.next = due.next.Add(due.period)
		fn := due.fn
		c.mu.Unlock()
		fn()
	}
}
