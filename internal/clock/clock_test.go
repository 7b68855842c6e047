package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemClock_NowAppliesOffset(t *testing.T) {
	c := NewSystemClock()

	utc := c.Now(0)
	shifted := c.Now(3)

	_, offset := shifted.Zone()
	require.Equal(t, 3*3600, offset)
	// Same instant regardless of presentation zone.
	require.WithinDuration(t, utc, shifted, time.Second)
}

func TestFakeClock_AdvanceFiresAlarms(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	var fired int
	c.ScheduleRecurring(5*time.Minute, func() { fired++ })

	c.Advance(4 * time.Minute)
	require.Equal(t, 0, fired)

	c.Advance(12 * time.Minute) // crosses 5m and 10m marks
	require.Equal(t, 3, fired)

	require.Equal(t, start.Add(16*time.Minute), c.Now(0))
}

func TestFakeClock_StoppedAlarmDoesNotFire(t *testing.T) {
	c := NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	var fired int
	a := c.ScheduleRecurring(time.Minute, func() { fired++ })
	a.Stop()

	c.Advance(10 * time.Minute)
	require.Equal(t, 0, fired)
}

func TestFakeClock_CallbackMayUseClock(t *testing.T) {
	c := NewFakeClock(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	var seen []time.Time
	c.ScheduleRecurring(time.Hour, func() { seen = append(seen, c.Now(0)) })

	c.Advance(2 * time.Hour)
	require.Len(t, seen, 2)
	// Each callback observes the alarm's own due time.
	require.Equal(t, time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC), seen[0])
	require.Equal(t, time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), seen[1])
}
