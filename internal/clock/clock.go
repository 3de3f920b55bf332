// Package clock abstracts wall-clock time so install times, trace run
// directories and profile timestamps can be pinned in tests.
package clock

import "time"

// RunStampLayout is the layout used to name per-run directories.
// It sorts lexically in chronological order.
const RunStampLayout = "20060102-150405"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock returns a fixed time that tests move by hand.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a FakeClock pinned to t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the pinned time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the pinned time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// RunStamp formats the clock's current time in UTC using RunStampLayout.
func RunStamp(c Clock) string {
	return c.Now().UTC().Format(RunStampLayout)
}
