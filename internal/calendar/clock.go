package calendar

import (
	"sync"
	"time"
)

// Clock supplies the current instant to the calendar
type Clock interface {
	Now() time.Time
}

// RealClock reads the system wall clock
type RealClock struct{}

// Now returns time.Now()
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock is a settable clock for tests and replays.
// It is safe for concurrent use.
type FixedClock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewFixedClock creates a clock frozen at start
func NewFixedClock(start time.Time) *FixedClock {
	return &FixedClock{current: start}
}

// Now returns the frozen instant
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set moves the clock to t
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}
