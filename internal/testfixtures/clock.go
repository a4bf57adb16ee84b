package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source for tests. It tracks a pinned base
// instant plus the advance accumulated so far, so Set and Advance compose
// without drift.
type Clock struct {
	mu     sync.RWMutex
	base   time.Time
	offset time.Duration
}

// NewClock returns a clock pinned at start, or at ReferenceTime when start is
// the zero value.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{base: start}
}

// Now reports the instant the clock currently points at.
func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.Add(c.offset)
}

// NowFunc adapts the clock to the now-function signature the services take.
// A nil clock degrades to the wall clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set repins the clock at t and discards any accumulated advance.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.base, c.offset = t, 0
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.offset += d
	now := c.base.Add(c.offset)
	c.mu.Unlock()
	return now
}
