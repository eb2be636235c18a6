package facility

import (
	"sync"
	"time"
)

// Clock supplies wall-clock time. Billing reads the weekday and the time of
// day from it; log timestamps fall back to it when the caller passes none.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now, optionally converted to Location so the tariff
// is applied in the facility's local time.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}

// FixedClock only moves when told to. Used by tests and by the simulator.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
