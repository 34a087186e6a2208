package clock

import (
	"sync"
	"time"
)

// Clock reports seconds elapsed since it started. Readings never decrease.
type Clock interface {
	Elapsed() float64
}

// Monotonic is a Clock backed by the runtime's monotonic time reading.
type Monotonic struct {
	start time.Time
	last  float64
	mu    sync.Mutex
}

// NewMonotonic starts a clock at the current instant.
func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (c *Monotonic) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	secs := time.Since(c.start).Seconds()
	if secs < c.last {
		secs = c.last
	}
	c.last = secs
	return secs
}

// Manual is a Clock whose value is set by hand.
type Manual struct {
	now float64
	mu  sync.Mutex
}

// NewManual returns a manual clock reading start seconds.
func NewManual(start float64) *Manual {
	return &Manual{now: start}
}

func (c *Manual) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d seconds. Negative steps are ignored.
func (c *Manual) Advance(d float64) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

// Set moves the clock to secs if that is not earlier than the current reading.
func (c *Manual) Set(secs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if secs > c.now {
		c.now = secs
	}
}
