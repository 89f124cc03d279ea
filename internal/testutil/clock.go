package testutil

import (
	"sync"
	"time"
)

// SteppingClock returns a deterministic sequence of instants for tests that
// stamp records with an ingestion time.
//
// The first call to Now returns Base; each later call advances by Step.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu    sync.Mutex
	base  time.Time
	step  time.Duration
	calls int64
}

// NewSteppingClock creates a clock starting at base and advancing by step.
func NewSteppingClock(base time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{base: base, step: step}
}

// Now returns the next instant.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.calls) * c.step)
	c.calls++
	return t
}

// Calls returns how many instants have been handed out.
func (c *SteppingClock) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Reset rewinds the clock so the next Now returns base again.
func (c *SteppingClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = 0
}
