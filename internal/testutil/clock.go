package testutil

import "sync"

// DeterministicClock is a registry clock for tests. Each Now advances one
// second past the previous value, so a scenario replayed against a fresh
// clock stamps the same creation timestamps.
type DeterministicClock struct {
	mu    sync.Mutex
	start uint64
	ticks uint64
}

// NewDeterministicClockAt creates a clock whose first Now() returns start+1.
func NewDeterministicClockAt(start uint64) *DeterministicClock {
	return &DeterministicClock{start: start}
}

// Now implements registry.Clock.
func (c *DeterministicClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.start + c.ticks
}
