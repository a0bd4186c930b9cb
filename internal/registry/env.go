package registry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/accolade/internal/ir"
)

// Authenticator asserts that the current call is authorized by an identity.
//
// RequireAuth returns nil only if the caller carried by ctx has
// authenticated as identity. How the caller authenticated (a bearer token,
// a trusted local flag) is the host's concern.
type Authenticator interface {
	RequireAuth(ctx context.Context, identity ir.Identity) error
}

// Clock supplies creation timestamps in seconds.
type Clock interface {
	Now() uint64
}

// CallIDGenerator produces the ID that correlates the events of one call.
type CallIDGenerator interface {
	Generate() string
}

// SystemClock reads wall time and never goes backwards: a reading lower
// than a previous one is raised to the previous value.
//
// Thread-safety: SystemClock is safe for concurrent use.
type SystemClock struct {
	mu   sync.Mutex
	last uint64
	now  func() time.Time
}

// NewSystemClock creates a clock backed by time.Now.
func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// Now returns the current Unix time in seconds.
func (c *SystemClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now
	if now == nil {
		now = time.Now
	}
	var ts uint64
	if unix := now().Unix(); unix > 0 {
		ts = uint64(unix)
	}
	if ts < c.last {
		ts = c.last
	}
	c.last = ts
	return ts
}

// SeqClock is the monotonic logical clock that orders emitted events.
//
// Thread-safety: SeqClock is safe for concurrent use (atomic operations).
type SeqClock struct {
	seq atomic.Int64
}

// NewSeqClock creates a clock whose first Next returns start+1.
// Used to resume after the last persisted event.
func NewSeqClock(start int64) *SeqClock {
	c := &SeqClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}

// UUIDv7Generator generates time-sortable UUIDv7 call IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
