package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/accolade/internal/ir"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns one fresh instance of every KV implementation.
func backends(t *testing.T) map[string]KV {
	t.Helper()
	mem := NewMemory()
	t.Cleanup(func() { mem.Close() })
	return map[string]KV{
		"sqlite": createTestStore(t),
		"memory": mem,
	}
}

// createTestEvent creates an event with its content-addressed ID filled in.
func createTestEvent(seq int64, name ir.EventName, achievementID uint64) ir.Event {
	ev := ir.Event{
		Seq:           seq,
		CallID:        "call-test",
		Name:          name,
		AchievementID: achievementID,
	}
	ev.ID = ir.MustEventID(ev)
	return ev
}
