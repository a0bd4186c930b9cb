package testutil

import (
	"fmt"
	"sync"
)

// SequentialCallIDs generates call IDs "<prefix>-1", "<prefix>-2", ...
//
// This enables deterministic test execution and golden snapshot comparison:
// the same scenario produces byte-identical event traces.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialCallIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialCallIDs creates a generator. If prefix is empty, "call" is used.
func NewSequentialCallIDs(prefix string) *SequentialCallIDs {
	if prefix == "" {
		prefix = "call"
	}
	return &SequentialCallIDs{prefix: prefix}
}

// Generate returns the next call ID.
//
// Implements registry.CallIDGenerator.
func (g *SequentialCallIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
