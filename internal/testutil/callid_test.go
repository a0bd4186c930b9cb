package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialCallIDs_Increments(t *testing.T) {
	gen := NewSequentialCallIDs("scenario")

	assert.Equal(t, "scenario-1", gen.Generate())
	assert.Equal(t, "scenario-2", gen.Generate())
	assert.Equal(t, "scenario-3", gen.Generate())
}

func TestSequentialCallIDs_EmptyPrefixDefault(t *testing.T) {
	gen := NewSequentialCallIDs("")

	assert.Equal(t, "call-1", gen.Generate())
}

func TestSequentialCallIDs_ThreadSafe(t *testing.T) {
	gen := NewSequentialCallIDs("x")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000, "every generated ID is unique")
}
