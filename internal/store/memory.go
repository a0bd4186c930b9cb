package store

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/roach88/accolade/internal/ir"
)

// Memory is an in-process KV.
//
// Update stages writes in an overlay and applies them only when the
// callback returns nil, giving the same all-or-nothing behaviour as the
// SQLite backend. Thread-safety: Update holds the write lock for the whole
// callback; View holds the read lock.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Update runs fn against a staged overlay and commits it if fn succeeds.
func (m *Memory) Update(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	tx := &memTx{base: m.data, writes: map[string][]byte{}, removed: map[string]bool{}}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for k := range tx.removed {
		delete(m.data, k)
	}
	for k, v := range tx.writes {
		m.data[k] = v
	}
	return nil
}

// View runs fn with read access to the committed data.
func (m *Memory) View(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrClosed
	}
	return fn(readOnlyTx{&memTx{base: m.data}})
}

// Close marks the store closed. Later calls return ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// memTx overlays staged writes and removals on the committed map.
type memTx struct {
	base    map[string][]byte
	writes  map[string][]byte
	removed map[string]bool
}

func (t *memTx) Get(_ context.Context, key ir.Key) ([]byte, bool, error) {
	k := key.String()
	if v, ok := t.writes[k]; ok {
		return slices.Clone(v), true, nil
	}
	if t.removed[k] {
		return nil, false, nil
	}
	v, ok := t.base[k]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

func (t *memTx) Set(_ context.Context, key ir.Key, value []byte) error {
	k := key.String()
	delete(t.removed, k)
	t.writes[k] = slices.Clone(value)
	return nil
}

func (t *memTx) Has(ctx context.Context, key ir.Key) (bool, error) {
	_, ok, err := t.Get(ctx, key)
	return ok, err
}

func (t *memTx) Remove(_ context.Context, key ir.Key) error {
	k := key.String()
	delete(t.writes, k)
	t.removed[k] = true
	return nil
}

func (t *memTx) Scan(ctx context.Context, kind ir.KeyKind, fn func(key ir.Key, value []byte) error) error {
	prefix := string(kind)
	var keys []string
	collect := func(k string) {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			keys = append(keys, k)
		}
	}
	for k := range t.base {
		if _, staged := t.writes[k]; !staged && !t.removed[k] {
			collect(k)
		}
	}
	for k := range t.writes {
		collect(k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		key, err := ir.ParseKey(k)
		if err != nil {
			return err
		}
		v, _, err := t.Get(ctx, key)
		if err != nil {
			return err
		}
		if err := fn(key, v); err != nil {
			return err
		}
	}
	return nil
}
