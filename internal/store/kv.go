package store

import (
	"context"
	"errors"

	"github.com/roach88/accolade/internal/ir"
)

// ErrReadOnly is returned by write methods of a Tx opened with View.
var ErrReadOnly = errors.New("store: write in read-only transaction")

// ErrClosed is returned when the store has been closed.
var ErrClosed = errors.New("store: closed")

// Tx is a point-operation view of the key space inside one transaction.
type Tx interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key ir.Key) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key ir.Key, value []byte) error

	// Has reports whether key exists.
	Has(ctx context.Context, key ir.Key) (bool, error)

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key ir.Key) error

	// Scan calls fn for every key of kind in ascending key order.
	Scan(ctx context.Context, kind ir.KeyKind, fn func(key ir.Key, value []byte) error) error
}

// KV is a durable key-value store with all-or-nothing transactions.
type KV interface {
	// Update runs fn in a read-write transaction.
	// The transaction commits only if fn returns nil.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(tx Tx) error) error

	// Close releases the store's resources.
	Close() error
}

// readOnlyTx rejects writes and delegates reads.
type readOnlyTx struct {
	Tx
}

func (readOnlyTx) Set(context.Context, ir.Key, []byte) error { return ErrReadOnly }
func (readOnlyTx) Remove(context.Context, ir.Key) error      { return ErrReadOnly }
