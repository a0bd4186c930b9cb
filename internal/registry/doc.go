// Package registry implements the achievement registry: a record store with
// owner and category indices, guarded by an authorization gate.
//
// ARCHITECTURE:
//
// Every mutating operation runs as:
//  1. Lock the registry mutex (single writer)
//  2. Open one KV.Update transaction
//  3. Gate: authenticate the caller, reading the record first when the
//     required role is "record owner"
//  4. Record store: apply the effect (records.go)
//  5. Commit, then emit the event
//
// A rejected operation returns a *Error and leaves the store unchanged.
//
// CRITICAL PATTERNS:
//
// Monotonic IDs
// IDs come only from the next_id counter and start at 1. They are never reused.
//
// Forward-only lifecycle
// draft -> minted -> verified. Edits are allowed only in draft. Any other
// transition fails with INVALID_STATE.
//
// Index append-only
// Owner and category indices only grow. The category index keeps the
// category a record was created under, even if the draft is later edited.
//
// Events after commit
// Events never describe uncommitted state. Delivery failure is logged and
// does not fail the operation.
package registry
