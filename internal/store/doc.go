// Package store provides durable keyed storage for the accolade registry.
//
// Two backends implement KV:
//   - SQLite: a kv table keyed by ir.Key strings plus an append-only events log
//   - Memory: a map with staged writes, for tests and embedding
//
// # Critical Patterns
//
// All-or-nothing calls
//   - KV.Update runs the callback in one transaction
//   - Any error from the callback rolls back every write it made
//   - Errors returned by the callback are passed through unwrapped so callers
//     can match domain errors with errors.As
//
// Deterministic scans
//   - Tx.Scan visits keys of one kind in ORDER BY key ASC COLLATE BINARY
//   - Events are read in ORDER BY seq ASC
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Values are canonical JSON produced by ir.MarshalExact.
package store
