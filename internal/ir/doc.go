// Package ir provides the canonical record types for accolade.
//
// This package contains type definitions, the storage key scheme and the
// canonical JSON encoder. All other internal packages import ir; ir imports
// nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - timestamps and IDs are unsigned integers
//   - All JSON tags use snake_case
//   - Persisted values are canonical JSON (RFC 8785) so byte comparison of
//     stored records and golden traces is meaningful
package ir
