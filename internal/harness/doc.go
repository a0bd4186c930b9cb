// Package harness runs YAML conformance scenarios against a real registry.
//
// A scenario lists registry calls, each made as a named caller, with the
// expected outcome of each call, followed by assertions on the final state
// and the emitted events. Every scenario runs on a fresh in-memory SQLite
// store with a deterministic clock and call IDs, so its trace is
// reproducible and can be compared against a golden file.
//
// Scenario documents are checked against an embedded CUE schema (schema.cue)
// before they are decoded, then decoded strictly (unknown fields rejected).
//
// Example:
//
//	name: mint_requires_owner
//	description: Only the owner may mint a draft.
//	steps:
//	  - op: create
//	    as: owner
//	    args: {owner: owner, category: coding}
//	  - op: mint
//	    as: stranger
//	    args: {id: 1}
//	    expect: {error: UNAUTHORIZED}
//	assertions:
//	  - type: record
//	    id: 1
//	    expect: {status: draft}
package harness
