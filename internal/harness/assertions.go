package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/registry"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEntry // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, entry := range e.Trace {
		switch entry.Type {
		case TraceCall:
			fmt.Fprintf(&buf, "  [%d] %s as=%q %v -> %s\n", entry.Seq, entry.Op, entry.As, entry.Args, entry.Outcome)
		case TraceEvent:
			fmt.Fprintf(&buf, "  [%d]   event %s\n", entry.Seq, entry.Name)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per failure.
func EvaluateAssertions(ctx context.Context, reg *registry.Registry, result *Result, assertions []Assertion) []string {
	var msgs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRecord:
			err = assertRecord(ctx, reg, result.Trace, a)
		case AssertListCount:
			err = assertListCount(ctx, reg, result.Trace, a)
		case AssertEvents:
			err = assertEvents(result, a)
		case AssertIsVerifier:
			err = assertIsVerifier(ctx, reg, result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

// assertRecord checks the stored achievement against expected fields.
func assertRecord(ctx context.Context, reg *registry.Registry, trace []TraceEntry, a Assertion) error {
	got, err := reg.GetAchievement(ctx, a.ID)
	if err != nil {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("achievement %d exists", a.ID),
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if mismatch := matchSubset(got.Canonical(), a.Expect); mismatch != "" {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("achievement %d with %v", a.ID, a.Expect),
			Actual:   mismatch,
			Trace:    trace,
		}
	}
	return nil
}

// assertListCount checks how many records an index resolves to.
func assertListCount(ctx context.Context, reg *registry.Registry, trace []TraceEntry, a Assertion) error {
	var list []ir.Achievement
	var err error
	var index string
	if a.Owner != "" {
		index = "owner " + a.Owner
		list, err = reg.ListByOwner(ctx, ir.Identity(a.Owner))
	} else {
		index = "category " + a.Category
		list, err = reg.ListByCategory(ctx, a.Category)
	}
	if err != nil {
		return fmt.Errorf("list %s: %w", index, err)
	}
	if len(list) != a.Count {
		return &AssertionError{
			Type:     AssertListCount,
			Expected: fmt.Sprintf("%d records for %s", a.Count, index),
			Actual:   fmt.Sprintf("%d records", len(list)),
			Trace:    trace,
		}
	}
	return nil
}

// assertEvents checks the exact sequence of emitted event names.
func assertEvents(result *Result, a Assertion) error {
	got := result.EventNames()
	if !slices.Equal(got, a.Names) {
		return &AssertionError{
			Type:     AssertEvents,
			Expected: fmt.Sprintf("events %v", a.Names),
			Actual:   fmt.Sprintf("events %v", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertIsVerifier(ctx context.Context, reg *registry.Registry, trace []TraceEntry, a Assertion) error {
	ok, err := reg.IsVerifier(ctx, ir.Identity(a.Identity))
	if err != nil {
		return err
	}
	if ok != a.Value {
		return &AssertionError{
			Type:     AssertIsVerifier,
			Expected: fmt.Sprintf("is_verifier(%s) = %t", a.Identity, a.Value),
			Actual:   fmt.Sprintf("%t", ok),
			Trace:    trace,
		}
	}
	return nil
}

// matchSubset compares only the expected keys. Values are compared by their
// canonical JSON, so YAML ints match stored uint64s.
// Returns "" on match, otherwise a description of the first mismatch.
func matchSubset(actual, expected map[string]any) string {
	for _, key := range ir.SortedKeys(expected) {
		got, ok := actual[key]
		if !ok {
			return fmt.Sprintf("missing field %q", key)
		}
		if !valuesEqual(got, expected[key]) {
			return fmt.Sprintf("field %q: expected %v, got %v", key, expected[key], got)
		}
	}
	return ""
}

func valuesEqual(a, b any) bool {
	ca, errA := ir.MarshalExact(a)
	cb, errB := ir.MarshalExact(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ca) == string(cb)
}
