package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/accolade/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEntry `json:"trace"`
}

// Snapshot builds the canonical trace snapshot of a result.
func Snapshot(scenarioName string, result *Result) TraceSnapshot {
	return TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
}

// MarshalCanonical renders the snapshot as canonical JSON, the golden file format.
func (s TraceSnapshot) MarshalCanonical() ([]byte, error) {
	traceList := make([]any, len(s.Trace))
	for i, entry := range s.Trace {
		traceList[i] = entry.Canonical()
	}
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	})
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
