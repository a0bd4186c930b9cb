package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios drive a fresh registry through a list of calls, each made as a
// named caller, and assert on the outcome of every call and the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// ClockStart is the creation timestamp base. The first created
	// achievement is stamped ClockStart+1. Defaults to DefaultClockStart.
	ClockStart uint64 `yaml:"clock_start,omitempty"`

	// CallIDPrefix prefixes the deterministic call IDs ("<prefix>-1", ...).
	// Defaults to "call".
	CallIDPrefix string `yaml:"call_id_prefix,omitempty"`

	// Steps are registry calls executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the trace and final state.
	// Supported types: record, list_count, events, is_verifier
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one registry call.
type Step struct {
	// Op is the operation name (see the Op* constants).
	Op string `yaml:"op"`

	// As is the authenticated caller. Empty means no caller.
	As string `yaml:"as,omitempty"`

	// Args are the operation arguments.
	Args map[string]any `yaml:"args"`

	// Expect specifies the expected outcome.
	// If nil, the call must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected call behavior.
type ExpectClause struct {
	// Error is the expected registry error code (e.g. "UNAUTHORIZED").
	// Empty means the call must succeed.
	Error string `yaml:"error,omitempty"`

	// Result contains expected result field values.
	// This is a subset match: only specified fields are validated.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record": achievement ID has the Expect field values
	// - "list_count": the owner or category index resolves to Count records
	// - "events": emitted event names equal Names, in order
	// - "is_verifier": Identity's verifier membership equals Value
	Type string `yaml:"type"`

	// ID is the achievement ID (used by record).
	ID uint64 `yaml:"id,omitempty"`

	// Expect contains expected field values (used by record). Subset match.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Owner or Category selects the index (used by list_count).
	Owner    string `yaml:"owner,omitempty"`
	Category string `yaml:"category,omitempty"`

	// Count is the expected number of records (used by list_count).
	Count int `yaml:"count,omitempty"`

	// Names is the expected event name sequence (used by events).
	Names []string `yaml:"names,omitempty"`

	// Identity and Value are used by is_verifier.
	Identity string `yaml:"identity,omitempty"`
	Value    bool   `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertRecord     = "record"
	AssertListCount  = "list_count"
	AssertEvents     = "events"
	AssertIsVerifier = "is_verifier"
)

// Operation names accepted in Step.Op.
const (
	OpInit           = "init"
	OpAddVerifier    = "add_verifier"
	OpRemoveVerifier = "remove_verifier"
	OpIsVerifier     = "is_verifier"
	OpCreate         = "create"
	OpUpdate         = "update"
	OpMint           = "mint"
	OpVerify         = "verify"
	OpGet            = "get"
	OpListByOwner    = "list_by_owner"
	OpListByCategory = "list_by_category"
)

// KnownOps lists every operation a step may name.
var KnownOps = map[string]bool{
	OpInit: true, OpAddVerifier: true, OpRemoveVerifier: true, OpIsVerifier: true,
	OpCreate: true, OpUpdate: true, OpMint: true, OpVerify: true,
	OpGet: true, OpListByOwner: true, OpListByCategory: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, violates the
// scenario schema, contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML already in memory.
func ParseScenario(data []byte) (*Scenario, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Op == "" {
			return fmt.Errorf("steps[%d]: op is required", i)
		}
		if !KnownOps[step.Op] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if step.Args == nil {
			return fmt.Errorf("steps[%d]: args is required (use empty map if no args)", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertRecord:
		if a.ID == 0 {
			return fmt.Errorf("assertions[%d]: id is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertListCount:
		if (a.Owner == "") == (a.Category == "") {
			return fmt.Errorf("assertions[%d]: exactly one of owner or category is required for list_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for list_count", index)
		}
	case AssertEvents:
		if a.Names == nil {
			return fmt.Errorf("assertions[%d]: names list is required for events", index)
		}
	case AssertIsVerifier:
		if a.Identity == "" {
			return fmt.Errorf("assertions[%d]: identity is required for is_verifier", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
