package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/accolade/internal/auth"
	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/registry"
	"github.com/roach88/accolade/internal/store"
	"github.com/roach88/accolade/internal/testutil"
)

// DefaultClockStart is the timestamp base when a scenario sets none.
const DefaultClockStart = 1700000000

// Harness is the test execution engine.
// It runs scenarios against a real registry with a deterministic clock and
// call IDs, so the same scenario always produces the same trace.
type Harness struct {
	store    *store.Store
	registry *registry.Registry
	events   *testutil.EventRecorder
	seen     int
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database and registry
// 2. Execute steps, checking each expect clause
// 3. Record calls and emitted events in the trace
// 4. Evaluate assertions against the trace and final state
//
// The returned error reports a scenario that cannot be executed (bad args,
// store failure). Expectation mismatches are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	clockStart := scenario.ClockStart
	if clockStart == 0 {
		clockStart = DefaultClockStart
	}

	events := &testutil.EventRecorder{}
	h := &Harness{
		store:  st,
		events: events,
		registry: registry.New(st, auth.Context{},
			registry.WithClock(testutil.NewDeterministicClockAt(clockStart)),
			registry.WithCallIDGenerator(testutil.NewSequentialCallIDs(scenario.CallIDPrefix)),
			registry.WithEventSink(registry.MultiSink{events, store.EventLog{Store: st}}),
			registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
		),
	}

	ctx := context.Background()
	result := NewResult()

	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(ctx, h.registry, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one call, checks its expect clause, and traces the call
// followed by any events it emitted.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	callCtx := ctx
	if step.As != "" {
		callCtx = auth.WithCaller(ctx, ir.Identity(step.As))
	}

	value, err := h.call(callCtx, step)
	outcome := OutcomeOK
	if err != nil {
		code := registry.CodeOf(err)
		if code == "" {
			return fmt.Errorf("steps[%d] %s: %w", index, step.Op, err)
		}
		outcome = string(code)
	}

	result.AddCallTrace(step, outcome)
	for _, ev := range h.events.Events()[h.seen:] {
		result.AddEventTrace(string(ev.Name), ev.CallID, ev.AchievementID, string(ev.Identity))
		h.seen++
	}

	want := OutcomeOK
	if step.Expect != nil && step.Expect.Error != "" {
		want = step.Expect.Error
	}
	if outcome != want {
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s", index, step.Op, want, describe(outcome, err)))
		return nil
	}

	if step.Expect != nil && len(step.Expect.Result) > 0 {
		if mismatch := matchSubset(value, step.Expect.Result); mismatch != "" {
			result.AddError(fmt.Sprintf("steps[%d] %s: result %s", index, step.Op, mismatch))
		}
	}
	return nil
}

func describe(outcome string, err error) string {
	if err == nil {
		return outcome
	}
	return fmt.Sprintf("%s (%v)", outcome, err)
}

// call dispatches a step to the registry and returns its result as a map.
func (h *Harness) call(ctx context.Context, step Step) (map[string]any, error) {
	a := args(step.Args)
	reg := h.registry

	switch step.Op {
	case OpInit:
		admin, err := a.identity("admin")
		if err != nil {
			return nil, err
		}
		return map[string]any{}, reg.Init(ctx, admin)

	case OpAddVerifier, OpRemoveVerifier:
		identity, err := a.identity("identity")
		if err != nil {
			return nil, err
		}
		if step.Op == OpAddVerifier {
			return map[string]any{}, reg.AddVerifier(ctx, identity)
		}
		return map[string]any{}, reg.RemoveVerifier(ctx, identity)

	case OpIsVerifier:
		identity, err := a.identity("identity")
		if err != nil {
			return nil, err
		}
		ok, err := reg.IsVerifier(ctx, identity)
		return map[string]any{"is_verifier": ok}, err

	case OpCreate:
		in, err := a.input()
		if err != nil {
			return nil, err
		}
		id, err := reg.CreateAchievement(ctx, in)
		return map[string]any{"id": id}, err

	case OpUpdate:
		id, err := a.id()
		if err != nil {
			return nil, err
		}
		upd, err := a.update()
		if err != nil {
			return nil, err
		}
		return achievementResult(reg.UpdateAchievement(ctx, id, upd))

	case OpMint:
		id, err := a.id()
		if err != nil {
			return nil, err
		}
		return achievementResult(reg.MintAchievement(ctx, id))

	case OpVerify:
		id, err := a.id()
		if err != nil {
			return nil, err
		}
		verifier, err := a.identity("verifier")
		if err != nil {
			return nil, err
		}
		return achievementResult(reg.VerifyAchievement(ctx, id, verifier))

	case OpGet:
		id, err := a.id()
		if err != nil {
			return nil, err
		}
		return achievementResult(reg.GetAchievement(ctx, id))

	case OpListByOwner:
		owner, err := a.identity("owner")
		if err != nil {
			return nil, err
		}
		return listResult(reg.ListByOwner(ctx, owner))

	case OpListByCategory:
		category, err := a.str("category")
		if err != nil {
			return nil, err
		}
		return listResult(reg.ListByCategory(ctx, category))

	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

func achievementResult(a ir.Achievement, err error) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	return a.Canonical(), nil
}

func listResult(list []ir.Achievement, err error) (map[string]any, error) {
	if err != nil {
		return nil, err
	}
	ids := make([]any, 0, len(list))
	for _, a := range list {
		ids = append(ids, a.ID)
	}
	return map[string]any{"count": len(list), "ids": ids}, nil
}
