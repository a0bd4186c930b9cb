package harness

// Trace entry types.
const (
	TraceCall  = "call"
	TraceEvent = "event"
)

// TraceEntry is one line of a scenario trace: a registry call and its
// outcome, or an event the registry emitted after a call committed.
type TraceEntry struct {
	Type string `json:"type"` // "call" or "event"
	Seq  int64  `json:"seq"`

	// Call fields.
	Op      string         `json:"op,omitempty"`
	As      string         `json:"as,omitempty"`
	Args    map[string]any `json:"args,omitempty"`
	Outcome string         `json:"outcome,omitempty"` // "ok" or an error code

	// Event fields.
	Name          string `json:"name,omitempty"`
	CallID        string `json:"call_id,omitempty"`
	AchievementID uint64 `json:"achievement_id,omitempty"`
	Identity      string `json:"identity,omitempty"`
}

// OutcomeOK is the outcome of a successful call.
const OutcomeOK = "ok"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every call and event in order.
	Trace []TraceEntry `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEntry{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCallTrace adds a call and its outcome to the trace.
func (r *Result) AddCallTrace(step Step, outcome string) {
	r.Trace = append(r.Trace, TraceEntry{
		Type:    TraceCall,
		Seq:     int64(len(r.Trace) + 1),
		Op:      step.Op,
		As:      step.As,
		Args:    step.Args,
		Outcome: outcome,
	})
}

// AddEventTrace adds an emitted event to the trace.
func (r *Result) AddEventTrace(name, callID string, achievementID uint64, identity string) {
	r.Trace = append(r.Trace, TraceEntry{
		Type:          TraceEvent,
		Seq:           int64(len(r.Trace) + 1),
		Name:          name,
		CallID:        callID,
		AchievementID: achievementID,
		Identity:      identity,
	})
}

// EventNames returns the names of every event entry, in order.
func (r *Result) EventNames() []string {
	names := []string{}
	for _, e := range r.Trace {
		if e.Type == TraceEvent {
			names = append(names, e.Name)
		}
	}
	return names
}

// Canonical returns the entry as a map suitable for ir.MarshalCanonical.
// Empty fields are omitted.
func (e TraceEntry) Canonical() map[string]any {
	m := map[string]any{
		"type": e.Type,
		"seq":  e.Seq,
	}
	if e.Op != "" {
		m["op"] = e.Op
	}
	if e.As != "" {
		m["as"] = e.As
	}
	if len(e.Args) > 0 {
		m["args"] = e.Args
	}
	if e.Outcome != "" {
		m["outcome"] = e.Outcome
	}
	if e.Name != "" {
		m["name"] = e.Name
	}
	if e.CallID != "" {
		m["call_id"] = e.CallID
	}
	if e.AchievementID != 0 {
		m["achievement_id"] = e.AchievementID
	}
	if e.Identity != "" {
		m["identity"] = e.Identity
	}
	return m
}
