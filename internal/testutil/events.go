package testutil

import (
	"context"
	"sync"

	"github.com/roach88/accolade/internal/ir"
)

// EventRecorder captures emitted events in order.
// Set Err to make every Emit fail after recording.
//
// Implements registry.EventSink.
type EventRecorder struct {
	mu     sync.Mutex
	events []ir.Event
	Err    error
}

// Emit records ev.
func (r *EventRecorder) Emit(_ context.Context, ev ir.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.Err
}

// Events returns a copy of the recorded events.
func (r *EventRecorder) Events() []ir.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names returns the recorded event names in order.
func (r *EventRecorder) Names() []ir.EventName {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ir.EventName, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}
