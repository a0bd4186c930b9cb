package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/accolade/internal/ir"
)

// EventSink receives events after the emitting operation has committed.
// A delivery error is logged by the registry and never fails the operation.
type EventSink interface {
	Emit(ctx context.Context, ev ir.Event) error
}

// NopSink discards every event.
type NopSink struct{}

// Emit implements EventSink.
func (NopSink) Emit(context.Context, ir.Event) error { return nil }

// MultiSink delivers each event to every sink in order.
// All sinks are attempted; their errors are joined.
type MultiSink []EventSink

// Emit implements EventSink.
func (m MultiSink) Emit(ctx context.Context, ev ir.Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes each event to a structured logger at Info.
type LogSink struct {
	Logger *slog.Logger
}

// Emit implements EventSink.
func (s LogSink) Emit(ctx context.Context, ev ir.Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"topic", ir.EventTopic,
		"seq", ev.Seq,
		"call_id", ev.CallID,
	}
	if ev.AchievementID != 0 {
		attrs = append(attrs, "achievement_id", ev.AchievementID)
	}
	if ev.Identity != "" {
		attrs = append(attrs, "identity", string(ev.Identity))
	}
	logger.InfoContext(ctx, string(ev.Name), attrs...)
	return nil
}

// emit stamps and delivers an event. Failures are logged at Warn.
func (r *Registry) emit(ctx context.Context, callID string, name ir.EventName, id uint64, identity ir.Identity) {
	ev := ir.Event{
		Seq:           r.seq.Next(),
		CallID:        callID,
		Name:          name,
		AchievementID: id,
		Identity:      identity,
	}
	eventID, err := ir.EventID(ev)
	if err != nil {
		r.logger.WarnContext(ctx, "event id failed", "event", string(name), "error", err)
		return
	}
	ev.ID = eventID

	if err := r.sink.Emit(ctx, ev); err != nil {
		r.logger.WarnContext(ctx, "event delivery failed", "event", string(name), "seq", ev.Seq, "error", err)
	}
}
