package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/accolade/internal/ir"
)

// AppendEvent inserts an event into the log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-appending the same
// content-addressed event is silently ignored.
//
// The stored seq is assigned by the log as one past the current maximum,
// inside the INSERT, so processes sharing a database never collide on it.
// ev.Seq is not stored; ev.ID keeps whatever the emitter computed.
//
// Achievement IDs are stored as SQLite INTEGER (int64); IDs above 2^63-1
// are rejected rather than wrapped.
func (s *Store) AppendEvent(ctx context.Context, ev ir.Event) error {
	var achievementID, identity any
	if ev.AchievementID != 0 {
		if ev.AchievementID > 1<<63-1 {
			return fmt.Errorf("append event: achievement id %d out of range", ev.AchievementID)
		}
		achievementID = int64(ev.AchievementID)
	}
	if ev.Identity != "" {
		identity = string(ev.Identity)
	}

	db, err := s.conn()
	if err != nil {
		return err
	}

	// WHERE true disambiguates the upsert clause after INSERT ... SELECT.
	_, err = db.ExecContext(ctx, `
		INSERT INTO events (seq, id, call_id, name, achievement_id, identity)
		SELECT COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?
		FROM events WHERE true
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		ev.CallID,
		string(ev.Name),
		achievementID,
		identity,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ReadEvents returns all events ordered by seq ASC.
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ReadEvents(ctx context.Context) ([]ir.Event, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT seq, id, call_id, name, achievement_id, identity
		FROM events
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return scanEvents(rows)
}

// ReadAchievementEvents returns the events of one achievement ordered by seq ASC.
func (s *Store) ReadAchievementEvents(ctx context.Context, id uint64) ([]ir.Event, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT seq, id, call_id, name, achievement_id, identity
		FROM events
		WHERE achievement_id = ?
		ORDER BY seq ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query achievement events: %w", err)
	}
	return scanEvents(rows)
}

// LastEventSeq returns the highest seq in the log, or 0 if empty.
// Used to resume the event clock when reopening a database.
func (s *Store) LastEventSeq(ctx context.Context) (int64, error) {
	db, err := s.conn()
	if err != nil {
		return 0, err
	}
	var seq sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(seq) FROM events`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last event seq: %w", err)
	}
	return seq.Int64, nil
}

func scanEvents(rows *sql.Rows) ([]ir.Event, error) {
	defer rows.Close()

	events := []ir.Event{}
	for rows.Next() {
		var (
			ev            ir.Event
			name          string
			achievementID sql.NullInt64
			identity      sql.NullString
		)
		if err := rows.Scan(&ev.Seq, &ev.ID, &ev.CallID, &name, &achievementID, &identity); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Name = ir.EventName(name)
		if achievementID.Valid {
			ev.AchievementID = uint64(achievementID.Int64)
		}
		if identity.Valid {
			ev.Identity = ir.Identity(identity.String)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// EventLog adapts a Store into an event sink that persists every event.
type EventLog struct {
	Store *Store
}

// Emit appends ev to the log.
func (l EventLog) Emit(ctx context.Context, ev ir.Event) error {
	return l.Store.AppendEvent(ctx, ev)
}
