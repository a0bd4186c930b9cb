package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accolade/internal/ir"
)

func TestAppendEvent_ReadBackInAppendOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	evs := []ir.Event{
		createTestEvent(1, ir.EventAchievementCreated, 1),
		createTestEvent(2, ir.EventAchievementMinted, 1),
		createTestEvent(3, ir.EventAchievementCreated, 2),
	}
	for _, ev := range evs {
		require.NoError(t, s.AppendEvent(ctx, ev))
	}

	got, err := s.ReadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ir.EventAchievementCreated, got[0].Name)
	assert.Equal(t, ir.EventAchievementMinted, got[1].Name)
	assert.Equal(t, uint64(2), got[2].AchievementID)
	assert.Equal(t, evs, got, "round trip preserves every field")
}

func TestAppendEvent_LogAssignsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Emitter seqs are ignored; the log numbers events in append order.
	first := createTestEvent(9, ir.EventAchievementMinted, 1)
	second := createTestEvent(4, ir.EventAchievementCreated, 2)
	require.NoError(t, s.AppendEvent(ctx, first))
	require.NoError(t, s.AppendEvent(ctx, second))

	got, err := s.ReadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].Seq)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, int64(2), got[1].Seq)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestAppendEvent_TwoHandlesOnOneDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	ctx := context.Background()

	a, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	b, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	// Both handles resumed from the same empty log, so both emit seq 1.
	fromA := ir.Event{Seq: 1, CallID: "call-a", Name: ir.EventAchievementCreated, AchievementID: 1}
	fromA.ID = ir.MustEventID(fromA)
	fromB := ir.Event{Seq: 1, CallID: "call-b", Name: ir.EventAchievementCreated, AchievementID: 2}
	fromB.ID = ir.MustEventID(fromB)

	require.NoError(t, a.AppendEvent(ctx, fromA))
	require.NoError(t, b.AppendEvent(ctx, fromB))

	for _, s := range []*Store{a, b} {
		got, err := s.ReadEvents(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "call-a", got[0].CallID)
		assert.Equal(t, int64(1), got[0].Seq)
		assert.Equal(t, "call-b", got[1].CallID)
		assert.Equal(t, int64(2), got[1].Seq)
	}

	last, err := b.LastEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)
}

func TestAppendEvent_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := createTestEvent(1, ir.EventAchievementCreated, 1)
	require.NoError(t, s.AppendEvent(ctx, ev))
	require.NoError(t, s.AppendEvent(ctx, ev))

	got, err := s.ReadEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAppendEvent_RoleEventHasIdentity(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ev := ir.Event{Seq: 1, CallID: "c", Name: ir.EventVerifierAdded, Identity: "verifier-1"}
	ev.ID = ir.MustEventID(ev)
	require.NoError(t, s.AppendEvent(ctx, ev))

	got, err := s.ReadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ir.Identity("verifier-1"), got[0].Identity)
	assert.Zero(t, got[0].AchievementID)
}

func TestAppendEvent_RejectsOversizedID(t *testing.T) {
	s := createTestStore(t)
	ev := createTestEvent(1, ir.EventAchievementCreated, 1<<63)
	assert.Error(t, s.AppendEvent(context.Background(), ev))
}

func TestReadEvents_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)

	got, err := s.ReadEvents(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReadAchievementEvents_FiltersByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AppendEvent(ctx, createTestEvent(1, ir.EventAchievementCreated, 1)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent(2, ir.EventAchievementCreated, 2)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent(3, ir.EventAchievementMinted, 1)))

	got, err := s.ReadAchievementEvents(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ir.EventAchievementCreated, got[0].Name)
	assert.Equal(t, ir.EventAchievementMinted, got[1].Name)
}

func TestLastEventSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	require.NoError(t, s.AppendEvent(ctx, createTestEvent(1, ir.EventAchievementCreated, 1)))
	require.NoError(t, s.AppendEvent(ctx, createTestEvent(2, ir.EventAchievementMinted, 1)))
	seq, err = s.LastEventSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)
}

func TestEvents_ClosedStore(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.AppendEvent(ctx, createTestEvent(1, ir.EventAchievementCreated, 1)), ErrClosed)
	_, err := s.ReadEvents(ctx)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.ReadAchievementEvents(ctx, 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = s.LastEventSeq(ctx)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEventLog_Emit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	log := EventLog{Store: s}
	require.NoError(t, log.Emit(ctx, createTestEvent(1, ir.EventAchievementVerified, 4)))

	got, err := s.ReadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, ir.EventAchievementVerified, got[0].Name)
}
