package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/accolade/internal/ir"
)

func TestEventRecorder_RecordsInOrder(t *testing.T) {
	rec := &EventRecorder{}
	ctx := context.Background()

	require.NoError(t, rec.Emit(ctx, ir.Event{Seq: 1, Name: ir.EventAchievementCreated, AchievementID: 1}))
	require.NoError(t, rec.Emit(ctx, ir.Event{Seq: 2, Name: ir.EventAchievementMinted, AchievementID: 1}))

	assert.Equal(t, []ir.EventName{ir.EventAchievementCreated, ir.EventAchievementMinted}, rec.Names())
	assert.Len(t, rec.Events(), 2)
}

func TestEventRecorder_ErrStillRecords(t *testing.T) {
	boom := errors.New("sink down")
	rec := &EventRecorder{Err: boom}

	err := rec.Emit(context.Background(), ir.Event{Seq: 1, Name: ir.EventInitialized, Identity: "admin"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, rec.Events(), 1)
}

func TestEventRecorder_EventsIsCopy(t *testing.T) {
	rec := &EventRecorder{}
	require.NoError(t, rec.Emit(context.Background(), ir.Event{Seq: 1, Name: ir.EventInitialized}))

	got := rec.Events()
	got[0].Name = ir.EventVerifierAdded

	assert.Equal(t, ir.EventInitialized, rec.Events()[0].Name)
}
