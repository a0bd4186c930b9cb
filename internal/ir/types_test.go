package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusDraft.Valid())
	assert.True(t, StatusMinted.Valid())
	assert.True(t, StatusVerified.Valid())
	assert.False(t, Status("burned").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusNext(t *testing.T) {
	next, ok := StatusDraft.Next()
	require.True(t, ok)
	assert.Equal(t, StatusMinted, next)

	next, ok = StatusMinted.Next()
	require.True(t, ok)
	assert.Equal(t, StatusVerified, next)

	_, ok = StatusVerified.Next()
	assert.False(t, ok, "verified is terminal")

	_, ok = Status("unknown").Next()
	assert.False(t, ok)
}

func TestAchievementUpdateEmpty(t *testing.T) {
	assert.True(t, AchievementUpdate{}.Empty())

	title := "new"
	assert.False(t, AchievementUpdate{Title: &title}.Empty())
}

func TestAchievementJSONTags(t *testing.T) {
	a := Achievement{ID: 1, Owner: "o", EvidenceURI: "ipfs://x", Status: StatusDraft}

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "evidence_uri")
	assert.Contains(t, m, "timestamp")
	assert.Equal(t, "draft", m["status"])
}

func TestEventCanonicalOmitsZeroFields(t *testing.T) {
	ev := Event{ID: "x", Seq: 1, CallID: "call-1", Name: EventInitialized, Identity: "admin"}

	result, err := MarshalCanonical(ev.Canonical())
	require.NoError(t, err)
	assert.Equal(t, `{"call_id":"call-1","id":"x","identity":"admin","name":"Initialized","seq":1}`, string(result))

	ev = Event{ID: "y", Seq: 2, CallID: "call-2", Name: EventAchievementCreated, AchievementID: 3}
	result, err = MarshalCanonical(ev.Canonical())
	require.NoError(t, err)
	assert.Equal(t, `{"achievement_id":3,"call_id":"call-2","id":"y","name":"AchievementCreated","seq":2}`, string(result))
}
