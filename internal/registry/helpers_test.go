package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/accolade/internal/auth"
	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/store"
	"github.com/roach88/accolade/internal/testutil"
)

const (
	adminID    ir.Identity = "admin-A"
	verifierID ir.Identity = "verifier-V"
	ownerID    ir.Identity = "owner-O"
	strangerID ir.Identity = "stranger-S"
)

type fixture struct {
	reg    *Registry
	kv     store.KV
	events *testutil.EventRecorder
}

func newFixture(t *testing.T, kv store.KV) *fixture {
	t.Helper()
	events := &testutil.EventRecorder{}
	reg := New(kv, auth.Context{},
		WithClock(testutil.NewDeterministicClockAt(1700000000)),
		WithEventSink(events),
		WithCallIDGenerator(testutil.NewSequentialCallIDs("test")),
	)
	return &fixture{reg: reg, kv: kv, events: events}
}

// backends returns a fresh fixture per KV implementation.
func backends(t *testing.T) map[string]*fixture {
	t.Helper()
	s, err := store.Open(t.TempDir() + "/registry.db")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return map[string]*fixture{
		"sqlite": newFixture(t, s),
		"memory": newFixture(t, store.NewMemory()),
	}
}

func as(identity ir.Identity) context.Context {
	return auth.WithCaller(context.Background(), identity)
}

func strptr(s string) *string { return &s }

// initialized sets up admin A and verifier V.
func (f *fixture) initialized(t *testing.T) {
	t.Helper()
	require.NoError(t, f.reg.Init(as(adminID), adminID))
	require.NoError(t, f.reg.AddVerifier(as(adminID), verifierID))
}

func (f *fixture) create(t *testing.T, owner ir.Identity, category string) uint64 {
	t.Helper()
	id, err := f.reg.CreateAchievement(as(owner), ir.AchievementInput{
		Owner:       owner,
		Title:       "First PR",
		Description: "Merged a pull request",
		Category:    category,
		EvidenceURI: "ipfs://bafy",
	})
	require.NoError(t, err)
	return id
}

// snapshot returns every stored key and value.
func (f *fixture) snapshot(t *testing.T) map[string]string {
	t.Helper()
	out := make(map[string]string)
	ctx := context.Background()
	kinds := []ir.KeyKind{
		ir.KindNextID, ir.KindAchievement, ir.KindOwnerIndex,
		ir.KindCategoryIndex, ir.KindAdmin, ir.KindVerifier,
	}
	require.NoError(t, f.kv.View(ctx, func(tx store.Tx) error {
		for _, kind := range kinds {
			err := tx.Scan(ctx, kind, func(key ir.Key, value []byte) error {
				out[key.String()] = string(value)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}))
	return out
}

func authFor() Authenticator { return auth.Context{} }
