package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/store"
)

// Registry is the public operation surface of an achievement registry.
//
// All role state lives in the KV the registry was built with, so independent
// registries over different stores never share admins or verifiers.
//
// Thread-safety model:
//   - Mutating methods serialize on an internal mutex and run in one
//     KV.Update transaction each
//   - Read methods run in KV.View and do not take the mutex
//   - Events are emitted after commit, while the mutex is still held, so
//     event sequence order matches commit order
type Registry struct {
	mu      sync.Mutex
	kv      store.KV
	auth    Authenticator
	clock   Clock
	sink    EventSink
	seq     *SeqClock
	callIDs CallIDGenerator
	logger  *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the creation timestamp source. Default: NewSystemClock().
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithEventSink sets where events are delivered. Default: NopSink.
func WithEventSink(s EventSink) Option {
	return func(r *Registry) { r.sink = s }
}

// WithLogger sets the logger. Default discards.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithCallIDGenerator sets the call ID source. Default: UUIDv7Generator.
func WithCallIDGenerator(g CallIDGenerator) Option {
	return func(r *Registry) { r.callIDs = g }
}

// WithEventSeqStart resumes event sequence numbers after start.
// Use the last persisted sequence when reopening an event log.
func WithEventSeqStart(start int64) Option {
	return func(r *Registry) { r.seq = NewSeqClock(start) }
}

// New creates a Registry over kv, authorizing callers with auth.
func New(kv store.KV, auth Authenticator, opts ...Option) *Registry {
	r := &Registry{
		kv:      kv,
		auth:    auth,
		clock:   NewSystemClock(),
		sink:    NopSink{},
		seq:     NewSeqClock(0),
		callIDs: UUIDv7Generator{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init sets the admin identity. It may succeed only once per store, and the
// caller must authenticate as admin itself.
func (r *Registry) Init(ctx context.Context, admin ir.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.kv.Update(ctx, func(tx store.Tx) error {
		return r.initialize(ctx, tx, admin)
	})
	if err != nil {
		return err
	}
	r.committed(ctx, "init", ir.EventInitialized, 0, admin)
	return nil
}

// AddVerifier whitelists identity as a verifier. Admin only; idempotent.
func (r *Registry) AddVerifier(ctx context.Context, identity ir.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if _, err := r.requireAdmin(ctx, tx); err != nil {
			return err
		}
		return addVerifier(ctx, tx, identity)
	})
	if err != nil {
		return err
	}
	r.committed(ctx, "add_verifier", ir.EventVerifierAdded, 0, identity)
	return nil
}

// RemoveVerifier removes identity from the verifier set. Admin only;
// removing a non-member is not an error.
func (r *Registry) RemoveVerifier(ctx context.Context, identity ir.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if _, err := r.requireAdmin(ctx, tx); err != nil {
			return err
		}
		return removeVerifier(ctx, tx, identity)
	})
	if err != nil {
		return err
	}
	r.committed(ctx, "remove_verifier", ir.EventVerifierRemoved, 0, identity)
	return nil
}

// IsVerifier reports whether identity is in the verifier set.
func (r *Registry) IsVerifier(ctx context.Context, identity ir.Identity) (bool, error) {
	var ok bool
	err := r.kv.View(ctx, func(tx store.Tx) error {
		var err error
		ok, err = isVerifier(ctx, tx, identity)
		return err
	})
	return ok, err
}

// CreateAchievement stores a new draft achievement owned by in.Owner and
// returns its ID. The caller must authenticate as the owner.
func (r *Registry) CreateAchievement(ctx context.Context, in ir.AchievementInput) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id uint64
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if err := r.requireCallerIs(ctx, in.Owner); err != nil {
			return err
		}
		var err error
		id, err = allocateAndCreate(ctx, tx, in, r.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}
	r.committed(ctx, "create_achievement", ir.EventAchievementCreated, id, "")
	return id, nil
}

// UpdateAchievement edits the supplied fields of a draft achievement.
// The caller must be the record's owner.
func (r *Registry) UpdateAchievement(ctx context.Context, id uint64, upd ir.AchievementUpdate) (ir.Achievement, error) {
	return r.ownerMutation(ctx, id, "update_achievement", ir.EventAchievementUpdated,
		func(tx store.Tx, a ir.Achievement) (ir.Achievement, error) {
			return update(ctx, tx, a, upd)
		})
}

// MintAchievement moves a draft achievement to minted.
// The caller must be the record's owner.
func (r *Registry) MintAchievement(ctx context.Context, id uint64) (ir.Achievement, error) {
	return r.ownerMutation(ctx, id, "mint_achievement", ir.EventAchievementMinted,
		func(tx store.Tx, a ir.Achievement) (ir.Achievement, error) {
			return transitionToMinted(ctx, tx, a)
		})
}

// ownerMutation reads the record, authorizes its owner, then applies fn.
func (r *Registry) ownerMutation(
	ctx context.Context,
	id uint64,
	op string,
	event ir.EventName,
	fn func(tx store.Tx, a ir.Achievement) (ir.Achievement, error),
) (ir.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out ir.Achievement
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		a, err := get(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := r.requireCallerIs(ctx, a.Owner); err != nil {
			return err
		}
		out, err = fn(tx, a)
		return err
	})
	if err != nil {
		return ir.Achievement{}, err
	}
	r.committed(ctx, op, event, id, "")
	return out, nil
}

// VerifyAchievement moves a minted achievement to verified. The caller must
// authenticate as verifier, and verifier must be in the verifier set. Being
// the record's owner grants nothing here.
func (r *Registry) VerifyAchievement(ctx context.Context, id uint64, verifier ir.Identity) (ir.Achievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out ir.Achievement
	err := r.kv.Update(ctx, func(tx store.Tx) error {
		if err := r.requireCallerIs(ctx, verifier); err != nil {
			return err
		}
		a, err := get(ctx, tx, id)
		if err != nil {
			return err
		}
		ok, err := isVerifier(ctx, tx, verifier)
		if err != nil {
			return err
		}
		if !ok {
			return NewUnauthorizedError("caller is not a verifier", verifier, nil)
		}
		out, err = transitionToVerified(ctx, tx, a)
		return err
	})
	if err != nil {
		return ir.Achievement{}, err
	}
	r.committed(ctx, "verify_achievement", ir.EventAchievementVerified, id, "")
	return out, nil
}

// GetAchievement returns the achievement with the given ID.
func (r *Registry) GetAchievement(ctx context.Context, id uint64) (ir.Achievement, error) {
	var a ir.Achievement
	err := r.kv.View(ctx, func(tx store.Tx) error {
		var err error
		a, err = get(ctx, tx, id)
		return err
	})
	return a, err
}

// ListByOwner returns every achievement created by owner, in creation order.
func (r *Registry) ListByOwner(ctx context.Context, owner ir.Identity) ([]ir.Achievement, error) {
	var out []ir.Achievement
	err := r.kv.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = listByOwner(ctx, tx, owner)
		return err
	})
	return out, err
}

// ListByCategory returns every achievement created under category, in
// creation order. Membership reflects the category at creation time.
func (r *Registry) ListByCategory(ctx context.Context, category string) ([]ir.Achievement, error) {
	var out []ir.Achievement
	err := r.kv.View(ctx, func(tx store.Tx) error {
		var err error
		out, err = listByCategory(ctx, tx, category)
		return err
	})
	return out, err
}

// committed logs a committed operation and emits its event.
func (r *Registry) committed(ctx context.Context, op string, event ir.EventName, id uint64, identity ir.Identity) {
	callID := r.callIDs.Generate()
	r.logger.DebugContext(ctx, "operation committed", "op", op, "call_id", callID, "id", id, "identity", string(identity))
	r.emit(ctx, callID, event, id, identity)
}
