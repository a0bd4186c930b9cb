package registry

import (
	"context"

	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/store"
)

// initialize sets the admin once. The caller must authenticate as admin.
func (r *Registry) initialize(ctx context.Context, tx store.Tx, admin ir.Identity) error {
	has, err := tx.Has(ctx, ir.KeyAdmin())
	if err != nil {
		return err
	}
	if has {
		return NewAlreadyInitializedError()
	}
	if err := r.requireCallerIs(ctx, admin); err != nil {
		return err
	}
	if err := putJSON(ctx, tx, ir.KeyAdmin(), string(admin)); err != nil {
		return err
	}
	return putJSON(ctx, tx, ir.KeyNextID(), uint64(0))
}

// requireAdmin fails unless the caller is the stored admin.
// An uninitialized registry has no admin, so every caller fails.
func (r *Registry) requireAdmin(ctx context.Context, tx store.Tx) (ir.Identity, error) {
	admin, ok, err := readAdmin(ctx, tx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NewUnauthorizedError("admin not set", "", nil)
	}
	if err := r.requireCallerIs(ctx, admin); err != nil {
		return "", err
	}
	return admin, nil
}

// requireCallerIs fails unless the caller authenticated as identity.
func (r *Registry) requireCallerIs(ctx context.Context, identity ir.Identity) error {
	if err := r.auth.RequireAuth(ctx, identity); err != nil {
		return NewUnauthorizedError("caller is not authorized as identity", identity, err)
	}
	return nil
}

func addVerifier(ctx context.Context, tx store.Tx, identity ir.Identity) error {
	return putJSON(ctx, tx, ir.KeyVerifier(identity), true)
}

func removeVerifier(ctx context.Context, tx store.Tx, identity ir.Identity) error {
	return tx.Remove(ctx, ir.KeyVerifier(identity))
}

func isVerifier(ctx context.Context, tx store.Tx, identity ir.Identity) (bool, error) {
	return tx.Has(ctx, ir.KeyVerifier(identity))
}

func readAdmin(ctx context.Context, tx store.Tx) (ir.Identity, bool, error) {
	var admin string
	ok, err := getJSON(ctx, tx, ir.KeyAdmin(), &admin)
	if err != nil || !ok {
		return "", ok, err
	}
	return ir.Identity(admin), true, nil
}
