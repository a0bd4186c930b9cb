package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/accolade/internal/ir"
)

// ErrNoCaller is returned when a check runs on a context with no caller.
var ErrNoCaller = errors.New("auth: no authenticated caller")

// ErrWrongCaller is returned when the caller differs from the required identity.
var ErrWrongCaller = errors.New("auth: caller mismatch")

type callerKey struct{}

// WithCaller returns a context carrying an authenticated caller identity.
func WithCaller(ctx context.Context, caller ir.Identity) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom returns the caller carried by ctx, if any.
func CallerFrom(ctx context.Context) (ir.Identity, bool) {
	caller, ok := ctx.Value(callerKey{}).(ir.Identity)
	if !ok || caller == "" {
		return "", false
	}
	return caller, true
}

// Context authorizes calls using the caller carried by the context.
//
// Implements registry.Authenticator.
type Context struct{}

// RequireAuth fails unless the context's caller equals identity exactly.
func (Context) RequireAuth(ctx context.Context, identity ir.Identity) error {
	caller, ok := CallerFrom(ctx)
	if !ok {
		return ErrNoCaller
	}
	if caller != identity {
		return fmt.Errorf("%w: caller %q, required %q", ErrWrongCaller, caller, identity)
	}
	return nil
}
