package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/accolade/internal/auth"
	"github.com/roach88/accolade/internal/ir"
	"github.com/roach88/accolade/internal/registry"
	"github.com/roach88/accolade/internal/store"
)

// session is an open database and the registry over it.
type session struct {
	store *store.Store
	reg   *registry.Registry
	out   *OutputFormatter
	ctx   context.Context
}

// openSession opens the database named by --db and builds a registry that
// persists its events. The event clock resumes after the last logged event.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	if opts.DB == "" {
		return nil, NewExitError(ExitCommandError, "no database: set --db or ACCOLADE_DB")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	last, err := st.LastEventSeq(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read event log", err)
	}

	logger := slog.Default()
	sinks := registry.MultiSink{store.EventLog{Store: st}}
	if opts.Verbose {
		sinks = append(sinks, registry.LogSink{Logger: logger})
	}

	reg := registry.New(st, auth.Context{},
		registry.WithEventSink(sinks),
		registry.WithEventSeqStart(last),
		registry.WithLogger(logger),
	)

	if opts.As != "" {
		ctx = auth.WithCaller(ctx, ir.Identity(opts.As))
	}
	slog.Debug("database ready", "path", opts.DB, "last_event_seq", last, "caller", opts.As)

	return &session{store: st, reg: reg, out: opts.formatter(cmd), ctx: ctx}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// requireCaller fails unless --as was given.
func requireCaller(opts *RootOptions) (ir.Identity, error) {
	if opts.As == "" {
		return "", NewExitError(ExitCommandError, "this command needs a caller: set --as")
	}
	return ir.Identity(opts.As), nil
}

// identityOr returns value, or the caller when value is empty.
func identityOr(value string, opts *RootOptions) (ir.Identity, error) {
	if value != "" {
		return ir.Identity(value), nil
	}
	return requireCaller(opts)
}
