package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/accolade/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the registry over HTTP under /api/v1. Mutating routes require a
bearer token (see "accolade token"); its subject is the caller.

Example:
  ACCOLADE_JWT_SECRET=s3cret accolade serve --db ./accolade.db --addr :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default $ACCOLADE_ADDR or :8080)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	addr := opts.Addr
	if addr == "" {
		addr = opts.Config.Addr
	}
	if addr == "" {
		addr = ":8080"
	}

	tokens, err := newTokens(opts.RootOptions, opts.Config.TokenTTL)
	if err != nil {
		return err
	}

	// The server authenticates callers per request, so --as is ignored.
	sessionOpts := *opts.RootOptions
	sessionOpts.As = ""
	s, err := openSession(&sessionOpts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(s.reg, tokens,
		server.WithLogger(slog.Default()),
		server.WithAccessLog(cmd.ErrOrStderr()),
	)

	slog.Info("server starting", "addr", addr, "db", opts.DB)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s. Press Ctrl-C to stop.\n", addr)

	if err := srv.Listen(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
