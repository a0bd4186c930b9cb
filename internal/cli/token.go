package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/accolade/internal/auth"
)

// NewTokenCommand creates the token command.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token [identity]",
		Short: "Issue a bearer token for the HTTP API",
		Long: `Issue an HS256 bearer token whose subject is the identity (default --as).
The secret comes from ACCOLADE_JWT_SECRET; the server must share it.

Example:
  ACCOLADE_JWT_SECRET=s3cret accolade token alice`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := identityOr(firstArg(args), rootOpts)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = rootOpts.Config.TokenTTL
			}
			tokens, err := newTokens(rootOpts, ttl)
			if err != nil {
				return err
			}

			token, err := tokens.Issue(identity)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to issue token", err)
			}
			out := rootOpts.formatter(cmd)
			return out.Success(map[string]string{"identity": string(identity), "token": token}, func(w io.Writer) {
				fmt.Fprintln(w, token)
			})
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default $ACCOLADE_TOKEN_TTL)")

	return cmd
}

// newTokens builds the token service from config.
func newTokens(opts *RootOptions, ttl time.Duration) (*auth.Tokens, error) {
	if opts.Config.JWTSecret == "" {
		return nil, NewExitError(ExitCommandError, "ACCOLADE_JWT_SECRET is not set")
	}
	if ttl == 0 {
		ttl = time.Hour
	}
	tokens, err := auth.NewTokens(opts.Config.JWTSecret, opts.Config.JWTIssuer, ttl)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid token settings", err)
	}
	return tokens, nil
}
