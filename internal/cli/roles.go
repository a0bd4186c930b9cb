package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/accolade/internal/ir"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init [admin]",
		Short: "Set the registry admin",
		Long: `Set the admin identity. A registry is initialized exactly once, and the
caller must be the admin being set. The admin defaults to --as.

Example:
  accolade init --as alice`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := identityOr(firstArg(args), rootOpts)
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.reg.Init(s.ctx, admin); err != nil {
				return s.out.Fail("init failed", err)
			}
			return s.out.Success(map[string]string{"admin": string(admin)}, func(w io.Writer) {
				fmt.Fprintf(w, "Initialized registry (admin: %s)\n", admin)
			})
		},
	}
}

// NewVerifierCommand creates the verifier command group.
func NewVerifierCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verifier",
		Short: "Manage the verifier whitelist",
	}
	cmd.AddCommand(newVerifierAddCommand(rootOpts))
	cmd.AddCommand(newVerifierRemoveCommand(rootOpts))
	cmd.AddCommand(newVerifierCheckCommand(rootOpts))
	return cmd
}

func newVerifierAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "add <identity>",
		Short:         "Whitelist a verifier (admin only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := ir.Identity(args[0])
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.reg.AddVerifier(s.ctx, identity); err != nil {
				return s.out.Fail("add verifier failed", err)
			}
			return s.out.Success(verifierStatus(identity, true), func(w io.Writer) {
				fmt.Fprintf(w, "Added verifier %s\n", identity)
			})
		},
	}
}

func newVerifierRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <identity>",
		Short:         "Remove a verifier (admin only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := ir.Identity(args[0])
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.reg.RemoveVerifier(s.ctx, identity); err != nil {
				return s.out.Fail("remove verifier failed", err)
			}
			return s.out.Success(verifierStatus(identity, false), func(w io.Writer) {
				fmt.Fprintf(w, "Removed verifier %s\n", identity)
			})
		},
	}
}

func newVerifierCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "check <identity>",
		Short:         "Report whether an identity is a verifier",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity := ir.Identity(args[0])
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			ok, err := s.reg.IsVerifier(s.ctx, identity)
			if err != nil {
				return s.out.Fail("verifier check failed", err)
			}
			return s.out.Success(verifierStatus(identity, ok), func(w io.Writer) {
				if ok {
					fmt.Fprintf(w, "%s is a verifier\n", identity)
				} else {
					fmt.Fprintf(w, "%s is not a verifier\n", identity)
				}
			})
		},
	}
}

func verifierStatus(identity ir.Identity, ok bool) map[string]any {
	return map[string]any{"identity": string(identity), "is_verifier": ok}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
