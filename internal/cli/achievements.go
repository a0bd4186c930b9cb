package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/accolade/internal/ir"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Owner       string
	Title       string
	Description string
	Category    string
	EvidenceURI string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a draft achievement",
		Long: `Create a draft achievement. The owner defaults to --as, and the caller
must be the owner.

Example:
  accolade create --as bob --title "First PR" --category coding --evidence ipfs://bafy`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := identityOr(opts.Owner, rootOpts)
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.reg.CreateAchievement(s.ctx, ir.AchievementInput{
				Owner:       owner,
				Title:       opts.Title,
				Description: opts.Description,
				Category:    opts.Category,
				EvidenceURI: opts.EvidenceURI,
			})
			if err != nil {
				return s.out.Fail("create failed", err)
			}
			return s.out.Success(map[string]uint64{"id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Created achievement %d\n", id)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Owner, "owner", "", "owner identity (default --as)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category, e.g. coding")
	cmd.Flags().StringVar(&opts.EvidenceURI, "evidence", "", "evidence URI, e.g. an IPFS CID")

	return cmd
}

// NewUpdateCommand creates the update command. Only flags that are set
// change the record.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var title, description, category, evidence string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a draft achievement (owner only)",
		Long: `Edit the fields of a draft achievement. Fields whose flags are not given
keep their stored value. Minted and verified achievements are immutable.

Example:
  accolade update 1 --as bob --title "First merged PR"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var upd ir.AchievementUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				upd.Title = &title
			}
			if flags.Changed("description") {
				upd.Description = &description
			}
			if flags.Changed("category") {
				upd.Category = &category
			}
			if flags.Changed("evidence") {
				upd.EvidenceURI = &evidence
			}
			if upd.Empty() {
				return NewExitError(ExitCommandError, "nothing to update: set at least one of --title, --description, --category, --evidence")
			}

			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.reg.UpdateAchievement(s.ctx, id, upd)
			if err != nil {
				return s.out.Fail("update failed", err)
			}
			return s.out.Success(a, achievementText(a))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&category, "category", "", "new category (the category index keeps the original)")
	cmd.Flags().StringVar(&evidence, "evidence", "", "new evidence URI")

	return cmd
}

// NewMintCommand creates the mint command.
func NewMintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "mint <id>",
		Short:         "Lock a draft achievement (owner only)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.reg.MintAchievement(s.ctx, id)
			if err != nil {
				return s.out.Fail("mint failed", err)
			}
			return s.out.Success(a, achievementText(a))
		},
	}
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var verifier string

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Attest a minted achievement (verifiers only)",
		Long: `Move a minted achievement to verified. The verifier defaults to --as and
must be on the whitelist. Owning the achievement grants nothing here.

Example:
  accolade verify 1 --as carol`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			v, err := identityOr(verifier, rootOpts)
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.reg.VerifyAchievement(s.ctx, id, v)
			if err != nil {
				return s.out.Fail("verify failed", err)
			}
			return s.out.Success(a, achievementText(a))
		},
	}

	cmd.Flags().StringVar(&verifier, "verifier", "", "verifier identity (default --as)")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one achievement",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			a, err := s.reg.GetAchievement(s.ctx, id)
			if err != nil {
				return s.out.Fail("get failed", err)
			}
			return s.out.Success(a, achievementText(a))
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var owner, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List achievements by owner or category",
		Long: `List achievements in creation order, selected by exactly one of --owner
or --category. Category membership reflects the category at creation.

Examples:
  accolade list --owner bob
  accolade list --category coding --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("owner") == flags.Changed("category") {
				return NewExitError(ExitCommandError, "set exactly one of --owner or --category")
			}
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			var list []ir.Achievement
			if flags.Changed("owner") {
				list, err = s.reg.ListByOwner(s.ctx, ir.Identity(owner))
			} else {
				list, err = s.reg.ListByCategory(s.ctx, category)
			}
			if err != nil {
				return s.out.Fail("list failed", err)
			}
			return s.out.Success(map[string]any{"achievements": list}, func(w io.Writer) {
				if len(list) == 0 {
					fmt.Fprintln(w, "No achievements.")
					return
				}
				for _, a := range list {
					fmt.Fprintln(w, summaryLine(a))
				}
			})
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner identity")
	cmd.Flags().StringVar(&category, "category", "", "category")

	return cmd
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid achievement id %q", s))
	}
	return id, nil
}

func summaryLine(a ir.Achievement) string {
	return fmt.Sprintf("#%d [%s] %s (owner: %s, category: %s)", a.ID, a.Status, a.Title, a.Owner, a.Category)
}

func achievementText(a ir.Achievement) func(w io.Writer) {
	return func(w io.Writer) {
		fmt.Fprintln(w, summaryLine(a))
		if a.Description != "" {
			fmt.Fprintf(w, "  %s\n", a.Description)
		}
		if a.EvidenceURI != "" {
			fmt.Fprintf(w, "  evidence: %s\n", a.EvidenceURI)
		}
		created := time.Unix(int64(a.Timestamp), 0).UTC().Format(time.RFC3339)
		fmt.Fprintf(w, "  created: %s\n", created)
	}
}
