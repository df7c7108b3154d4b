package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/store"
)

// addCommand creates the single-project insert command.
func (c *CLI) addCommand() *cobra.Command {
	var p entity.Project
	var refresh bool

	cmd := &cobra.Command{
		Use:   "add NAME HANDLE",
		Short: "Add one project to the database",
		Long: `Add one project to the database.

HANDLE may be given as "name", "@name" or a profile URL.`,
		Example: `  impactgraph add "Gitcoin" @gitcoin
  impactgraph add "Gitcoin" https://twitter.com/gitcoin --website https://gitcoin.co`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Name, p.Handle = args[0], args[1]

			s, err := c.open(cmd.Context(), sessionOptions{refresh: refresh})
			if err != nil {
				return err
			}
			defer s.Close()

			res := s.db.Insert(cmd.Context(), p)
			switch {
			case res.Outcome == store.Inserted:
				printSuccess("Added %s (@%s, id %d)", res.Name, res.Handle, res.ID)
				return nil
			case res.Outcome == store.SkippedDuplicate:
				printInfo("%s is already stored (id %d)", res.Name, res.ID)
				return nil
			case res.Outcome.Skipped():
				printWarning("Skipped %s: %s", res.Name, res.Outcome)
				return res.Reason
			default:
				return fmt.Errorf("add %s: %w", res.Name, res.Reason)
			}
		},
	}

	cmd.Flags().StringVar(&p.Description, "description", "", "project description")
	cmd.Flags().StringVar(&p.Website, "website", "", "project website")
	cmd.Flags().StringVar(&p.MetricsURL, "metrics", "", "link to impact metrics")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached lookups")

	return cmd
}
