package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/pkg/entity"
)

// showCommand creates the command that prints one project's details.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show the stored details of one project",
		Args:  cobra.ExactArgs(1),

		ValidArgsFunction: c.completeProjectNames(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			d, err := s.db.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printDetailCard(d)
			return nil
		},
	}
}

func printDetailCard(d entity.Detail) {
	fmt.Fprintln(stdout, StyleTitle.Render(d.Name))
	for _, kv := range detailFields(d) {
		printKeyValue(kv[0], kv[1])
	}
}

// detailFields lists the non-empty fields of a detail card in display order.
func detailFields(d entity.Detail) [][2]string {
	fields := [][2]string{
		{"Handle", "@" + strings.TrimPrefix(d.Handle, "@")},
		{"Profile", d.ProfileURL},
		{"Description", d.Description},
		{"Website", d.Website},
		{"Metrics", d.MetricsURL},
	}
	if d.FollowerCount > 0 {
		fields = append(fields, [2]string{"Followers", fmt.Sprintf("%d", d.FollowerCount)})
	}

	out := fields[:0]
	for _, kv := range fields {
		if kv[1] != "" {
			out = append(out, kv)
		}
	}
	return out
}
