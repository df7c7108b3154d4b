package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/importer"
	"github.com/matzehuels/impactgraph/pkg/store"
)

// importCommand creates the bulk import command.
func (c *CLI) importCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import projects from a CSV file",
		Long: `Import projects from a CSV file with a header row.

The "Project Name" and "Twitter Handle" columns are required (matched
case-insensitively; "handle" and "twitter" also work). Optional columns:
"Description", "Website", "Metrics". Use - to read from stdin.

Rows with a blank name or handle are skipped. Every other row is looked up
and stored independently; handles already in the database are left as is.`,
		Example: `  impactgraph import survey.csv
  impactgraph import --dry-run survey.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			projects, stats, err := readProjects(args[0])
			if err != nil {
				return err
			}
			if stats.Blank > 0 {
				printWarning("Skipped %d rows with a blank name or handle", stats.Blank)
			}
			if stats.Malformed > 0 {
				printWarning("Skipped %d malformed rows", stats.Malformed)
			}
			if dryRun {
				for _, p := range projects {
					printKeyValue(p.Name, p.Handle)
				}
				printInfo("%d projects would be imported", len(projects))
				return nil
			}

			s, err := c.open(ctx, sessionOptions{noCache: noCache, refresh: refresh})
			if err != nil {
				return err
			}
			defer s.Close()

			prog := newProgress(logger)
			sum := importer.New(s.db, logger).Run(ctx, projects)
			prog.done("Processed %d projects", len(sum.Results))

			printImportSummary(sum)
			if sum.Canceled {
				return ctx.Err()
			}
			if sum.Count(store.Inserted) > 0 {
				printNewline()
				printNextStep("Draw the graph", appName+" render -o graph.svg")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cached lookups")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the lookup cache")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file and list projects without importing")

	return cmd
}

func readProjects(path string) ([]entity.Project, importer.Stats, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, importer.Stats{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	return importer.ReadCSV(r)
}

func printImportSummary(sum importer.Summary) {
	printSuccess("Inserted %d projects", sum.Count(store.Inserted))
	for _, o := range []store.Outcome{store.SkippedDuplicate, store.SkippedInvalidName, store.SkippedInvalidHandle, store.SkippedLookupFailed} {
		if n := sum.Count(o); n > 0 {
			printDetail("%s: %d", o, n)
		}
	}
	if n := sum.Count(store.Failed); n > 0 {
		printError("%d projects could not be stored", n)
		for _, r := range sum.Results {
			if r.Outcome == store.Failed {
				printDetail("%s (%s): %v", r.Name, r.Handle, r.Reason)
			}
		}
	}
}
