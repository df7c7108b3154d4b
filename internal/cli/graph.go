package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/impactgraph/pkg/errors"
	"github.com/matzehuels/impactgraph/pkg/graph"
	"github.com/matzehuels/impactgraph/pkg/pipeline"
)

// displayFlags holds the flags shared by graph and render.
type displayFlags struct {
	k        int
	seed     uint64
	relation string
	refresh  bool
	noCache  bool
}

func (f *displayFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.k, "min-connections", "k", pipeline.DefaultMinConnections, "keep nodes with at least k connections (0 keeps all)")
	cmd.Flags().Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "layout seed (positive)")
	cmd.Flags().StringVar(&f.relation, "relation", pipeline.DefaultRelation,
		"which id lists form edges ("+strings.Join(relationNames(), ", ")+")")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached result exists")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges explicit flags over the configured defaults.
func (f *displayFlags) options(cmd *cobra.Command, s *session, names []string) pipeline.Options {
	opts := s.graphDefaults()
	opts.Names = names
	opts.Refresh = f.refresh
	opts.Logger = loggerFromContext(cmd.Context())
	if cmd.Flags().Changed("min-connections") {
		opts.K = f.k
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	if cmd.Flags().Changed("relation") {
		opts.Relation = f.relation
	}
	return opts
}

// compute opens a session and runs the display pipeline.
func (c *CLI) compute(cmd *cobra.Command, f *displayFlags, names []string) (*pipeline.Result, pipeline.Options, error) {
	ctx := cmd.Context()
	if cmd.Flags().Changed("seed") && f.seed == 0 {
		return nil, pipeline.Options{}, errs.New(errs.ErrCodeInvalidOptions, "--seed must be a positive integer")
	}
	s, err := c.open(ctx, sessionOptions{noCache: f.noCache})
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	defer s.Close()

	opts := f.options(cmd, s, names)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, opts, err
	}

	spinner := newSpinner(ctx, "Laying out graph...")
	spinner.Start()
	res, err := s.runner(opts.Logger).Elements(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, opts, err
	}
	spinner.Stop()
	return res, opts, nil
}

func relationNames() []string {
	out := make([]string, 0, len(pipeline.ValidRelations))
	for r := range pipeline.ValidRelations {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// graphCommand creates the command that emits Cytoscape elements as JSON.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  displayFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "graph [names...]",
		Short: "Compute the follow graph as Cytoscape elements",
		Long: `Compute the follow graph as Cytoscape elements.

With no names every stored project is included. Names that are not in the
database are ignored. The result is written as {"elements": [...]} JSON,
ready to hand to cytoscape.js with a preset layout. With --format graph the
filtered graph itself is written as a node-link document without positions;
each node records its core number.`,
		Example: `  impactgraph graph -o elements.json
  impactgraph graph -k 0 Gitcoin "Hypercerts"`,
		ValidArgsFunction: c.completeProjectNames(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, _, err := c.compute(cmd, &flags, args)
			if err != nil {
				return err
			}

			data, err := encodeGraphOutput(res, format)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				fmt.Fprintln(stdout, string(data))
				return nil
			}
			if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printSuccess("Graph computed")
			printStats(res)
			printFile(output)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&format, "format", "elements", "output document: elements or graph")

	return cmd
}

func encodeGraphOutput(res *pipeline.Result, format string) ([]byte, error) {
	switch format {
	case "elements", "":
		data, err := json.MarshalIndent(struct {
			Elements any `json:"elements"`
		}{res.Elements}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode elements: %w", err)
		}
		return data, nil
	case "graph":
		data, err := graph.MarshalGraph(res.Graph)
		if err != nil {
			return nil, fmt.Errorf("encode graph: %w", err)
		}
		return bytes.TrimRight(data, "\n"), nil
	}
	return nil, fmt.Errorf("unknown format %q (must be elements or graph)", format)
}
