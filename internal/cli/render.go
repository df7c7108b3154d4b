package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/pkg/render"
	"github.com/matzehuels/impactgraph/pkg/render/nodelink"
)

const (
	formatSVG = "svg"
	formatPDF = "pdf"
	formatPNG = "png"
	formatDOT = "dot"
)

var validFormats = map[string]bool{
	formatSVG: true,
	formatPDF: true,
	formatPNG: true,
	formatDOT: true,
}

// renderCommand creates the static image command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags    displayFlags
		output   string
		formats  string
		detailed bool
		pngScale float64
	)

	cmd := &cobra.Command{
		Use:   "render [names...]",
		Short: "Render the follow graph to SVG, PDF or PNG",
		Long: `Render the follow graph to SVG, PDF or PNG.

Nodes are pinned at the same positions the graph command produces, so the
image matches the interactive view. PDF and PNG need rsvg-convert.`,
		Example: `  impactgraph render -o graph.svg
  impactgraph render -k 2 --format svg,png -o out/graph`,
		ValidArgsFunction: c.completeProjectNames(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmts, err := parseFormats(formats)
			if err != nil {
				return err
			}

			res, opts, err := c.compute(cmd, &flags, args)
			if err != nil {
				return err
			}
			if res.Graph.NodeCount() == 0 {
				printWarning("No project has %d or more connections", opts.K)
				return nil
			}

			dot := nodelink.ToDOT(res.Graph, res.Positions, res.Followers, nodelink.Options{
				Scale:    opts.Scale(),
				Detailed: detailed,
			})

			base := strings.TrimSuffix(output, filepath.Ext(output))
			if base == "" {
				base = "graph"
			}

			printSuccess("Graph rendered")
			printStats(res)
			r := &renderer{dot: dot, pngScale: pngScale}
			for _, f := range fmts {
				data, err := r.format(cmd.Context(), f)
				if err != nil {
					return fmt.Errorf("render %s: %w", f, err)
				}
				path := base + "." + f
				if len(fmts) == 1 && output != "" {
					path = output
				}
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				printFile(path)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (extension is replaced per format)")
	cmd.Flags().StringVarP(&formats, "format", "f", formatSVG, "comma-separated formats: svg, pdf, png, dot")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show follower counts in node labels")
	cmd.Flags().Float64Var(&pngScale, "png-scale", 2, "PNG scale factor")

	return cmd
}

func parseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !validFormats[f] {
			return nil, fmt.Errorf("unknown format %q (must be svg, pdf, png or dot)", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return []string{formatSVG}, nil
	}
	return out, nil
}

// renderer draws the SVG at most once and derives the other formats from it.
type renderer struct {
	dot      string
	pngScale float64
	svg      []byte
}

func (r *renderer) format(ctx context.Context, f string) ([]byte, error) {
	if f == formatDOT {
		return []byte(r.dot), nil
	}
	if r.svg == nil {
		svg, err := nodelink.RenderSVG(ctx, r.dot)
		if err != nil {
			return nil, err
		}
		r.svg = svg
	}
	switch f {
	case formatPDF:
		return render.Convert(ctx, r.svg, render.PDF, 0)
	case formatPNG:
		return render.Convert(ctx, r.svg, render.PNG, r.pngScale)
	}
	return r.svg, nil
}
