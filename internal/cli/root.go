package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/pkg/buildinfo"
	"github.com/matzehuels/impactgraph/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "impactgraph maps who follows whom among a set of projects",
		Long: `impactgraph keeps a deduplicated database of projects identified by their
social handle, and draws the follow relationships between them as a k-core
filtered, force-directed graph.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" when present)")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug output, including lookups and cache traffic")

	root.AddCommand(
		c.importCommand(),
		c.addCommand(),
		c.graphCommand(),
		c.renderCommand(),
		c.showCommand(),
		c.browseCommand(),
		c.serveCommand(),
		c.cacheCommand(),
		c.completionCommand(),
	)
	return root
}
