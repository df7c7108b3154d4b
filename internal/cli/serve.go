package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/impactgraph/internal/server"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the project list, details and graph elements over HTTP",
		Long: `Serve the project list, details and graph elements over HTTP.

Routes:
  GET /health
  GET /api/projects
  GET /api/projects/{name}
  GET /api/elements?names=A,B&k=5&seed=1300&relation=friends

The listen address defaults to the server.addr config value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			s, err := c.open(ctx, sessionOptions{})
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = s.cfg.Server.Addr
			}
			srv := server.New(s.db, s.runner(logger), server.Options{
				Defaults: s.graphDefaults(),
				Logger:   logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (e.g. :8050)")

	return cmd
}
