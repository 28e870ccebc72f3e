package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/bpmnlayout/internal/server"
	"github.com/matzehuels/bpmnlayout/pkg/pipeline"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		algorithm string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the layout HTTP API",
		Long: `Run the layout HTTP API.

Diagrams posted to /v1/diagrams are kept in memory until the server stops.
Layout results are cached in the configured backend; use the redis backend
when several instances share work.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, algorithm, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
			printDetail("cache: %s, algorithm: %s", cfg.Cache.Backend, runner.Engine.Algorithm.Name())
			return server.New(pipeline.NewWorkspace(runner), cfg.Server, c.Logger).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().StringVar(&algorithm, "algorithm", algorithmLayered, "layered graph algorithm: layered, graphviz")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
