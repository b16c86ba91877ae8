package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		engine  engineFlags
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts over HTTP",
		Long: `Serve layouts over HTTP.

POST /api/v1/layout returns frames for a dataset window, POST /api/v1/render
returns an SVG, PNG or JSON rendering, GET /metrics exposes Prometheus
metrics. Engine flags set the defaults for requests that omit them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd, engine)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv, err := server.New(runner, cfg,
				server.WithLogger(c.Logger),
				server.WithGatherer(c.metricsRegistry()))
			if err != nil {
				return err
			}

			printInfo("Listening on %s", StyleHighlight.Render(cfg.Server.Addr))
			return srv.Run(ctx, cfg.Server.Addr)
		},
	}

	engine.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable snapshot caching")

	return cmd
}
