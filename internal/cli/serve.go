package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/provmap/internal/metrics"
	"github.com/matzehuels/provmap/internal/server"
	"github.com/matzehuels/provmap/pkg/report"
)

// serveCommand starts the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the province map over HTTP",
		Long: `Serve the province selector and map pages, the JSON/GeoJSON API,
/healthz and /metrics.

The dataset is loaded once at startup. If it cannot be loaded the server still
starts, shows the error on every page and reports itself degraded on /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, noCache bool) error {
	metrics.Install()

	// Load failures are shown by the server instead of stopping it.
	rec := report.NewRecorder()
	rep := report.Tee(report.NewLogReporter(c.Logger), rec)
	ds := c.serveDataset(ctx, rep)

	runner, err := c.newRunner(ctx, ds, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	c.Logger.Info("dataset ready", "provinces", ds.Len(), "skipped", len(ds.Issues()))

	srv := server.New(server.Options{
		Runner:     runner,
		Config:     c.Config,
		Logger:     c.Logger,
		LoadErrors: rec.Errors(),
	})
	return srv.ListenAndServe(ctx)
}
