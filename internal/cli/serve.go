package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart API over HTTP",
		Long: `Serve the chart API over HTTP.

Each client is tracked in its own session, chosen by the X-Session-ID request
header. Sessions live in the configured store backend; use the redis backend
when running more than one instance. Dashboard statistics come from MongoDB
when notify.mongo_uri is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string) error {
	e, err := c.openEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	opts := []server.Option{
		server.WithLogger(e.logger),
		server.WithDefaults(e.options()),
		server.WithExportOptions(e.cfg.ExportOptions()...),
		server.WithMaxBodyBytes(e.cfg.Server.MaxBodyBytes),
	}
	if n := e.external(); n != nil {
		opts = append(opts, server.WithNotifier(n))
	}
	if e.stats != nil {
		opts = append(opts, server.WithStats(e.stats))
	}

	printInfo("Serving on %s", StyleHighlight.Render(addr))
	printDetail("store=%s", e.cfg.Store.Backend)
	return server.New(e.sessions, opts...).ListenAndServe(ctx, addr)
}
