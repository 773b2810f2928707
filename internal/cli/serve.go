package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/biotree/pkg/editor"
	"github.com/matzehuels/biotree/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram editor API over HTTP",
		Long: `Serve the diagram editor API over HTTP.

The diagram is restored from the configured store, starts in view mode, and
is persisted after every change. Rendering clients poll GET /api/flow and
drive edits through the JSON endpoints under /api. Metrics are exposed on
/metrics and a liveness probe on /healthz.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withSession(ctx, editor.ModeView, func(s *session) error {
				if addr == "" {
					addr = s.cfg.Server.Addr
				}
				srv := server.New(s.Controller, server.Options{Logger: c.Logger})
				printInfo("Serving %s", StyleLink.Render("http://"+addr))
				printDetail("Storage: %s", s.store.Driver())
				return srv.ListenAndServe(ctx, addr)
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: "+server.DefaultAddr+")")

	return cmd
}
