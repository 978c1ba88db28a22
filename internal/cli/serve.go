package cli

import (
	"github.com/spf13/cobra"

	"github.com/cellmaps/hierkit/internal/server"
)

// newServeCmd creates the serve command, which runs the conversion and
// comparison engines as an HTTP service.
func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the hierkit HTTP service",
		Long: `Serve the conversion and comparison engines over HTTP.

Endpoints:
  GET  /healthz   liveness probe
  POST /convert   convert a hierarchy document between formats
  POST /diff      compare two hierarchy documents`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			logger := loggerFromContext(c.Context())
			return server.New(logger).ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
