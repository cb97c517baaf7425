package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/labelmap/internal/server"
	"github.com/matzehuels/labelmap/pkg/io"
	"github.com/matzehuels/labelmap/pkg/topology"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		collection string
	)

	cmd := &cobra.Command{
		Use:   "serve <artifact.json>",
		Short: "Serve an artifact and hit-testing over HTTP",
		Long: `Serve a layout artifact over HTTP.

Endpoints:
  GET /artifact                          the artifact as written by layout
  GET /hit?x=&y=                         objects under a point, first one acted on
  GET /frame?minX=&minY=&maxX=&maxY=     objects intersecting a viewport
  GET /healthz                           liveness and object count`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			art, err := io.ImportArtifact(args[0], collection)
			if err != nil {
				return fmt.Errorf("load artifact %s: %w", args[0], err)
			}
			srv, err := server.New(art, logger)
			if err != nil {
				return err
			}

			printSuccess("Serving %d objects", art.Len())
			printDetail("http://%s", displayAddr(addr))
			logger.Info("listening", "addr", addr, "artifact", args[0])
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVar(&collection, "collection", topology.DefaultCollection, "name of the placed-object collection")

	return cmd
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
