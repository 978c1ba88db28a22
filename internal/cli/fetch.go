package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cellmaps/hierkit/pkg/codec"
	"github.com/cellmaps/hierkit/pkg/ndex"
)

// newFetchCmd creates the fetch command, which downloads a CX2 network
// from an NDEx server. The argument is either a full network URL or a bare
// UUID resolved against the configured host.
func newFetchCmd() *cobra.Command {
	var (
		output  string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "fetch <network-url-or-uuid>",
		Short: "Download a CX2 network from an NDEx server",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)
			prog := newProgress(logger)

			host, id := cfg.NDEx.Host, args[0]
			if err := ndex.ValidateUUID(id); err != nil {
				h, u, err := ndex.ParseNetworkURL(args[0])
				if err != nil {
					return err
				}
				host, id = h, u
			}

			bc := newByteCache(ctx, cfg)
			defer bc.Close()

			keyer := newKeyer(cfg)
			client := ndex.NewClient(host, ndex.WithCache(bc), ndex.WithKeyer(keyer))
			if refresh {
				_ = bc.Delete(ctx, keyer.NetworkKey(client.Host(), id))
			}
			data, err := client.FetchRaw(ctx, id)
			if err != nil {
				return err
			}

			if output == "" {
				output = id + ".cx2"
			}
			if err := codec.WriteFileAtomic(output, data); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			prog.done(fmt.Sprintf("Fetched %s from %s (%d bytes)", id, host, len(data)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <uuid>.cx2)")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the byte cache")

	return cmd
}
