package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cellmaps/hierkit/pkg/hcx"
	"github.com/cellmaps/hierkit/pkg/interactome"
	"github.com/cellmaps/hierkit/pkg/ndex"
)

// annotateOpts holds the command-line flags for the annotate command.
type annotateOpts struct {
	parentURL  string // NDEx URL of the parent interactome
	parentFile string // local interactome file (edge list or CX2)
	parentName string // name recorded for a local parent network
	output     string // output path (in-place if empty)
}

// newAnnotateCmd creates the annotate command, which adds the HCX
// annotations hierarchy viewers need: the link to the parent interactome,
// per-system gene memberships, and root markers.
func newAnnotateCmd() *cobra.Command {
	var opts annotateOpts

	cmd := &cobra.Command{
		Use:   "annotate <hierarchy.cx2>",
		Short: "Add HCX annotations linking a hierarchy to its interactome",
		Long: `Annotate a CX2 hierarchy for web-based hierarchy viewers.

The parent interactome is either a network on an NDEx server (--parent-url)
or a local file (--parent-file); exactly one must be given. Gene members of
every system are recorded as interactome node handles, and root systems are
marked so viewers can orient the model.

Examples:
  hierkit annotate h.cx2 --parent-url https://www.ndexbio.org/viewer/networks/<uuid>
  hierkit annotate h.cx2 --parent-file interactome.tsv -o annotated.cx2`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runAnnotate(c.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.parentURL, "parent-url", "", "NDEx network URL of the parent interactome")
	cmd.Flags().StringVar(&opts.parentFile, "parent-file", "", "local parent interactome file")
	cmd.Flags().StringVar(&opts.parentName, "name", "", "display name for a local parent network")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (overwrites input if empty)")

	return cmd
}

func runAnnotate(ctx context.Context, opts annotateOpts, input string) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	prog := newProgress(logger)

	hcodec := &hcx.Codec{}
	h, err := hcodec.Load(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	var (
		net  *interactome.Network
		link hcx.Linkage
	)
	switch {
	case opts.parentURL != "":
		host, id, err := ndex.ParseNetworkURL(opts.parentURL)
		if err != nil {
			return err
		}
		bc := newByteCache(ctx, cfg)
		defer bc.Close()
		client := ndex.NewClient(host, ndex.WithCache(bc), ndex.WithKeyer(newKeyer(cfg)))

		logger.Debug("fetching parent interactome", "host", host, "uuid", id)
		net, err = client.FetchInteractome(ctx, id)
		if err != nil {
			return err
		}
		link = hcx.Linkage{Host: host, UUID: id}
	case opts.parentFile != "":
		net, err = loadNetwork(opts.parentFile)
		if err != nil {
			return fmt.Errorf("load parent network: %w", err)
		}
		output := opts.output
		if output == "" {
			output = input
		}
		link = hcx.Linkage{Interactome: net, OutputDir: outputDir(output), LocalName: opts.parentName}
	}

	if err := hcx.Annotate(h, net, link); err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = input
	}
	if err := hcodec.Save(h, output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}

	prog.done(fmt.Sprintf("Annotated %d systems", h.NodeCount()))
	return nil
}

func outputDir(path string) string {
	return filepath.Dir(path)
}
