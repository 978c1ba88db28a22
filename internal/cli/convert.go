package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cellmaps/hierkit/pkg/codec/ddot"
	hkerrors "github.com/cellmaps/hierkit/pkg/errors"
	"github.com/cellmaps/hierkit/pkg/hcx"
	"github.com/cellmaps/hierkit/pkg/interactome"
)

// convertOpts holds the command-line flags for the convert command.
type convertOpts struct {
	network string // interactome file resolving HiDeF members
}

// newConvertCmd creates the convert command. Input and output formats are
// detected from the file extensions (.nodes for HiDeF, .ont for DDOT,
// .cx2 for CX2/HCX).
func newConvertCmd() *cobra.Command {
	var opts convertOpts

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a hierarchy between HiDeF, DDOT and CX2 formats",
		Long: `Convert a hierarchy between formats, detected from file extensions.

Examples:
  hierkit convert result.nodes hierarchy.cx2             # HiDeF to CX2
  hierkit convert hierarchy.cx2 model.ont                # CX2 to DDOT
  hierkit convert --network edges.tsv result.nodes h.cx2 # validate members`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runConvert(c, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.network, "network", "", "interactome edge list used to resolve gene members")

	cmd.AddCommand(newConvertNetworkCmd())
	return cmd
}

func runConvert(c *cobra.Command, opts convertOpts, input, output string) error {
	logger := loggerFromContext(c.Context())
	prog := newProgress(logger)

	var net *interactome.Network
	if opts.network != "" {
		n, err := ddot.LoadInteractome(opts.network)
		if err != nil {
			return fmt.Errorf("load interactome: %w", err)
		}
		net = n
		logger.Debug("loaded interactome", "nodes", net.NodeCount(), "edges", net.EdgeCount())
	}

	in, err := hierarchyCodec(input, net)
	if err != nil {
		return err
	}
	out, err := hierarchyCodec(output, net)
	if err != nil {
		return err
	}

	h, err := in.Load(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}
	if err := h.Validate(); err != nil {
		return hkerrors.Wrap(hkerrors.ErrCodeMalformedHierarchy, err, "validate %s", input)
	}
	if err := out.Save(h, output); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}

	prog.done(fmt.Sprintf("Converted %d systems (%s to %s)", h.NodeCount(), in.Name(), out.Name()))
	return nil
}

// newConvertNetworkCmd creates the "convert network" subcommand for
// interactome edge lists, which are not hierarchies and so bypass the
// hierarchy codecs.
func newConvertNetworkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "network <input> <output>",
		Short: "Convert an interactome between edge-list and CX2 formats",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			input, output := args[0], args[1]
			logger := loggerFromContext(c.Context())

			net, err := loadNetwork(input)
			if err != nil {
				return fmt.Errorf("load %s: %w", input, err)
			}
			if err := saveNetwork(net, output); err != nil {
				return fmt.Errorf("save %s: %w", output, err)
			}
			logger.Info("Converted interactome", "nodes", net.NodeCount(), "edges", net.EdgeCount())
			return nil
		},
	}
}

func loadNetwork(path string) (*interactome.Network, error) {
	if (&hcx.Codec{}).Supports(path) {
		return hcx.LoadInteractome(path)
	}
	return ddot.LoadInteractome(path)
}

func saveNetwork(net *interactome.Network, path string) error {
	if (&hcx.Codec{}).Supports(path) {
		return hcx.SaveInteractome(net, path)
	}
	return ddot.SaveInteractome(net, path)
}
