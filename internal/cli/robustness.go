package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cellmaps/hierkit/pkg/hierdiff"
)

// robustnessOpts holds the command-line flags for the robustness command.
type robustnessOpts struct {
	threshold float64
	workers   int
	output    string
}

// newRobustnessCmd creates the robustness command. The reference hierarchy
// is scored against every alternative; each system's robustness is the
// fraction of alternatives containing a matching system.
func newRobustnessCmd() *cobra.Command {
	var opts robustnessOpts

	cmd := &cobra.Command{
		Use:   "robustness <reference> <alternative>...",
		Short: "Score systems against alternative hierarchies",
		Long: `Score every system of a reference hierarchy by how often it reappears
in alternative hierarchies, typically produced by bootstrapped community
detection runs. A system counts as reappearing in an alternative when some
system there has a Jaccard similarity at or above the threshold.

Globs are expanded by the shell:
  hierkit robustness result.nodes boot/*.nodes -o scored.cx2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runRobustness(c, opts, args[0], args[1:])
		},
	}

	cmd.Flags().Float64VarP(&opts.threshold, "threshold", "t", 0, "Jaccard match threshold (default from config)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "parallel workers (default: number of CPUs)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the annotated hierarchy to this file")

	return cmd
}

func runRobustness(c *cobra.Command, opts robustnessOpts, refPath string, altPaths []string) error {
	ctx := c.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	prog := newProgress(logger)

	threshold := opts.threshold
	if threshold <= 0 {
		threshold = cfg.Threshold
	}
	workers := opts.workers
	if workers <= 0 {
		workers = cfg.Workers
	}

	codec, err := hierarchyCodec(refPath, nil)
	if err != nil {
		return err
	}

	result, err := hierdiff.RobustnessFromFiles(ctx, codec, refPath, altPaths, hierdiff.Options{
		Threshold: threshold,
		Workers:   workers,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if len(result.Skipped) > 0 {
		logger.Warn("some alternatives were skipped",
			"skipped", len(result.Skipped), "requested", result.Requested)
	}

	if opts.output != "" {
		out, err := hierarchyCodec(opts.output, nil)
		if err != nil {
			return err
		}
		if err := out.Save(result.Hierarchy, opts.output); err != nil {
			return fmt.Errorf("save %s: %w", opts.output, err)
		}
	} else {
		printScores(c, result)
	}

	prog.done(fmt.Sprintf("Scored %d systems against %d alternatives",
		result.Hierarchy.NodeCount(), result.EffectiveN))
	return nil
}

func printScores(c *cobra.Command, result *hierdiff.Result) {
	h := result.Hierarchy
	for _, id := range h.NodeIDs() {
		n, _ := h.Node(id)
		score, _ := n.Attr[hierdiff.AttrRobustness].(float64)
		fmt.Fprintf(c.OutOrStdout(), "%s\t%.3f\n", id, score)
	}
}

// newDiffCmd creates the diff command: a pairwise comparison writing each
// reference system's best Jaccard similarity, with no threshold applied.
func newDiffCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "diff <reference> <alternative>",
		Short: "Compare two hierarchies system by system",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			refPath, altPath := args[0], args[1]

			refCodec, err := hierarchyCodec(refPath, nil)
			if err != nil {
				return err
			}
			altCodec, err := hierarchyCodec(altPath, nil)
			if err != nil {
				return err
			}

			ref, err := refCodec.Load(refPath)
			if err != nil {
				return fmt.Errorf("load %s: %w", refPath, err)
			}
			alt, err := altCodec.Load(altPath)
			if err != nil {
				return fmt.Errorf("load %s: %w", altPath, err)
			}

			hierdiff.Compare(ref, alt)

			if output != "" {
				out, err := hierarchyCodec(output, nil)
				if err != nil {
					return err
				}
				return out.Save(ref, output)
			}
			for _, id := range ref.NodeIDs() {
				n, _ := ref.Node(id)
				score, _ := n.Attr[hierdiff.AttrRobustness].(float64)
				fmt.Fprintf(c.OutOrStdout(), "%s\t%.3f\n", id, score)
			}
			loggerFromContext(c.Context()).Debug("compared hierarchies",
				"reference", filepath.Base(refPath), "alternative", filepath.Base(altPath))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the annotated reference to this file")
	return cmd
}
