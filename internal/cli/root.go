package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the hierkit CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, loads the TOML config, and executes
// the command tree. The logger and config are attached to the context and
// accessible to all commands.
func Execute() error {
	var (
		verbose    bool
		configFile string
	)

	root := &cobra.Command{
		Use:          "hierkit",
		Short:        "hierkit converts, annotates and compares biological hierarchies",
		Long: `hierkit is a toolkit for hierarchical models of biological networks:
nested systems of genes produced by community detection over an interactome.
It converts hierarchies between the HiDeF, DDOT and CX2/HCX formats,
annotates them for web-based hierarchy viewers, and scores how robust each
system is across alternative hierarchies.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cfg, err := loadConfig(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("hierkit %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.config/hierkit/config.toml)")

	root.AddCommand(newConvertCmd())
	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newRobustnessCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newServeCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return root.ExecuteContext(ctx)
}
