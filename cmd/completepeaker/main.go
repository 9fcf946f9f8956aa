// Command completepeaker finds chromatographic peak apexes and boundaries
// for batches of traces.
//
// Usage:
//
//	completepeaker run -i input.csv -o output.csv [flags]
//	completepeaker simulate -o synthetic.csv [flags]
//	completepeaker serve [--addr :8080]
//	completepeaker config [--config file.yaml]
//
// Examples:
//
//	completepeaker run -i traces.csv -o bounds.csv --fraction-of-apex 0.1
//	completepeaker run -i traces.csv -o bounds.csv --detailed --db runs.db --plot-dir qc
//	completepeaker simulate -o synthetic.csv --records 20 --seed 7
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-peak/internal/config"
	"github.com/cwbudde/algo-peak/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(nil).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by all subcommands.
type app struct {
	logger  *zap.Logger
	ownLog  bool
	cfgFile string
	verbose bool
	debug   bool
}

// newRootCmd builds the command tree. A nil logger is built from the
// --verbose and --debug flags on each invocation.
func newRootCmd(logger *zap.Logger) *cobra.Command {
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:   "completepeaker",
		Short: "Chromatographic peak apex and boundary finder",
		Long: `completepeaker smooths each trace, locates the apex nearest to the expected
retention time and walks outwards from the inflection points until the
intensity falls below a fraction of the apex height above baseline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.logger != nil && !a.ownLog {
				return nil
			}
			l, err := logging.New(logging.Options{Verbose: a.verbose || a.debug, Console: true})
			if err != nil {
				return err
			}
			a.logger, a.ownLog = l, true
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil && a.ownLog {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML configuration file")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "log descriptive step-by-step progress")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log intermediate boundary calculations")

	root.AddCommand(
		newRunCmd(a),
		newSimulateCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// loadConfig resolves the configuration with cmd's flags on top.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("loading configuration failed: %w", err)
	}
	return cfg, nil
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			out, err := cfg.Dump()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
