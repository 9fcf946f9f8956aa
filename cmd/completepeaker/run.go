package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-peak/internal/batch"
	"github.com/cwbudde/algo-peak/internal/config"
	"github.com/cwbudde/algo-peak/internal/plot"
	"github.com/cwbudde/algo-peak/internal/records"
	"github.com/cwbudde/algo-peak/internal/store"
	"github.com/cwbudde/algo-peak/measure/peak"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Detect peak boundaries for every row of an input CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return a.run(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringP("input", "i", "", "path to input CSV")
	f.StringP("output", "o", "", "path to output CSV")
	f.Float64("rt-half-window", peak.DefaultHalfWindow, "half width of the apex search window around the expected retention time")
	f.Float64("fraction-of-apex", peak.DefaultFractionOfApex, "boundary threshold as a fraction of the apex height above baseline")
	f.Int("max-extension", peak.DefaultMaxExtension, "max samples a boundary may move past its inflection seed")
	f.Int("workers", 0, "concurrent detections (default: number of CPUs)")
	f.Bool("detailed", false, "append apex, baseline, threshold and signal-to-noise columns")
	f.String("db", "", "SQLite database to record the run in")
	f.String("metrics-file", "", "write Prometheus textfile metrics to this path")
	f.String("plot-dir", "", "write one QC chart per detected peak into this directory")
	return cmd
}

func (a *app) run(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Input == "" || cfg.Output == "" {
		return errors.New("both --input and --output are required")
	}
	log := a.logger

	in, err := os.Open(cfg.Input)
	if err != nil {
		return err
	}
	recs, skipped, err := records.Read(in)
	_ = in.Close()
	if err != nil {
		return fmt.Errorf("reading %s failed: %w", cfg.Input, err)
	}
	for _, se := range skipped {
		log.Warn("row skipped", zap.Int("row", se.Row), zap.Error(se.Err))
	}
	log.Info("input loaded", zap.String("path", cfg.Input), zap.Int("records", len(recs)), zap.Int("skipped", len(skipped)))

	metrics := batch.NewMetrics()
	runner := batch.NewRunner(cfg.Params(),
		batch.WithWorkers(cfg.Workers),
		batch.WithLogger(log),
		batch.WithMetrics(metrics),
		batch.WithOutcomeHook(a.outcomeHook(cfg)),
	)

	report, runErr := runner.Run(cmd.Context(), recs)
	if report == nil {
		return runErr
	}

	if err := writeResults(cfg, report); err != nil {
		return err
	}
	log.Info("results written", zap.String("path", cfg.Output), zap.Int("rows", report.Succeeded))

	if cfg.DBPath != "" {
		if err := saveReport(cmd, cfg.DBPath, report); err != nil {
			return err
		}
		log.Info("run recorded", zap.String("db", cfg.DBPath), zap.String("run_id", report.RunID.String()))
	}
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Done. Wrote %d row(s), skipped %d.\n", report.Succeeded, report.Failed+len(skipped))
	return runErr
}

// outcomeHook renders QC charts and logs boundary internals in debug mode.
func (a *app) outcomeHook(cfg *config.Config) func(batch.Outcome) {
	return func(o batch.Outcome) {
		if o.Err != nil {
			return
		}
		if cfg.Debug {
			b := o.Result.Boundary
			a.logger.Debug("boundary calculation",
				zap.Int("row", o.Record.Row),
				zap.Int("seed_left", b.SeedLeft),
				zap.Int("seed_right", b.SeedRight),
				zap.Int("left_index", b.LeftIndex),
				zap.Int("right_index", b.RightIndex),
				zap.Float64("baseline", b.Baseline),
				zap.Float64("threshold", b.Threshold),
				zap.Float64("apex_intensity", b.ApexIntensity),
			)
		}
		if cfg.PlotDir != "" {
			path, err := plot.WriteFile(cfg.PlotDir, o.Record, o.Result)
			if err != nil {
				a.logger.Warn("plot failed", zap.Int("row", o.Record.Row), zap.Error(err))
				return
			}
			a.logger.Debug("plot written", zap.String("path", path))
		}
	}
}

func writeResults(cfg *config.Config, report *batch.Report) (err error) {
	out, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	w, err := records.NewWriter(out, cfg.Detailed)
	if err != nil {
		return err
	}
	for _, o := range report.Outcomes {
		if o.Err != nil {
			continue
		}
		if err := w.Write(records.NewResult(o.Record, o.Result)); err != nil {
			return err
		}
	}
	return w.Flush()
}

func saveReport(cmd *cobra.Command, path string, report *batch.Report) error {
	db, err := store.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return db.SaveReport(cmd.Context(), report)
}
