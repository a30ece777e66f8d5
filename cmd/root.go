package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/banksim/banksim/sim"
	"github.com/banksim/banksim/sim/recorder"
	"github.com/banksim/banksim/sim/sector"
	"github.com/banksim/banksim/sim/trace"
)

var (
	presetName string // Named policy preset
	configPath string // YAML override file
	seed       int64  // Master seed
	cycles     int    // Number of settlement cycles
	numBanks   int    // Number of banks
	workers    int    // Per-phase fan-out width (0 = one per CPU)
	logLevel   string // Log verbosity level
	dbPath     string // SQLite database for run results
	traceLevel string // Decision trace level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "banksim",
	Short: "Agent-based simulator of a banking sector under liquidity and capital regulation",
}

// runCmd executes the simulation using the preset, the YAML overrides and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the banking-sector simulation",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s (valid: none, banks)", traceLevel)
		}

		var rec recorder.Recorder
		if dbPath != "" {
			sqlRec, err := recorder.NewSQLiteRecorder(dbPath)
			if err != nil {
				logrus.Fatalf("Failed to open results database: %v", err)
			}
			defer func() {
				if err := sqlRec.Close(); err != nil {
					logrus.Warnf("closing results database: %v", err)
				}
			}()
			rec = sqlRec
		}

		s, err := sector.NewSector(cfg, sector.Options{
			Workers:    workers,
			TraceLevel: trace.TraceLevel(traceLevel),
			Recorder:   rec,
		})
		if err != nil {
			logrus.Fatalf("Failed to build sector: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		startTime := time.Now()
		if err := s.Run(ctx); err != nil {
			logrus.Errorf("Simulation aborted: %v", err)
		}
		s.Metrics().Print()
		if s.Trace().Enabled() {
			printTraceSummary(os.Stdout, trace.Summarize(s.Trace()), s.Catalog())
		}
		if id := s.RunID(); id != "" {
			logrus.Infof("Results recorded in %s as run %s", dbPath, id)
		}

		logrus.Infof("Simulation complete in %s.", time.Since(startTime).Round(time.Millisecond))
	},
}

// resolveConfig builds the run configuration: the preset first, then the
// YAML overrides, then every flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (sim.Config, error) {
	flags := cmd.Flags()
	name := presetName

	var overrides *sim.ConfigOverrides
	if configPath != "" {
		o, err := sim.LoadConfigOverrides(configPath)
		if err != nil {
			return sim.Config{}, err
		}
		overrides = o
		// An explicit --preset beats the preset named in the file.
		if !flags.Changed("preset") && o.Preset != "" {
			name = o.Preset
		}
	}

	cfg, err := sim.PresetConfig(name)
	if err != nil {
		return sim.Config{}, err
	}
	cfg = overrides.Apply(cfg)

	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("cycles") {
		cfg.Cycles = cycles
	}
	if flags.Changed("banks") {
		cfg.NumBanks = numBanks
	}

	if err := cfg.Validate(); err != nil {
		return sim.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// printTraceSummary writes the decision-trace summary and the most chosen
// strategies to w.
func printTraceSummary(w io.Writer, ts *trace.TraceSummary, catalog *sim.Catalog) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Bank Cycles          : %d\n", ts.BankCycles)
	fmt.Fprintf(w, "Insolvent Cycles     : %d\n", ts.InsolventCycles)
	fmt.Fprintf(w, "Mean ROE             : %.4f\n", ts.MeanROE)
	fmt.Fprintf(w, "Liquidations         : %d\n", ts.Liquidations)
	if ts.Liquidations > 0 {
		fmt.Fprintf(w, "Mean Payout Ratio    : %.4f\n", ts.MeanPayoutRatio)
		fmt.Fprintf(w, "Depositor Loss       : %.4f\n", ts.TotalDepositLoss)
		fmt.Fprintf(w, "Insurance Outlay     : %.4f\n", ts.TotalInsurance)
	}

	type choice struct{ index, count int }
	choices := make([]choice, 0, len(ts.StrategyDistribution))
	for i, n := range ts.StrategyDistribution {
		choices = append(choices, choice{i, n})
	}
	sort.Slice(choices, func(i, j int) bool {
		if choices[i].count != choices[j].count {
			return choices[i].count > choices[j].count
		}
		return choices[i].index < choices[j].index
	})
	if len(choices) > topStrategies {
		choices = choices[:topStrategies]
	}
	if len(choices) > 0 {
		fmt.Fprintln(w, "Most Chosen Strategies:")
		for _, c := range choices {
			fmt.Fprintf(w, "  %-28s %d\n", catalog.At(c.index), c.count)
		}
	}
}

const topStrategies = 5

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags of cmd to the package-level flag variables.
func registerRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&presetName, "preset", sim.PresetHighSpread, fmt.Sprintf("Policy preset (%v)", sim.PresetNames()))
	cmd.Flags().StringVar(&configPath, "config", "", "YAML file of configuration overrides")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for every random stream")
	cmd.Flags().IntVar(&cycles, "cycles", 100, "Number of settlement cycles")
	cmd.Flags().IntVar(&numBanks, "banks", 50, "Number of banks")
	cmd.Flags().IntVar(&workers, "workers", 0, "Banks processed in parallel per phase (0 = one per CPU)")
	cmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to record the run in (empty = no recording)")
	cmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, banks)")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(presetsCmd)
}
