package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/workshop-sim/sim"
	"github.com/inference-sim/workshop-sim/sim/replicate"
	"github.com/inference-sim/workshop-sim/sim/trace"
)

var (
	// CLI flags for the scenario
	seed              int64    // Seed for arrival, category and service draws
	simulationHorizon int64    // Total simulation time (in minutes)
	arrivalRate       float64  // Vehicle arrivals per minute
	categoryFlags     []string // name=rate pairs; rate may be written as a fraction, e.g. car=1/15
	scenarioName      string   // Preset in the defaults file
	scenarioFile      string   // Standalone scenario YAML, takes precedence over presets
	defaultsFilePath  string   // Path to defaults.yaml

	// CLI flags for output and execution
	logLevel     string // Log verbosity level
	resultsPath  string // File to save metrics JSON to
	eventLog     bool   // Print one line per processed event
	replications int    // Number of independent runs
	parallelism  int    // Replications run concurrently
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "workshop-sim",
	Short: "Discrete-event simulator for a single-bay vehicle workshop",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the workshop simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		cfg, err := buildConfig(cmd.Flags().Changed)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Starting simulation: horizon=%d min, arrival rate=%v/min, categories=%v, seed=%d",
			cfg.Horizon, cfg.ArrivalRate, cfg.Categories, cfg.Seed)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		out := cmd.OutOrStdout()
		if replications > 1 {
			err = runReplications(ctx, cfg, replications, parallelism, out, resultsPath)
		} else {
			err = runSimulation(ctx, cfg, nil, out, eventLog, resultsPath)
		}
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// scenariosCmd lists the presets in the defaults file
var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the scenario presets in the defaults file",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadDefaultsConfig(defaultsFilePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		out := cmd.OutOrStdout()
		for _, name := range cfg.ScenarioNames() {
			sc := cfg.Scenarios[name]
			fmt.Fprintf(out, "%s: horizon=%d min, arrival rate=%v/min, %d categories, seed=%d\n",
				name, sc.Horizon, sc.ArrivalRate, len(sc.Categories), sc.Seed)
		}
	},
}

// referenceScenario is used when no defaults file is available.
func referenceScenario() sim.SimConfig {
	return sim.SimConfig{
		Horizon:     70,
		ArrivalRate: 0.2,
		Seed:        10,
		Categories: []sim.Category{
			{Name: "motorcycle", Rate: 1.0 / 8},
			{Name: "pickup_truck", Rate: 1.0 / 20},
			{Name: "car", Rate: 1.0 / 15},
		},
	}
}

// buildConfig resolves the scenario in order of precedence: explicitly set
// flags, then --scenario-file, then the --scenario preset, then the built-in
// reference scenario. changed reports whether a flag was set on the command line.
func buildConfig(changed func(name string) bool) (sim.SimConfig, error) {
	cfg, err := baseConfig(changed)
	if err != nil {
		return sim.SimConfig{}, err
	}

	// CLI flags override file values
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("horizon") {
		cfg.Horizon = simulationHorizon
	}
	if changed("arrival-rate") {
		cfg.ArrivalRate = arrivalRate
	}
	if changed("category") {
		rates, err := parseCategories(categoryFlags)
		if err != nil {
			return sim.SimConfig{}, err
		}
		cfg.Categories = sim.CategoriesFromRates(rates)
	}

	if err := cfg.Validate(); err != nil {
		return sim.SimConfig{}, err
	}
	return cfg, nil
}

func baseConfig(changed func(name string) bool) (sim.SimConfig, error) {
	if scenarioFile != "" {
		sc, err := sim.LoadScenarioFile(scenarioFile)
		if err != nil {
			return sim.SimConfig{}, err
		}
		logrus.Infof("Loaded scenario from %s", scenarioFile)
		return *sc, nil
	}
	sc, err := GetScenario(scenarioName, defaultsFilePath)
	if err == nil {
		logrus.Infof("Using scenario preset %q from %s", scenarioName, defaultsFilePath)
		return sc, nil
	}
	// A missing defaults file is only fatal when a preset was asked for by name.
	if errors.Is(err, fs.ErrNotExist) && !changed("scenario") && !changed("defaults-filepath") {
		logrus.Infof("No defaults file at %s; using the reference scenario", defaultsFilePath)
		return referenceScenario(), nil
	}
	return sim.SimConfig{}, err
}

// parseCategories turns name=rate pairs into a rate map.
func parseCategories(pairs []string) (map[string]float64, error) {
	rates := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --category %q: expected name=rate", p)
		}
		if _, dup := rates[name]; dup {
			return nil, fmt.Errorf("invalid --category %q: category %q given twice", p, name)
		}
		r, err := parseRate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --category %q: %w", p, err)
		}
		rates[name] = r
	}
	return rates, nil
}

// parseRate accepts a decimal ("0.125") or a fraction ("1/8").
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	num, den, isFrac := strings.Cut(s, "/")
	if !isFrac {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("rate %q divides by zero", s)
	}
	return n / d, nil
}

// runSimulation runs one simulation and writes the event log and statistics
// to w. src may be nil to draw from the seeded generator.
func runSimulation(ctx context.Context, cfg sim.SimConfig, src sim.Source, w io.Writer, withEventLog bool, resultsPath string) error {
	level := trace.TraceLevelNone
	if withEventLog {
		level = trace.TraceLevelEvents
	}
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	s, err := sim.NewSimulator(cfg, src, tr)
	if err != nil {
		return err
	}
	if err := s.Run(ctx); err != nil {
		return err
	}

	if withEventLog {
		for _, ev := range tr.Events {
			fmt.Fprintln(w, ev.Line())
		}
		ts := trace.Summarize(tr)
		logrus.Debugf("Trace: %d events, %d arrivals, %d departures", ts.TotalEvents, ts.Arrivals, ts.Departures)
	}
	s.Metrics.Print(w)

	if resultsPath != "" {
		return s.Metrics.SaveResults(resultsPath)
	}
	return nil
}

// runReplications runs n seeds of cfg and writes a summary to w.
func runReplications(ctx context.Context, cfg sim.SimConfig, n, par int, w io.Writer, resultsPath string) error {
	results, err := replicate.Run(ctx, cfg, n, par)
	if err != nil {
		return err
	}
	sum := replicate.Summarize(results)
	printSummary(w, sum)
	if resultsPath == "" {
		return nil
	}
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(resultsPath, data, 0644); err != nil {
		return fmt.Errorf("writing summary to %s: %w", resultsPath, err)
	}
	logrus.Infof("Replication summary written to %s", resultsPath)
	return nil
}

func printSummary(w io.Writer, sum replicate.Summary) {
	fmt.Fprintf(w, "Replications: %d\n", sum.Replications)
	fmt.Fprintf(w, "Served vehicles: mean %.2f, stddev %.2f\n", sum.MeanServed, sum.StdDevServed)
	if sum.Degenerate == sum.Replications {
		fmt.Fprintln(w, "Average waiting time: undefined (no vehicles served in any replication)")
	} else {
		fmt.Fprintf(w, "Average waiting time: mean %.2f min, stddev %.2f min\n", sum.MeanAverageWait, sum.StdDevAverageWait)
	}
	if sum.Degenerate > 0 {
		fmt.Fprintf(w, "Replications with no vehicle served: %d\n", sum.Degenerate)
	}
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Registers flags and subcommands
func init() {
	ref := referenceScenario()

	runCmd.Flags().Int64Var(&seed, "seed", ref.Seed, "Seed for arrival, category and service draws")
	runCmd.Flags().Int64Var(&simulationHorizon, "horizon", ref.Horizon, "Total simulation horizon (in minutes)")
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", ref.ArrivalRate, "Vehicle arrivals per minute")
	runCmd.Flags().StringArrayVar(&categoryFlags, "category", nil, "Vehicle category as name=rate (services per minute, e.g. car=1/15); repeatable")
	runCmd.Flags().StringVar(&scenarioName, "scenario", "workshop", "Scenario preset in the defaults file")
	runCmd.Flags().StringVar(&scenarioFile, "scenario-file", "", "Path to a scenario YAML file; overrides --scenario")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "File to save metrics JSON to")
	runCmd.Flags().BoolVar(&eventLog, "event-log", true, "Print one line per processed event")
	runCmd.Flags().IntVar(&replications, "replications", 1, "Number of independent runs with consecutive seeds")
	runCmd.Flags().IntVar(&parallelism, "parallelism", 4, "Replications run concurrently")

	rootCmd.PersistentFlags().StringVar(&defaultsFilePath, "defaults-filepath", "defaults.yaml", "Path to default scenario presets")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scenariosCmd)
}
