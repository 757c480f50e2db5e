// Package commands provides CLI command implementations.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appOverlap "github.com/blackms/prototype-overlap-go/internal/application/overlap"
	"github.com/blackms/prototype-overlap-go/internal/infrastructure/config"
	"github.com/blackms/prototype-overlap-go/internal/infrastructure/registry"
	"github.com/blackms/prototype-overlap-go/internal/shared"
	"github.com/blackms/prototype-overlap-go/pkg/overlap"
)

// Flag variables for the analyze command
var (
	analyzeConfigPath string
	analyzeSource     string
	analyzeInput      string
	analyzeFamily     string
	analyzeSamples    int
	analyzeSeed       int64
	analyzeFormat     string
	analyzeProgress   bool
)

// AnalyzeCmd runs the full overlap analysis pipeline.
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a prototype family for redundant pairs",
	Long: `Run the full overlap analysis pipeline against a prototype family.

Prototypes are read from a JSON file (--source memory --input file.json),
a SQLite database (--source sqlite), or PostgreSQL (--source postgres).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(analyzeConfigPath)
		if err != nil {
			return err
		}
		if analyzeSource != "" {
			cfg.Registry.Source = analyzeSource
		}
		if analyzeSeed != 0 {
			cfg.Sampling.Seed = analyzeSeed
		}

		reg, cleanup, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		analyzer, err := overlap.NewAnalyzer(cfg.Pipeline, overlap.AnalyzerOptions{
			Registry: reg,
			Axes:     cfg.Sampling.Axes,
			Seed:     cfg.Sampling.Seed,
		})
		if err != nil {
			return err
		}

		opts := overlap.AnalyzeOptions{
			PrototypeFamily: analyzeFamily,
			SampleCount:     analyzeSamples,
		}
		if analyzeProgress {
			opts.OnProgress = printProgress
		}

		result, err := analyzer.Analyze(opts)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}

		switch analyzeFormat {
		case "json":
			return printJSON(result)
		case "table":
			return printTable(result)
		default:
			return fmt.Errorf("unknown output format %q (want json or table)", analyzeFormat)
		}
	},
}

func buildRegistry(cfg config.FileConfig) (shared.Registry, func(), error) {
	noop := func() {}
	switch cfg.Registry.Source {
	case "memory":
		if analyzeInput == "" {
			return nil, noop, fmt.Errorf("--input is required with --source memory")
		}
		raw, err := os.ReadFile(analyzeInput)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to read %s: %w", analyzeInput, err)
		}
		var prototypes []*shared.Prototype
		if err := json.Unmarshal(raw, &prototypes); err != nil {
			return nil, noop, fmt.Errorf("failed to parse %s: %w", analyzeInput, err)
		}
		reg := registry.NewMemoryRegistry()
		reg.RegisterAll(prototypes)
		return reg, noop, nil

	case "sqlite":
		reg, err := registry.NewSQLiteRegistry(cfg.Registry.SQLite)
		if err != nil {
			return nil, noop, err
		}
		return reg, func() { reg.Close() }, nil

	case "postgres":
		reg := registry.NewPostgresRegistry(cfg.Registry.Postgres)
		if err := reg.Connect(context.Background()); err != nil {
			return nil, noop, err
		}
		return reg, func() { reg.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown registry source %q (want memory, sqlite, or postgres)", cfg.Registry.Source)
	}
}

func printProgress(stage appOverlap.Stage, data appOverlap.ProgressData) {
	switch stage {
	case appOverlap.StageEvaluating:
		fmt.Fprintf(os.Stderr, "[%d/%d] %s pair %d/%d sample %d/%d\n",
			data.StageNumber, data.TotalStages, stage,
			data.PairIndex, data.PairTotal, data.SampleIndex, data.SampleTotal)
	default:
		fmt.Fprintf(os.Stderr, "[%d/%d] %s %d/%d\n",
			data.StageNumber, data.TotalStages, stage, data.Current, data.Total)
	}
}

func printJSON(result *overlap.AnalysisResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printTable(result *overlap.AnalysisResult) error {
	meta := result.Metadata
	fmt.Printf("Run %s (family=%s, mode=%s)\n", meta.RunID, meta.PrototypeFamily, meta.AnalysisMode)
	fmt.Printf("Prototypes: %d  Candidates: %d found / %d evaluated  Redundant: %d\n\n",
		meta.TotalPrototypes, meta.CandidatePairsFound, meta.CandidatePairsEvaluated, meta.RedundantPairsFound)

	if len(result.Recommendations) == 0 {
		fmt.Println("No redundant pairs found.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PAIR\tACTION\tSEVERITY\tREASON")
		for _, rec := range result.Recommendations {
			fmt.Fprintf(w, "%s / %s\t%s\t%.2f\t%s\n",
				rec.PrototypeA, rec.PrototypeB, rec.Action, rec.Severity, rec.Reason)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if result.AxisGapAnalysis != nil && len(result.AxisGapAnalysis.Gaps) > 0 {
		fmt.Printf("\nLow-coverage axes (floor %.2f):\n", result.AxisGapAnalysis.CoverageFloor)
		for _, gap := range result.AxisGapAnalysis.Gaps {
			fmt.Printf("  %s: %.0f%% (%d prototypes)\n", gap.Axis, gap.CoverageRate*100, gap.Prototypes)
		}
	}
	return nil
}

func init() {
	AnalyzeCmd.Flags().StringVarP(&analyzeConfigPath, "config", "c", "", "Path to YAML configuration file")
	AnalyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "Registry source: memory, sqlite, or postgres (default from config)")
	AnalyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "JSON file of prototypes (memory source)")
	AnalyzeCmd.Flags().StringVarP(&analyzeFamily, "family", "f", "emotion", "Prototype family to analyze")
	AnalyzeCmd.Flags().IntVarP(&analyzeSamples, "samples", "n", 0, "Samples per pair (0 uses the configured budget)")
	AnalyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "Random seed (0 uses the configured seed)")
	AnalyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "o", "table", "Output format: json or table")
	AnalyzeCmd.Flags().BoolVar(&analyzeProgress, "progress", false, "Print stage progress to stderr")
}
