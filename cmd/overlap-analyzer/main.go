// Package main provides the CLI entry point for prototype-overlap-go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackms/prototype-overlap-go/cmd/overlap-analyzer/commands"
)

var (
	version = "1.0.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "overlap-analyzer",
	Short: "Prototype overlap analyzer - redundancy detection for gated prototype libraries",
	Long: `Prototype overlap analyzer detects redundant prototypes: pairs whose
gates and weight vectors make them fire together with near-identical
intensities.

It provides:
  - Geometric candidate filtering over weight vectors
  - Monte Carlo behavioral comparison with divergence examples
  - Interval-based gate implication evidence
  - Merge and subsumption recommendations ranked by severity`,
	Version: version,
}

func init() {
	rootCmd.AddCommand(commands.AnalyzeCmd)
	rootCmd.AddCommand(commands.GatesCmd)
}
