package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackms/prototype-overlap-go/internal/domain/gates"
	"github.com/blackms/prototype-overlap-go/internal/domain/intervals"
	"github.com/blackms/prototype-overlap-go/internal/shared"
)

// GatesCmd is the parent command for gate inspection subcommands.
var GatesCmd = &cobra.Command{
	Use:   "gates",
	Short: "Parse and compare gate specifications",
	Long: `Commands for inspecting gate specifications.

A gate specification may be a plain expression ("threat >= 0.5 AND arousal > 0.3"),
a JSON array of expressions, or a JSON logic object ({"and": [...]}).`,
}

var gatesParseCmd = &cobra.Command{
	Use:   "parse <spec>",
	Short: "Parse a gate specification and print its canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := gates.Parse(decodeSpec(args[0]))
		fmt.Println(result.AST.String())
		if !result.ParseComplete {
			for _, parseErr := range result.Errors {
				fmt.Printf("warning: %v\n", parseErr)
			}
		}
		return nil
	},
}

var gatesNormalizeCmd = &cobra.Command{
	Use:   "normalize <spec>",
	Short: "Parse and normalize a gate specification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := gates.Parse(decodeSpec(args[0]))
		fmt.Println(result.AST.Normalize().String())
		return nil
	},
}

var gatesImpliesCmd = &cobra.Command{
	Use:   "implies <specA> <specB>",
	Short: "Check whether one gate specification implies another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		astA := gates.Parse(decodeSpec(args[0])).AST.Normalize()
		astB := gates.Parse(decodeSpec(args[1])).AST.Normalize()

		forward := gates.CheckImplication(astA, astB)
		backward := gates.CheckImplication(astB, astA)
		fmt.Printf("A implies B: %v (vacuous: %v)\n", forward.Implies, forward.IsVacuous)
		fmt.Printf("B implies A: %v (vacuous: %v)\n", backward.Implies, backward.IsVacuous)

		mapA, okA := gates.ExtractIntervals(astA)
		mapB, okB := gates.ExtractIntervals(astB)
		if okA && okB {
			verdict := intervals.NewEvaluator(nil).Evaluate(mapA, mapB)
			fmt.Printf("Interval relation: %s\n", verdict.Relation)
		}
		return nil
	},
}

// decodeSpec accepts either a JSON document or a plain expression string.
func decodeSpec(arg string) shared.GateSpec {
	var decoded interface{}
	if err := json.Unmarshal([]byte(arg), &decoded); err == nil {
		return decoded
	}
	return arg
}

func init() {
	GatesCmd.AddCommand(gatesParseCmd)
	GatesCmd.AddCommand(gatesNormalizeCmd)
	GatesCmd.AddCommand(gatesImpliesCmd)
}
