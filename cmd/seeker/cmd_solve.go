package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seekerlab/seeker/internal/engine"
	"github.com/seekerlab/seeker/internal/models"
)

func newSolveCommand() *cobra.Command {
	var (
		target       float64
		requireExact bool
		noLearn      bool
	)

	cmd := &cobra.Command{
		Use:   "solve --target N [operand|?]...",
		Short: "Find an equation over the operands that hits the target",
		Long: `Find an arithmetic equation over the given operands whose value equals
or approaches the target.

Operands are numbers; a "?" placeholder is filled from cached solution
history by the diversity selector. The result is cached, so repeated
solves of the same problem are instant.

Examples:
  seeker solve --target 56 1 2 3 55
  seeker solve --target 777 121 6 51
  seeker solve --target 200 ? ?`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return solveE(cmd, args, target, requireExact, noLearn)
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target value to seek")
	cmd.Flags().BoolVar(&requireExact, "exact", false, "Fail unless an exact solution exists")
	cmd.Flags().BoolVar(&noLearn, "no-learn", false, "Skip pattern learning for complex problems")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func solveE(cmd *cobra.Command, args []string, target float64, requireExact, noLearn bool) error {
	operands, err := parseOperands(args)
	if err != nil {
		return err
	}

	eng, _, err := loadEngine()
	if err != nil {
		return err
	}

	rec, err := eng.ResolveAndSolve(cmd.Context(), models.ProblemSpec{
		Target:   target,
		Operands: operands,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSolution(out, rec)

	if !noLearn && engine.IsComplex(target, len(rec.Operands)) {
		pat, hit, err := eng.LearnPattern(cmd.Context(), target, rec.Operands)
		if err != nil {
			return err
		}
		printPattern(out, pat, hit)
	}

	if requireExact && rec.AccuracyPct < 100 {
		return &InexactError{Message: fmt.Sprintf(
			"no exact solution: best is %s = %s (%.2f%%)",
			rec.EquationText, formatValue(rec.ResultValue), rec.AccuracyPct)}
	}
	return nil
}
