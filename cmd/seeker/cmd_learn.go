package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLearnCommand() *cobra.Command {
	var target float64

	cmd := &cobra.Command{
		Use:   "learn --target N operand...",
		Short: "Run a pattern learning round for a problem class",
		Long: `Race the control-flow strategy variants against each other for the given
problem, score them, and cache the winner under the problem's profile
signature.

Later solves of similar problems reuse the cached winner instead of
racing a fresh round. A cached winner that fails its verification probe
is relearned automatically.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return learnE(cmd, args, target)
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target value to seek")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func learnE(cmd *cobra.Command, args []string, target float64) error {
	operands, err := parseOperands(args)
	if err != nil {
		return err
	}
	inputs := make([]float64, 0, len(operands))
	for _, op := range operands {
		if !op.Known {
			return fmt.Errorf("learn takes concrete operands, not %q placeholders", "?")
		}
		inputs = append(inputs, op.Value)
	}

	eng, _, err := loadEngine()
	if err != nil {
		return err
	}

	rec, hit, err := eng.LearnPattern(cmd.Context(), target, inputs)
	if err != nil {
		return err
	}
	printPattern(cmd.OutOrStdout(), rec, hit)
	return nil
}
