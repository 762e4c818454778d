package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/seekerlab/seeker/internal/config"
	"github.com/seekerlab/seeker/internal/engine"
	"github.com/seekerlab/seeker/internal/models"
	"github.com/seekerlab/seeker/internal/patterns"
	"github.com/seekerlab/seeker/internal/store"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seeker",
		Short: "Seeker - target-seeking equation solver with a learning cache",
		Long: `Seeker searches for arithmetic equations that hit (or approach) a numeric
target, remembers every solution it finds, and learns which control-flow
strategy works best for each class of problem.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newSolveCommand())
	cmd.AddCommand(newLearnCommand())
	cmd.AddCommand(newCacheCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}

// loadEngine builds the engine from .seeker.yaml discovered from the
// working directory.
func loadEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, err
	}
	if cfg.Debug != nil && *cfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	tuning := map[string]patterns.Tuning{}
	for name, raw := range cfg.Learning.Variants {
		t, err := patterns.DecodeTuning(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("variant %q: %w", name, err)
		}
		tuning[name] = t
	}

	st := store.Open(cfg.Cache.Path, slog.Default())
	eng, err := engine.New(st, engine.Options{
		Scope: cfg.Cache.Scope,
		Patterns: patterns.Options{
			Workers:         cfg.Learning.Workers,
			VariantTimeout:  time.Duration(cfg.Learning.VariantTimeoutMs) * time.Millisecond,
			VerifyThreshold: cfg.Learning.VerifyThreshold,
			Tuning:          tuning,
		},
	})
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

// parseOperands turns CLI args into operands; "?" marks a placeholder
// to be filled from cached history.
func parseOperands(args []string) ([]models.Operand, error) {
	operands := make([]models.Operand, 0, len(args))
	for _, arg := range args {
		if arg == "?" {
			operands = append(operands, models.UnresolvedOperand())
			continue
		}
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("operand %q is neither a number nor %q", arg, "?")
		}
		operands = append(operands, models.KnownOperand(v))
	}
	return operands, nil
}
