package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seekerlab/seeker/internal/models"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the solution and pattern cache",
		Long: `Manage the persistent cache of solved equations and learned patterns.

The cache is a single JSON file (default .seeker-cache.json) keyed by
scope, target, and operand signature. Every solve writes through to it,
so nothing is lost on a crash.`,
	}

	cmd.AddCommand(newCacheShowCommand())
	cmd.AddCommand(newCacheStatsCommand())
	cmd.AddCommand(newCacheImproveCommand())
	cmd.AddCommand(newCacheExportCommand())
	cmd.AddCommand(newCacheImportCommand())
	cmd.AddCommand(newCacheClearCommand())

	return cmd
}

func newCacheShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List cached solutions and patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSolutionTable(out, eng.Store().Solutions())
			printPatternTable(out, eng.Store().Patterns())
			return nil
		},
	}
}

func newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cfg, err := loadEngine()
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), cfg.Cache.Path, eng.Store().Summarize(), eng.MemoryStats())
			return nil
		},
	}
}

func newCacheImproveCommand() *cobra.Command {
	var (
		target   float64
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "improve --target N operand...",
		Short: "Re-run a cached search and keep the best result",
		Long: `Re-run the equation search for an already cached problem up to the
configured number of attempts, keeping whichever result has the highest
accuracy (ties broken by discovery time). Reports a bootstrap confidence
interval over the attempts' accuracy.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cacheImproveE(cmd, args, target, attempts)
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target of the cached problem")
	cmd.Flags().IntVar(&attempts, "attempts", 0, "Number of attempts (default from config)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func cacheImproveE(cmd *cobra.Command, args []string, target float64, attempts int) error {
	operands, err := parseOperands(args)
	if err != nil {
		return err
	}
	values := make([]float64, 0, len(operands))
	for _, op := range operands {
		if !op.Known {
			return fmt.Errorf("improve takes concrete operands, not %q placeholders", "?")
		}
		values = append(values, op.Value)
	}

	eng, cfg, err := loadEngine()
	if err != nil {
		return err
	}
	if attempts <= 0 {
		attempts = cfg.Improve.Attempts
	}

	key := models.NewCacheKey(cfg.Cache.Scope, target, values)
	rec, ci, err := eng.Improve(key, attempts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSolution(out, rec)
	fmt.Fprintf(out, "Accuracy over %d attempts: mean %.2f%% (95%% CI %.2f–%.2f)\n",
		attempts, ci.Mean, ci.Lower, ci.Upper)
	return nil
}

func newCacheExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write a compressed cache snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine()
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating archive: %w", err)
			}
			defer f.Close() //nolint:errcheck

			if err := eng.Store().ExportArchive(f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache exported: %s\n", args[0])
			return nil
		},
	}
}

func newCacheImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge a cache snapshot into the local cache",
		Long: `Merge a snapshot produced by "seeker cache export". Solutions merge
under the replace-only-if-better rule; local records that beat the
snapshot's are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := loadEngine()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}
			defer f.Close() //nolint:errcheck

			merged, err := eng.Store().ImportArchive(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Merged %d records from %s\n", merged, args[0])
			return nil
		},
	}
}

func newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached solution and pattern",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, cfg, err := loadEngine()
			if err != nil {
				return err
			}
			if err := eng.Store().Clear(); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared: %s\n", cfg.Cache.Path)
			return nil
		},
	}
}
