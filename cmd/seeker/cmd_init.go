package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/seekerlab/seeker/internal/config"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a .seeker.yaml configuration file",
		Long: `Run a guided wizard that collects cache and learning settings and writes
a .seeker.yaml configuration file.

If no directory is specified, the current directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: initCommandE,
	}
	return cmd
}

func initCommandE(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	cfg, err := runConfigWizard(cmd)
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	path := filepath.Join(dir, ".seeker.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Initialized configuration:") //nolint:errcheck
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", path)                //nolint:errcheck
	return nil
}

// runConfigWizard runs an interactive huh form to collect settings.
func runConfigWizard(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()

	var (
		cachePath  = cfg.Cache.Path
		scope      = cfg.Cache.Scope
		workersRaw = strconv.Itoa(cfg.Learning.Workers)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cache file").
				Description("Path of the JSON cache file").
				Placeholder(config.DefaultCachePath).
				Value(&cachePath),
			huh.NewInput().
				Title("Cache scope").
				Description("Scope name cache keys are created under").
				Placeholder(config.DefaultScope).
				Value(&scope),
			huh.NewInput().
				Title("Learning workers").
				Description("How many strategy variants run concurrently").
				Placeholder(strconv.Itoa(config.DefaultWorkers)).
				Value(&workersRaw).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("workers must be a positive integer")
					}
					return nil
				}),
		),
	).
		WithInput(cmd.InOrStdin()).
		WithOutput(cmd.OutOrStdout())

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := cmd.InOrStdin().(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, err
	}

	cfg.Cache.Path = cachePath
	cfg.Cache.Scope = scope
	if n, err := strconv.Atoi(workersRaw); err == nil {
		cfg.Learning.Workers = n
	}
	return cfg, nil
}
