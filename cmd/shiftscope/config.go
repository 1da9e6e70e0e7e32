package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/shiftscope/internal/bench"
	"github.com/verte-zerg/shiftscope/internal/config"
	"github.com/verte-zerg/shiftscope/internal/model"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntsConfig(cmd *cobra.Command, name string, target *[]int, value []int) {
	if len(value) == 0 || cmd.Flags().Changed(name) {
		return
	}
	*target = append([]int(nil), value...)
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# shiftscope configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# top = %d                # Candidate rows to show (0 for all)
# normalize = %t        # Show score ratios relative to the best key
# plot = false            # Plot chi-square scores of every key
# fold = false            # Fold diacritics before stripping non-letters
# workers = 0             # Keys scored in parallel (0 for one per CPU)
# tables = "english"      # Frequency table file or name under %s
# save = false            # Record every analysis in history

[bench]
# lengths = %s
# trials = %d
# wordlist = ""           # One word per line; default is the built-in sample text
`,
		defaultTop,
		defaultNormalize,
		config.DefaultTablesDir(),
		formatInts(bench.DefaultLengths),
		bench.DefaultTrials,
	)
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func validateAnalyzeConfig(cfg model.AnalyzeConfig) error {
	if cfg.Top < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}

func validateBenchConfig(cfg model.BenchConfig) error {
	if len(cfg.Lengths) == 0 {
		return fmt.Errorf("--lengths must not be empty")
	}
	for _, n := range cfg.Lengths {
		if n < 2 {
			return fmt.Errorf("--lengths values must be >= 2, got %d", n)
		}
	}
	if cfg.Trials <= 0 {
		return fmt.Errorf("--trials must be > 0")
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}
