package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/shiftscope/internal/bench"
	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/config"
	"github.com/verte-zerg/shiftscope/internal/corpus"
	"github.com/verte-zerg/shiftscope/internal/explorer"
	"github.com/verte-zerg/shiftscope/internal/freq"
	"github.com/verte-zerg/shiftscope/internal/model"
	"github.com/verte-zerg/shiftscope/internal/report"
	"github.com/verte-zerg/shiftscope/internal/store"
)

var (
	shiftKey      string
	shiftPreserve bool
	shiftFold     bool

	exploreFold   bool
	exploreTables string

	historyLabel string
	historySince string
	historyLast  int
	historyTop   int

	tablesPath         string
	tablesShowBigrams  int
	tablesBuildBigrams int
	tablesOut          string
	tablesName         string
	tablesForce        bool

	benchLengths  []int
	benchTrials   int
	benchSeed     int64
	benchWordlist string
	benchWorkers  int
	benchTables   string
)

func newEncryptCmd() *cobra.Command {
	return newShiftCmd("encrypt", "Shift text forward by a key", false)
}

func newDecryptCmd() *cobra.Command {
	return newShiftCmd("decrypt", "Shift text back by a key", true)
}

func newShiftCmd(use, short string, inverse bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [text...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShiftCmd(cmd, args, inverse)
		},
	}
	cmd.Flags().StringVarP(&shiftKey, "key", "k", "", "key as a number (3) or a letter (D)")
	cmd.Flags().BoolVar(&shiftPreserve, "preserve", false, "keep case, spacing and punctuation")
	cmd.Flags().BoolVar(&shiftFold, "fold", false, "fold diacritics before stripping non-letters")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}

func runShiftCmd(cmd *cobra.Command, args []string, inverse bool) error {
	key, err := cipher.ParseKey(shiftKey)
	if err != nil {
		return fmt.Errorf("invalid --key: %w", err)
	}
	if inverse {
		key = key.Inverse()
	}
	raw := strings.Join(args, " ")
	if len(args) == 0 {
		raw, err = readStdin(cmd)
		if err != nil {
			return err
		}
	}

	var out string
	if shiftPreserve {
		out = cipher.ShiftPreserving(raw, key)
	} else {
		text, err := sanitizeInput(raw, shiftFold)
		if err != nil {
			return err
		}
		out = cipher.Shift(text, key)
	}
	logger.Debug("shifted text", zap.Int("key", int(key)), zap.Int("bytes", len(out)))
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(out, "\n")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Browse candidate keys interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runExploreCmd,
	}
	cmd.Flags().BoolVar(&exploreFold, "fold", false, "fold diacritics before stripping non-letters")
	cmd.Flags().StringVar(&exploreTables, "tables", "", "frequency table file or name (default: built-in English)")
	return cmd
}

func runExploreCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyBoolConfig(cmd, "fold", &exploreFold, fileCfg.Analyze.Fold)
	applyStringConfig(cmd, "tables", &exploreTables, fileCfg.Analyze.Tables)

	inputs, err := collectInputs(cmd, args, nil)
	if err != nil {
		return err
	}
	in := inputs[0]
	set, err := loadTables(exploreTables)
	if err != nil {
		return err
	}
	workers := 0
	if fileCfg.Analyze.Workers != nil {
		workers = *fileCfg.Analyze.Workers
	}
	res := analyzeInput(in, exploreFold, newPipeline(set, workers))
	if res.Err != nil {
		if rerr := report.RenderInputError(cmd.OutOrStdout(), in.label, res.Err); rerr != nil {
			return fmt.Errorf("failed to write output: %w", rerr)
		}
		return res.Err
	}

	preview, err := previewSource(in.raw, exploreFold)
	if err != nil {
		return err
	}
	m := explorer.NewModel(in.label, preview, res.Result, set)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run explorer: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analyses",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historyLabel, "label", "", "only runs for this input label")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N runs")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-key scores of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistoryShowCmd,
	}
	show.Flags().IntVar(&historyTop, "top", 0, "number of candidate rows to show (0 for all)")
	cmd.AddCommand(show)
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	filter, err := historyFilter(historyLabel, historySince, historyLast)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	runs, err := st.ListRuns(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if err := report.RenderHistory(cmd.OutOrStdout(), runs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	if historyTop < 0 {
		return fmt.Errorf("--top must be >= 0")
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	rec, err := st.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}
	scores, err := st.ListRunScores(cmd.Context(), rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load run scores: %w", err)
	}
	if err := report.RenderRun(cmd.OutOrStdout(), rec, scores, report.Options{Top: historyTop}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func historyFilter(label, since string, last int) (model.HistoryFilter, error) {
	if last < 0 {
		return model.HistoryFilter{}, fmt.Errorf("--last must be >= 0")
	}
	filter := model.HistoryFilter{Label: strings.TrimSpace(label), Last: last}
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.HistoryFilter{}, fmt.Errorf("invalid --since value: %w", err)
		}
		filter.Since = &parsed
	}
	return filter, nil
}

func openStore() (*store.Store, error) {
	path := config.DefaultDBPath()
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("opened history", zap.String("path", path))
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		logger.Warn("failed to close db", zap.Error(err))
	}
}

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Inspect or build frequency tables",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the active frequency tables",
		Args:  cobra.NoArgs,
		RunE:  runTablesShowCmd,
	}
	show.Flags().StringVar(&tablesPath, "tables", "", "frequency table file or name (default: built-in English)")
	show.Flags().IntVar(&tablesShowBigrams, "bigrams", 20, "number of bigrams to list (0 for all)")

	build := &cobra.Command{
		Use:   "build CORPUS",
		Short: "Derive frequency tables from a plaintext corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  runTablesBuildCmd,
	}
	build.Flags().StringVar(&tablesName, "name", "", "table set name (default: corpus file name)")
	build.Flags().StringVar(&tablesOut, "out", "", "output path (default: tables directory)")
	build.Flags().IntVar(&tablesBuildBigrams, "bigrams", freq.DefaultBigramCount, "number of bigrams to keep")
	build.Flags().BoolVar(&tablesForce, "force", false, "overwrite an existing file")

	cmd.AddCommand(show, build)
	return cmd
}

func runTablesShowCmd(cmd *cobra.Command, _ []string) error {
	if !cmd.Flags().Changed("tables") {
		fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyStringConfig(cmd, "tables", &tablesPath, fileCfg.Analyze.Tables)
	}
	set, err := loadTables(tablesPath)
	if err != nil {
		return err
	}
	if err := report.RenderTables(cmd.OutOrStdout(), set, tablesShowBigrams); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func runTablesBuildCmd(cmd *cobra.Command, args []string) error {
	if tablesBuildBigrams <= 0 {
		return fmt.Errorf("--bigrams must be > 0")
	}
	text, err := corpus.LoadText(args[0])
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}
	name := strings.TrimSpace(tablesName)
	if name == "" {
		name = corpusName(args[0])
	}
	set, err := freq.Build(name, text, tablesBuildBigrams)
	if err != nil {
		return fmt.Errorf("failed to build tables: %w", err)
	}
	out := tablesOut
	if out == "" {
		out = config.DefaultTablePath(name)
	}
	if err := set.WriteFile(out, tablesForce); err != nil {
		return err
	}
	logger.Info("wrote tables", zap.String("path", out), zap.Int("bigrams", set.Bigram.Len()))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d letters, %d bigrams)\n", out, set.Unigram.Len(), set.Bigram.Len()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func corpusName(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure key recovery rate versus input length",
		Args:  cobra.NoArgs,
		RunE:  runBenchCmd,
	}
	cmd.Flags().IntSliceVar(&benchLengths, "lengths", bench.DefaultLengths, "input lengths in letters")
	cmd.Flags().IntVar(&benchTrials, "trials", bench.DefaultTrials, "ciphertexts per length")
	cmd.Flags().Int64Var(&benchSeed, "seed", 0, "random seed (0 for time-based)")
	cmd.Flags().StringVar(&benchWordlist, "wordlist", "", "word list to draw plaintext from (default: built-in sample text)")
	cmd.Flags().IntVar(&benchWorkers, "workers", 0, "keys scored in parallel (0 for one per CPU)")
	cmd.Flags().StringVar(&benchTables, "tables", "", "frequency table file or name (default: built-in English)")
	return cmd
}

func runBenchCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntsConfig(cmd, "lengths", &benchLengths, fileCfg.Bench.Lengths)
	applyIntConfig(cmd, "trials", &benchTrials, fileCfg.Bench.Trials)
	applyStringConfig(cmd, "wordlist", &benchWordlist, fileCfg.Bench.Wordlist)
	applyStringConfig(cmd, "tables", &benchTables, fileCfg.Analyze.Tables)

	seed := benchSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cfg := model.BenchConfig{
		Lengths:  benchLengths,
		Trials:   benchTrials,
		Seed:     seed,
		Wordlist: benchWordlist,
		Workers:  benchWorkers,
		Tables:   benchTables,
	}
	if err := validateBenchConfig(cfg); err != nil {
		return err
	}

	set, err := loadTables(cfg.Tables)
	if err != nil {
		return err
	}

	src := bench.TextSource(corpus.Sample())
	if cfg.Wordlist != "" {
		words, err := corpus.LoadWords(cfg.Wordlist)
		if err != nil {
			return fmt.Errorf("failed to load word list: %w", err)
		}
		src = bench.WordSource(words)
	}
	logger.Debug("starting benchmark", zap.Ints("lengths", cfg.Lengths), zap.Int("trials", cfg.Trials), zap.Int64("seed", seed))
	points, err := bench.Run(cmd.Context(), cfg, src, newPipeline(set, cfg.Workers))
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := report.RenderBench(out, points); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintf(out, "Tables: %s  Seed: %d\n", set.Name, seed); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
