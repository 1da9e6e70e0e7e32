// Package main provides the CLI entrypoint for shiftscope.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/verte-zerg/shiftscope/internal/config"
	"github.com/verte-zerg/shiftscope/internal/corpus"
	"github.com/verte-zerg/shiftscope/internal/freq"
	"github.com/verte-zerg/shiftscope/internal/metrics"
	"github.com/verte-zerg/shiftscope/internal/model"
	"github.com/verte-zerg/shiftscope/internal/rank"
	"github.com/verte-zerg/shiftscope/internal/report"
	"github.com/verte-zerg/shiftscope/internal/sanitize"
	"github.com/verte-zerg/shiftscope/internal/store"
)

const (
	defaultTop       = 10
	defaultNormalize = true
)

var (
	verbose bool
	logger  = zap.NewNop()

	analyzeTexts       []string
	analyzeTop         int
	analyzeNoNormalize bool
	analyzePlot        bool
	analyzeFreq        bool
	analyzeFold        bool
	analyzeWorkers     int
	analyzeTables      string
	analyzeSave        bool
)

// errInputsRejected marks a run where at least one input could not be scored.
var errInputsRejected = errors.New("some inputs could not be scored")

type namedInput struct {
	label string
	raw   string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shiftscope [files...]",
		Short: "Rank Caesar shift keys by how English the decryption looks",
		Long: `shiftscope scores all 26 Caesar keys of a ciphertext with the index of
coincidence and unigram/bigram chi-square statistics, then lists the
candidates from most to least English-like.

Input is read from files, --text values, or standard input.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger = newLogger(cmd.ErrOrStderr(), verbose)
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
		RunE: runAnalyzeCmd,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().StringArrayVar(&analyzeTexts, "text", nil, "ciphertext to analyze (repeatable)")
	rootCmd.Flags().IntVar(&analyzeTop, "top", defaultTop, "number of candidate rows to show (0 for all)")
	rootCmd.Flags().BoolVar(&analyzeNoNormalize, "no-normalize", false, "hide score ratios relative to the best key")
	rootCmd.Flags().BoolVar(&analyzePlot, "plot", false, "plot chi-square scores of every key")
	rootCmd.Flags().BoolVar(&analyzeFreq, "freq", false, "show letter frequencies of the best candidate")
	rootCmd.Flags().BoolVar(&analyzeFold, "fold", false, "fold diacritics (é -> E) before stripping non-letters")
	rootCmd.Flags().IntVar(&analyzeWorkers, "workers", 0, "keys scored in parallel (0 for one per CPU)")
	rootCmd.Flags().StringVar(&analyzeTables, "tables", "", "frequency table file or name (default: built-in English)")
	rootCmd.Flags().BoolVar(&analyzeSave, "save", false, "record the analysis in history")

	rootCmd.AddCommand(newEncryptCmd())
	rootCmd.AddCommand(newDecryptCmd())
	rootCmd.AddCommand(newExploreCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func newLogger(w io.Writer, debug bool) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	normalize := !analyzeNoNormalize
	applyIntConfig(cmd, "top", &analyzeTop, fileCfg.Analyze.Top)
	applyBoolConfig(cmd, "no-normalize", &normalize, fileCfg.Analyze.Normalize)
	applyBoolConfig(cmd, "plot", &analyzePlot, fileCfg.Analyze.Plot)
	applyBoolConfig(cmd, "fold", &analyzeFold, fileCfg.Analyze.Fold)
	applyIntConfig(cmd, "workers", &analyzeWorkers, fileCfg.Analyze.Workers)
	applyStringConfig(cmd, "tables", &analyzeTables, fileCfg.Analyze.Tables)
	applyBoolConfig(cmd, "save", &analyzeSave, fileCfg.Analyze.Save)

	cfg := model.AnalyzeConfig{
		Top:       analyzeTop,
		Normalize: normalize,
		Plot:      analyzePlot,
		Fold:      analyzeFold,
		Workers:   analyzeWorkers,
		Tables:    analyzeTables,
		Save:      analyzeSave,
	}
	if err := validateAnalyzeConfig(cfg); err != nil {
		return err
	}

	inputs, err := collectInputs(cmd, args, analyzeTexts)
	if err != nil {
		return err
	}
	set, err := loadTables(cfg.Tables)
	if err != nil {
		return err
	}
	pipeline := newPipeline(set, cfg.Workers)

	out := cmd.OutOrStdout()
	opts := report.Options{
		Top:       cfg.Top,
		Normalize: cfg.Normalize,
		Plot:      cfg.Plot,
		Color:     report.ColorEnabled(out),
	}
	if isTerminal(out) {
		opts.Width = report.TerminalWidth()
	}

	results := make([]report.Input, 0, len(inputs))
	rejected := 0
	for _, in := range inputs {
		res := analyzeInput(in, cfg.Fold, pipeline)
		if res.Err != nil {
			rejected++
			logger.Warn("input rejected", zap.String("input", in.label), zap.Error(res.Err))
		}
		results = append(results, res)
		if err := report.RenderAnalysis(out, res, set, opts); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if analyzeFreq && res.Err == nil {
			best := res.Result.Candidate(res.Result.Unigram.Best().Key)
			if err := report.RenderFrequencies(out, best, set.Unigram); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	if err := report.RenderComparison(out, results); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if cfg.Save {
		if err := saveResults(cmd.Context(), out, results, set.Name); err != nil {
			return err
		}
	}
	if rejected > 0 {
		return fmt.Errorf("%w: %d of %d", errInputsRejected, rejected, len(results))
	}
	return nil
}

func analyzeInput(in namedInput, fold bool, pipeline *rank.Pipeline) report.Input {
	text, err := sanitizeInput(in.raw, fold)
	if err != nil {
		return report.Input{Label: in.label, Err: err}
	}
	logger.Debug("sanitized input", zap.String("input", in.label), zap.Int("bytes", len(in.raw)), zap.Int("letters", len(text)))
	start := time.Now()
	res, err := pipeline.Rank(text)
	if err != nil {
		return report.Input{Label: in.label, Err: err}
	}
	logger.Debug("ranked input",
		zap.String("input", in.label),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("best_key", int(res.Unigram.Best().EncryptionKey())),
	)
	return report.Input{Label: in.label, Result: res}
}

func sanitizeInput(raw string, fold bool) (string, error) {
	normalize := func(raw string) (string, error) { return sanitize.Normalize(raw), nil }
	if fold {
		normalize = sanitize.NormalizeFolded
	}
	text, err := normalize(raw)
	if err != nil {
		return "", fmt.Errorf("failed to sanitize input: %w", err)
	}
	if err := sanitize.Validate(text); err != nil {
		return "", err
	}
	return text, nil
}

// previewSource is the text the explorer shifts for display. With fold on it
// matches what was scored, so accented letters shift with the rest.
func previewSource(raw string, fold bool) (string, error) {
	if !fold {
		return raw, nil
	}
	folded, err := sanitize.Fold(raw)
	if err != nil {
		return "", fmt.Errorf("failed to sanitize input: %w", err)
	}
	return folded, nil
}

func collectInputs(cmd *cobra.Command, paths, texts []string) ([]namedInput, error) {
	inputs := make([]namedInput, 0, len(paths)+len(texts))
	for _, path := range paths {
		raw, err := corpus.LoadText(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, namedInput{label: filepath.Base(path), raw: raw})
	}
	for i, text := range texts {
		inputs = append(inputs, namedInput{label: fmt.Sprintf("text%d", i+1), raw: text})
	}
	if len(inputs) > 0 {
		return inputs, nil
	}
	raw, err := readStdin(cmd)
	if err != nil {
		return nil, err
	}
	return []namedInput{{label: "stdin", raw: raw}}, nil
}

func readStdin(cmd *cobra.Command) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("no input: pass files, --text, or pipe text on stdin")
	}
	return corpus.ReadText(in)
}

// loadTables resolves a table file path, or a bare name inside the tables
// directory. An empty value selects the built-in English tables.
func loadTables(value string) (freq.Set, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == freq.English().Name {
		return freq.English(), nil
	}
	path := value
	if !strings.ContainsRune(value, filepath.Separator) && filepath.Ext(value) == "" {
		path = config.DefaultTablePath(value)
	}
	set, err := freq.LoadFile(path)
	if err != nil {
		return freq.Set{}, fmt.Errorf("failed to load tables: %w", err)
	}
	logger.Debug("loaded tables", zap.String("path", path), zap.String("name", set.Name))
	return set, nil
}

func newPipeline(set freq.Set, workers int) *rank.Pipeline {
	opts := []rank.Option{rank.WithScorer(metrics.NewScorer(set))}
	if workers > 0 {
		opts = append(opts, rank.WithWorkers(workers))
	}
	return rank.New(opts...)
}

func saveResults(ctx context.Context, out io.Writer, results []report.Input, tables string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Warn("failed to close db", zap.Error(cerr))
		}
	}()
	now := time.Now()
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		rec, scores := r.Result.Record(r.Label, tables, now)
		id, err := st.InsertRun(ctx, rec, scores)
		if err != nil {
			return fmt.Errorf("failed to save %s: %w", r.Label, err)
		}
		logger.Info("saved run", zap.String("id", id), zap.String("input", r.Label))
		if _, err := fmt.Fprintf(out, "Saved %s as run %s\n", r.Label, id); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
