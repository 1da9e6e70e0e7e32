package report

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/freq"
	"github.com/verte-zerg/shiftscope/internal/model"
	"github.com/verte-zerg/shiftscope/internal/rank"
)

const (
	historyTimeLayout = "2006-01-02 15:04"
	runIDWidth        = 8
)

// RenderHistory prints saved runs, oldest first.
func RenderHistory(w io.Writer, runs []model.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	tbl := newTable("ID", "When", "Input", "Letters", "IC", "Key", "Chi-square", "Bigram key", "Tables").alignRight(3, 4, 6)
	ics := make([]float64, 0, len(runs))
	for _, r := range runs {
		tbl.add(
			shortID(r.ID),
			r.CreatedAt.Local().Format(historyTimeLayout),
			truncate(r.Label, 24),
			fmt.Sprintf("%d", r.Letters),
			fmt.Sprintf("%.4f", r.IC),
			keyLabel(cipher.NewKey(r.BestKey).Inverse()),
			fmt.Sprintf("%.2f", r.BestChi),
			keyLabel(cipher.NewKey(r.BigramBestKey).Inverse()),
			r.Tables,
		)
		ics = append(ics, r.IC)
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(ics) > 1 {
		if _, err := fmt.Fprintf(w, "\nIC trend: [%s]\n", Sparkline(ics)); err != nil {
			return err
		}
	}
	return nil
}

// RenderRun prints one saved run with its per-key scores ranked again.
func RenderRun(w io.Writer, rec model.RunRecord, scores []model.RunScore, opts Options) error {
	if _, err := fmt.Fprintf(w, "Run %s\n", rec.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Input: %s  Saved: %s  Tables: %s\n", rec.Label, rec.CreatedAt.Local().Format(time.RFC3339), rec.Tables); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Letters: %d  Index of coincidence: %.4f (%s)\n\n", rec.Letters, rec.IC, describeIC(rec.IC)); err != nil {
		return err
	}
	if len(scores) == 0 {
		_, err := fmt.Fprintln(w, "No per-key scores stored.")
		return err
	}
	unigram, bigram := rank.FromScores(scores)
	shown := unigram.Scores
	if opts.Top > 0 && opts.Top < len(shown) {
		shown = shown[:opts.Top]
	}
	tbl := newTable("Rank", "Key", "Chi-square", "x Best", "Bigram rank").alignRight(0, 2, 3, 4)
	for i, s := range shown {
		tbl.add(
			fmt.Sprintf("%d", i+1),
			keyLabel(s.EncryptionKey()),
			fmt.Sprintf("%.2f", s.Value),
			ratioLabel(s, unigram.Normalized),
			fmt.Sprintf("%d", bigram.Position(s.Key)),
		)
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderBench prints key recovery rates by input length.
func RenderBench(w io.Writer, points []model.BenchPoint) error {
	if len(points) == 0 {
		_, err := fmt.Fprintln(w, "No benchmark results.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Key recovery by input length"); err != nil {
		return err
	}
	tbl := newTable("Letters", "Trials", "Chi-square", "Bigram", "Mean rank", "x Runner-up").alignRight(0, 1, 2, 3, 4, 5)
	rates := make([]float64, 0, len(points))
	for _, p := range points {
		tbl.add(
			fmt.Sprintf("%d", p.Length),
			fmt.Sprintf("%d", p.Trials),
			percentLabel(p.UnigramHits, p.Trials),
			percentLabel(p.BigramHits, p.Trials),
			fmt.Sprintf("%.2f", p.MeanTrueRank),
			fmt.Sprintf("%.2f", p.MeanBestRatio),
		)
		rates = append(rates, rate(p.UnigramHits, p.Trials))
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(rates) > 1 {
		if _, err := fmt.Fprintf(w, "\nRecovery trend: [%s]\n", Sparkline(rates)); err != nil {
			return err
		}
	}
	return nil
}

// RenderTables prints the unigram table and the first bigrams of a set.
func RenderTables(w io.Writer, set freq.Set, bigrams int) error {
	if _, err := fmt.Fprintf(w, "Tables: %s (%d letters, %d bigrams)\n\n", set.Name, set.Unigram.Len(), set.Bigram.Len()); err != nil {
		return err
	}
	uni := newTable("Letter", "Percent").alignRight(1)
	for _, e := range freq.SortedByGram(set.Unigram) {
		uni.add(e.Gram, fmt.Sprintf("%.3f", e.Percent))
	}
	for _, line := range uni.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	entries := set.Bigram.Entries()
	if bigrams > 0 && bigrams < len(entries) {
		entries = entries[:bigrams]
	}
	bi := newTable("Bigram", "Percent").alignRight(1)
	for _, e := range entries {
		bi.add(e.Gram, fmt.Sprintf("%.3f", e.Percent))
	}
	for _, line := range bi.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= runIDWidth {
		return id
	}
	return id[:runIDWidth]
}

func rate(hits, trials int) float64 {
	if trials == 0 {
		return 0
	}
	return float64(hits) / float64(trials)
}

func percentLabel(hits, trials int) string {
	return fmt.Sprintf("%.1f%%", rate(hits, trials)*100)
}
