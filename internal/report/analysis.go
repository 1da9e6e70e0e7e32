// Package report renders analysis results as plain text.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/freq"
	"github.com/verte-zerg/shiftscope/internal/metrics"
	"github.com/verte-zerg/shiftscope/internal/rank"
)

const sparkChars = " .:-=+*#%@"

// defaultPreviewWidth is used when the caller does not know the terminal width.
const defaultPreviewWidth = 32

// Options controls analysis rendering.
type Options struct {
	// Top limits the candidate table; 0 or less shows every key.
	Top       int
	Normalize bool
	Plot      bool
	Color     bool
	// Width is the total output width used to size previews; 0 keeps the
	// default preview width.
	Width int
}

// Input is one labelled analysis to render.
type Input struct {
	Label  string
	Result rank.Result
	Err    error
}

// RenderAnalysis prints the full report for one input.
func RenderAnalysis(w io.Writer, in Input, set freq.Set, opts Options) error {
	if _, err := fmt.Fprintf(w, "Input: %s\n", in.Label); err != nil {
		return err
	}
	if in.Err != nil {
		return RenderInputError(w, in.Label, in.Err)
	}
	res := in.Result
	if _, err := fmt.Fprintf(w, "Letters: %d  Tables: %s\n", res.Letters, set.Name); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Index of coincidence: %.4f (%s)\n", res.IC, describeIC(res.IC)); err != nil {
		return err
	}
	best := res.Unigram.Best()
	bigramBest := res.Bigram.Best()
	if _, err := fmt.Fprintf(w, "Best key: %s (chi-square %.2f)  bigram best: %s (%.2f)\n",
		keyLabel(best.EncryptionKey()), best.Value, keyLabel(bigramBest.EncryptionKey()), bigramBest.Value); err != nil {
		return err
	}
	if best.Key != bigramBest.Key {
		if _, err := fmt.Fprintln(w, "Note: the bigram best key differs; bigram scores need a few hundred letters to be reliable."); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Fit by encryption key A..Z: [%s]\n\n", Sparkline(invert(ByEncryptionKey(res.ChiByKey)))); err != nil {
		return err
	}

	if err := RenderCandidates(w, res, opts); err != nil {
		return err
	}
	if opts.Plot {
		series := []Series{
			{Name: "chi-square", Values: ByEncryptionKey(res.ChiByKey)},
			{Name: "bigram chi-square", Values: ByEncryptionKey(res.ChiBigramByKey)},
		}
		if err := PlotKeys(w, "Scores by encryption key", series, 0, opts.Color); err != nil {
			return err
		}
	}
	return nil
}

// RenderCandidates prints the ranked candidate table.
func RenderCandidates(w io.Writer, res rank.Result, opts Options) error {
	scores := res.Unigram.Scores
	if opts.Top > 0 && opts.Top < len(scores) {
		scores = scores[:opts.Top]
	}
	bigramByKey := make(map[cipher.Key]rank.Score, len(res.Bigram.Scores))
	for _, s := range res.Bigram.Scores {
		bigramByKey[s.Key] = s
	}

	headers := []string{"Rank", "Key", "Chi-square"}
	if opts.Normalize {
		headers = append(headers, "x Best")
	}
	headers = append(headers, "Bigram", "Bigram rank")
	if opts.Normalize {
		headers = append(headers, "x Best")
	}
	headers = append(headers, "Preview")

	tbl := newTable(headers...)
	for i := range len(headers) - 1 {
		if i != 1 {
			tbl.alignRight(i)
		}
	}
	previewWidth := previewWidthFor(opts.Width)
	for i, s := range scores {
		bi := bigramByKey[s.Key]
		row := []string{
			fmt.Sprintf("%d", i+1),
			keyLabel(s.EncryptionKey()),
			fmt.Sprintf("%.2f", s.Value),
		}
		if opts.Normalize {
			row = append(row, ratioLabel(s, res.Unigram.Normalized))
		}
		row = append(row,
			fmt.Sprintf("%.2f", bi.Value),
			fmt.Sprintf("%d", res.Bigram.Position(s.Key)),
		)
		if opts.Normalize {
			row = append(row, ratioLabel(bi, res.Bigram.Normalized))
		}
		row = append(row, truncate(res.Candidate(s.Key), previewWidth))
		tbl.add(row...)
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderComparison prints one summary row per input, so a long and a short
// sample of the same ciphertext can be compared side by side.
func RenderComparison(w io.Writer, inputs []Input) error {
	if len(inputs) < 2 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Comparison"); err != nil {
		return err
	}
	tbl := newTable("Input", "Letters", "IC", "Key", "Chi-square", "Bigram key", "Bigram", "Agree").alignRight(1, 2, 4, 6)
	for _, in := range inputs {
		if in.Err != nil {
			tbl.add(in.Label, "-", "-", "-", "-", "-", "-", failedMetrics(in.Err))
			continue
		}
		res := in.Result
		best := res.Unigram.Best()
		bi := res.Bigram.Best()
		agree := "no"
		if best.Key == bi.Key {
			agree = "yes"
		}
		tbl.add(
			in.Label,
			fmt.Sprintf("%d", res.Letters),
			fmt.Sprintf("%.4f", res.IC),
			keyLabel(best.EncryptionKey()),
			fmt.Sprintf("%.0f", best.Value),
			keyLabel(bi.EncryptionKey()),
			fmt.Sprintf("%.0f", bi.Value),
			agree,
		)
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderInputError explains which metrics could not be computed for label.
func RenderInputError(w io.Writer, label string, err error) error {
	if !errors.Is(err, metrics.ErrInsufficientInput) {
		_, werr := fmt.Fprintf(w, "Error: %s: %v\n\n", label, err)
		return werr
	}
	if _, werr := fmt.Fprintf(w, "Not enough letters in %s to score it:\n", label); werr != nil {
		return werr
	}
	for _, e := range insufficientErrors(err) {
		if _, werr := fmt.Fprintf(w, "  - %s: needs %d letters, got %d\n", e.Metric, e.Need, e.Got); werr != nil {
			return werr
		}
	}
	_, werr := fmt.Fprintln(w, "")
	return werr
}

// RenderFrequencies prints observed versus expected letter frequencies.
func RenderFrequencies(w io.Writer, text string, table freq.Table) error {
	observed := metrics.RelativeFrequencies(text)
	tbl := newTable("Letter", "Observed %", "Expected %", "").alignRight(1, 2)
	for _, e := range freq.SortedByGram(table) {
		obs := observed[cipher.Index(e.Gram[0])] * 100
		tbl.add(e.Gram, fmt.Sprintf("%.2f", obs), fmt.Sprintf("%.2f", e.Percent), strings.Repeat("#", int(math.Round(obs))))
	}
	if _, err := fmt.Fprintln(w, "Letter frequencies"); err != nil {
		return err
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := minMax(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func describeIC(ic float64) string {
	switch {
	case ic >= metrics.ICEnglish-0.01:
		return "close to English, consistent with a monoalphabetic cipher"
	case ic <= metrics.ICRandom+0.005:
		return "close to random text"
	default:
		return "between random and English"
	}
}

func keyLabel(k cipher.Key) string {
	return fmt.Sprintf("%2d %c", int(k), k.Letter())
}

func ratioLabel(s rank.Score, normalized bool) string {
	if !normalized {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", s.Ratio)
}

func failedMetrics(err error) string {
	var names []string
	for _, e := range insufficientErrors(err) {
		names = append(names, e.Metric)
	}
	if len(names) == 0 {
		return err.Error()
	}
	return "too short for " + strings.Join(names, ", ")
}

func insufficientErrors(err error) []*metrics.InsufficientInputError {
	var out []*metrics.InsufficientInputError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if e, ok := err.(*metrics.InsufficientInputError); ok {
			out = append(out, e)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

func previewWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return defaultPreviewWidth
	}
	// Rank, key, four numeric columns and separators take roughly 60 cells.
	return max(defaultPreviewWidth/2, totalWidth-60)
}

// ByEncryptionKey reorders a vector indexed by scored key so that slot e holds
// the score of encryption key e.
func ByEncryptionKey(values [cipher.Size]float64) []float64 {
	out := make([]float64, cipher.Size)
	for k, v := range values {
		out[cipher.Key(k).Inverse()] = v
	}
	return out
}

func invert(values []float64) []float64 {
	_, maxVal := minMax(values)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = maxVal - v
	}
	return out
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	return minVal, maxVal
}
