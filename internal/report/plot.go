package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/shiftscope/internal/cipher"
)

// Series is a named score vector indexed by key.
type Series struct {
	Name   string
	Values []float64
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 8
	axisSeparator       = " │ "
	plotScaleNote       = "Scaled per series; bars grow with the score, lower is better."
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
}

// Each braille cell holds two dot columns. The left column draws the first
// series and the right column the second, so every key is one cell wide.
var brailleColumnDots = [2][4]uint8{
	{0x40, 0x04, 0x02, 0x01},
	{0x80, 0x20, 0x10, 0x08},
}

// PlotKeys renders up to two series as braille bars, one cell per key.
func PlotKeys(w io.Writer, title string, series []Series, height int, forceColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if len(series) > len(brailleColumnDots) {
		series = series[:len(brailleColumnDots)]
	}
	if height <= 0 {
		height = defaultPlotHeight
	}

	keys := 0
	for _, s := range series {
		keys = max(keys, len(s.Values))
	}
	cells := makeCells(height, keys)
	owners := makeCells(height, keys)
	dots := height * 4
	for si, s := range series {
		lo, hi := minMax(s.Values)
		for x, v := range s.Values {
			filled := barDots(v, lo, hi, dots)
			for d := 0; d < filled; d++ {
				row := height - 1 - d/4
				cells[row][x] |= brailleColumnDots[si][d%4]
				owners[row][x] |= 1 << si
			}
		}
	}

	useColor := shouldUseColor(w, forceColor)
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, plotScaleNote); err != nil {
		return err
	}
	for _, s := range series {
		lo, hi := minMax(s.Values)
		if _, err := fmt.Fprintf(w, "%s: min=%.2f max=%.2f\n", s.Name, lo, hi); err != nil {
			return err
		}
	}
	labels := axisLabels(height)
	labelWidth := 4
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", labelWidth, labels[y], axisSeparator)
		for x := 0; x < keys; x++ {
			ch := rune(0x2800 + int(cells[y][x]))
			if useColor && owners[y][x] != 0 {
				row.WriteString(ownerColor(owners[y][x]))
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(row.String(), " ")); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%*s%s%s\n", labelWidth, "", axisSeparator, keyAxis(keys)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// TerminalWidth reports the width of stdout, or 80 when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// ColorEnabled reports whether ANSI colors should be written to w.
func ColorEnabled(w io.Writer) bool {
	return shouldUseColor(w, false)
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		out = append(out, s)
	}
	return out
}

// barDots maps v onto [1, dots]; the smallest value still gets one dot.
func barDots(v, lo, hi float64, dots int) int {
	if dots <= 1 || math.Abs(hi-lo) < 1e-9 {
		return max(1, dots/2)
	}
	pos := (v - lo) / (hi - lo)
	n := 1 + int(math.Round(pos*float64(dots-1)))
	return max(1, min(n, dots))
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func axisLabels(height int) []string {
	labels := make([]string, height)
	if height == 0 {
		return labels
	}
	labels[0] = "max"
	if height > 1 {
		labels[height-1] = "min"
	}
	return labels
}

func keyAxis(keys int) string {
	var b strings.Builder
	for k := 0; k < keys; k++ {
		b.WriteByte(cipher.Alphabet[k%cipher.Size])
	}
	return b.String()
}

func ownerColor(mask uint8) string {
	if mask&1 != 0 {
		return colorPalette[0].code
	}
	return colorPalette[1].code
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	for i, s := range series {
		marker := rune(0x2800 + int(brailleColumnDots[i][0]|brailleColumnDots[i][1]|brailleColumnDots[i][2]|brailleColumnDots[i][3]))
		label := fmt.Sprintf("%c %s", marker, s.Name)
		if useColor {
			label = colorPalette[i].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}
