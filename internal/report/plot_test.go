package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPlotKeys(t *testing.T) {
	values := make([]float64, 26)
	for i := range values {
		values[i] = float64(i)
	}
	var buf bytes.Buffer
	err := PlotKeys(&buf, "Test Plot", []Series{
		{Name: "A", Values: values},
		{Name: "B", Values: values},
	}, 4, false)
	if err != nil {
		t.Fatalf("PlotKeys failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Test Plot", "Scaled per series", "Legend:", "ABCDEFGHIJKLMNOPQRSTUVWXYZ"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected color codes in buffer output")
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	// title, note, two ranges, four plot rows, key axis, legend
	if len(lines) != 10 {
		t.Fatalf("expected 10 lines, got %d:\n%s", len(lines), out)
	}
	bottom := lines[7]
	cells := bottom[strings.Index(bottom, axisSeparator)+len(axisSeparator):]
	if n := utf8.RuneCountInString(cells); n != 26 {
		t.Fatalf("expected one cell per key, got %d", n)
	}
	top := lines[4]
	if !strings.HasSuffix(top, "\u28ff") {
		t.Fatalf("largest key should fill the top cell, got %q", top)
	}
}

func TestPlotKeysForcedColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	if err := PlotKeys(&buf, "", []Series{{Name: "A", Values: []float64{1, 2}}}, 2, true); err != nil {
		t.Fatalf("PlotKeys failed: %v", err)
	}
	if !strings.Contains(buf.String(), colorPalette[0].code) {
		t.Fatalf("expected color codes when forced")
	}
}

func TestPlotKeysEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotKeys(&buf, "Empty", nil, 4, false); err != nil {
		t.Fatalf("PlotKeys failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty series")
	}
}

func TestBarDots(t *testing.T) {
	if got := barDots(0, 0, 10, 16); got != 1 {
		t.Fatalf("minimum should keep one dot, got %d", got)
	}
	if got := barDots(10, 0, 10, 16); got != 16 {
		t.Fatalf("maximum should fill the column, got %d", got)
	}
	if got := barDots(5, 5, 5, 16); got != 8 {
		t.Fatalf("flat series should be half height, got %d", got)
	}
}
