package explorer

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesHighlightsCommonWords(t *testing.T) {
	runes := buildStyledRunes([]rune("the qx, and"))
	if runes[0].kind != kindWord || runes[0].s != wordStyle.Render("t") {
		t.Fatalf("expected word style for common word")
	}
	if runes[4].kind != kindLetter || runes[4].s != letterStyle.Render("q") {
		t.Fatalf("expected letter style for unknown word")
	}
	if runes[6].kind != kindMuted || runes[6].s != mutedStyle.Render(",") {
		t.Fatalf("expected muted style for punctuation")
	}
	if runes[8].kind != kindWord {
		t.Fatalf("expected word style for trailing common word")
	}
	if !runes[3].isSpace {
		t.Fatalf("expected space flag")
	}
}

func TestBuildStyledRunesIgnoresWordsInsideLongerWords(t *testing.T) {
	runes := buildStyledRunes([]rune("theory"))
	for i, r := range runes {
		if r.kind != kindLetter {
			t.Fatalf("rune %d should be a plain letter, got kind %d", i, r.kind)
		}
	}
}

func TestWrapStyledRunesBreaksAtSpaces(t *testing.T) {
	runes := buildStyledRunes([]rune("abc def ghi"))
	out := stripped(wrapStyledRunes(runes, 7))
	if out != "abc def\nghi" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapStyledRunesLongWord(t *testing.T) {
	runes := buildStyledRunes([]rune("abcdefgh"))
	out := stripped(wrapStyledRunes(runes, 3))
	if out != "abc\ndef\ngh" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapStyledRunesKeepsNewlines(t *testing.T) {
	runes := buildStyledRunes([]rune("ab\ncd ef"))
	out := stripped(wrapStyledRunes(runes, 20))
	if out != "ab\ncd ef" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestWrapStyledRunesWideRunes(t *testing.T) {
	runes := buildStyledRunes([]rune("日本 語"))
	if runes[0].width != 2 {
		t.Fatalf("expected wide rune width 2, got %d", runes[0].width)
	}
	out := stripped(wrapStyledRunes(runes, 5))
	if out != "日本\n語" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

// stripped removes ANSI escapes so tests do not depend on the color profile.
func stripped(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
