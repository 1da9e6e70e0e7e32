package explorer

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// commonWords are highlighted in the preview so a readable key stands out.
var commonWords = map[string]struct{}{
	"THE": {}, "AND": {}, "OF": {}, "TO": {}, "IN": {}, "IS": {}, "IT": {},
	"THAT": {}, "WAS": {}, "FOR": {}, "WITH": {}, "AS": {}, "HE": {}, "ON": {},
	"BE": {}, "AT": {}, "BY": {}, "THIS": {}, "HAD": {}, "NOT": {}, "ARE": {},
	"BUT": {}, "FROM": {}, "OR": {}, "HAVE": {}, "AN": {}, "THEY": {}, "WHICH": {},
	"YOU": {}, "WERE": {}, "HER": {}, "ALL": {}, "SHE": {}, "THERE": {}, "WE": {},
}

type runeKind int

const (
	kindMuted runeKind = iota
	kindLetter
	kindWord
)

type styledRune struct {
	s       string
	kind    runeKind
	width   int
	isSpace bool
	isBreak bool
}

// buildStyledRunes styles a decrypted preview: common English words in the
// word style, other letters in the letter style and everything else muted.
func buildStyledRunes(text []rune) []styledRune {
	known := make([]bool, len(text))
	for _, w := range findWords(text) {
		if _, ok := commonWords[strings.ToUpper(string(text[w.start:w.end]))]; ok {
			for i := w.start; i < w.end; i++ {
				known[i] = true
			}
		}
	}

	out := make([]styledRune, 0, len(text))
	for i, r := range text {
		switch {
		case r == '\n':
			out = append(out, styledRune{isBreak: true})
			continue
		case r == '\t':
			r = ' '
		}
		style, kind := mutedStyle, kindMuted
		switch {
		case known[i]:
			style, kind = wordStyle, kindWord
		case isLetter(r):
			style, kind = letterStyle, kindLetter
		}
		out = append(out, styledRune{
			s:       style.Render(string(r)),
			kind:    kind,
			width:   runewidth.RuneWidth(r),
			isSpace: r == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(text []rune) []wordRange {
	words := []wordRange{}
	start := -1
	for i, r := range text {
		if !isLetter(r) {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(text)})
	}
	return words
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		if item.isBreak {
			b.WriteRune('\n')
			continue
		}
		b.WriteString(item.s)
	}
	return b.String()
}

// wrapStyledRunes breaks lines at the last space that fits in width, or
// mid-word when a word is wider than the line. The space at a break is
// dropped; newlines in the input are kept.
func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, width)
	lineWidth := 0
	lastSpaceIdx := -1
	flush := func(items []styledRune) {
		out.WriteString(renderStyledRunes(items))
		out.WriteRune('\n')
	}

	for i := 0; i < len(runes); {
		item := runes[i]
		if item.isBreak {
			flush(line)
			line = line[:0]
			lineWidth = 0
			lastSpaceIdx = -1
			i++
			continue
		}
		if lineWidth+item.width > width && len(line) > 0 {
			if item.isSpace {
				flush(line)
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
				i++
				continue
			}
			if lastSpaceIdx >= 0 {
				flush(line[:lastSpaceIdx])
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				flush(line)
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
