// Package sanitize turns arbitrary user input into alphabet-only text.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidCharacter reports text containing a rune outside A-Z.
var ErrInvalidCharacter = errors.New("invalid character")

// InvalidCharacterError locates the first offending rune.
type InvalidCharacterError struct {
	Rune   rune
	Offset int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character %q at offset %d", e.Rune, e.Offset)
}

// Is matches ErrInvalidCharacter.
func (e *InvalidCharacterError) Is(target error) bool {
	return target == ErrInvalidCharacter
}

// Normalize upper-cases raw and drops every rune that is not A-Z.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		r = unicode.ToUpper(r)
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Fold replaces compatibility characters such as ligatures with their
// plain letters and strips combining marks, keeping everything else.
func Fold(raw string) (string, error) {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		return "", fmt.Errorf("failed to fold diacritics: %w", err)
	}
	return folded, nil
}

// NormalizeFolded runs Fold before Normalize, so accented letters keep
// their base letter instead of being dropped.
func NormalizeFolded(raw string) (string, error) {
	folded, err := Fold(raw)
	if err != nil {
		return "", err
	}
	return Normalize(folded), nil
}

// Validate checks that text already satisfies the sanitized-text invariant.
func Validate(text string) error {
	for i := 0; i < len(text); {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			i++
			continue
		}
		r, _ := utf8.DecodeRuneInString(text[i:])
		return &InvalidCharacterError{Rune: r, Offset: i}
	}
	return nil
}
