package corpus

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// MaxInputBytes bounds how much of one input is read.
const MaxInputBytes = 16 << 20

//go:embed sample.txt
var sample string

// Sample returns a few paragraphs of public-domain English prose.
func Sample() string {
	return sample
}

// SplitWords splits text into lowercase words made of ASCII letters.
func SplitWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if IsPlainWord(f) {
			words = append(words, f)
		}
	}
	return words
}

// ReadText reads at most MaxInputBytes from r.
func ReadText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > MaxInputBytes {
		return "", fmt.Errorf("input exceeds %d bytes", MaxInputBytes)
	}
	return string(data), nil
}

// LoadText reads a whole input file.
func LoadText(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only input.
			_ = cerr
		}
	}()
	return ReadText(file)
}
