package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadWordsFiltersAndLowercases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("Hello\n\nco-op\nworld \n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	words, err := LoadWords(path)
	if err != nil {
		t.Fatalf("LoadWords failed: %v", err)
	}
	if len(words) != 2 || words[0] != "hello" || words[1] != "world" {
		t.Fatalf("unexpected words: %v", words)
	}
}

func TestLoadWordsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("123\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	if _, err := LoadWords(path); err == nil {
		t.Fatalf("expected error for empty word list")
	}
}

func TestSplitSample(t *testing.T) {
	words := SplitWords(Sample())
	if len(words) < 200 {
		t.Fatalf("expected a sizeable sample, got %d words", len(words))
	}
	for _, w := range words {
		if strings.ToLower(w) != w {
			t.Fatalf("expected lowercase word, got %q", w)
		}
	}
}

func TestSplitWords(t *testing.T) {
	got := SplitWords("Call me Ishmael. Some years ago—never mind")
	want := []string{"call", "me", "ishmael", "some", "years", "ago", "never", "mind"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestReadTextLimit(t *testing.T) {
	text, err := ReadText(strings.NewReader("attack at dawn"))
	if err != nil || text != "attack at dawn" {
		t.Fatalf("unexpected read: %q %v", text, err)
	}
	if _, err := LoadText(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestIsPlainWord(t *testing.T) {
	if !IsPlainWord("hello") {
		t.Fatalf("expected hello to be kept")
	}
	for _, word := range []string{"résumé", "naïve", "don’t", "co-op", "Hello", ""} {
		if IsPlainWord(word) {
			t.Fatalf("expected %q to be rejected", word)
		}
	}
}
