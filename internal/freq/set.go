package freq

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/sanitize"
)

// DefaultBigramCount is how many bigrams Build keeps when asked for zero.
const DefaultBigramCount = 100

// Set pairs the unigram and bigram tables of one language.
type Set struct {
	Name    string
	Unigram Table
	Bigram  Table
}

type fileSet struct {
	Name    string             `toml:"name"`
	Unigram map[string]float64 `toml:"unigram"`
	Bigram  map[string]float64 `toml:"bigram"`
}

// LoadFile reads a TOML table file.
func LoadFile(path string) (Set, error) {
	if path == "" {
		return Set{}, fmt.Errorf("table path is empty")
	}
	var raw fileSet
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Set{}, fmt.Errorf("failed to decode tables: %w", err)
	}
	uni, err := FromPercentages(1, raw.Unigram)
	if err != nil {
		return Set{}, fmt.Errorf("invalid unigram table in %s: %w", path, err)
	}
	bi, err := FromPercentages(2, raw.Bigram)
	if err != nil {
		return Set{}, fmt.Errorf("invalid bigram table in %s: %w", path, err)
	}
	name := raw.Name
	if name == "" {
		name = filepath.Base(path)
	}
	return Set{Name: name, Unigram: uni, Bigram: bi}, nil
}

// Encode writes s as TOML.
func (s Set) Encode(w io.Writer) error {
	raw := fileSet{
		Name:    s.Name,
		Unigram: s.Unigram.Percentages(),
		Bigram:  s.Bigram.Percentages(),
	}
	if err := toml.NewEncoder(w).Encode(raw); err != nil {
		return fmt.Errorf("failed to encode tables: %w", err)
	}
	return nil
}

// WriteFile atomically writes s to path. Existing files are kept unless force is set.
func (s Set) WriteFile(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("table file already exists: %s (use --force to overwrite)", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat table file: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create table dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "tables-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp table file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}
	return nil
}

// Build derives a Set from raw corpus text. The corpus is sanitized first and
// must contain every letter at least once. bigrams caps the bigram table size.
func Build(name, corpus string, bigrams int) (Set, error) {
	if bigrams <= 0 {
		bigrams = DefaultBigramCount
	}
	text := sanitize.Normalize(corpus)
	if len(text) < 2 {
		return Set{}, fmt.Errorf("corpus has %d letters, need at least 2", len(text))
	}

	uniCounts := CountUnigrams(text)
	uniEntries := make([]Entry, 0, cipher.Size)
	var missing []byte
	for i, n := range uniCounts {
		if n == 0 {
			missing = append(missing, cipher.Alphabet[i])
			continue
		}
		uniEntries = append(uniEntries, Entry{
			Gram:    string(cipher.Alphabet[i]),
			Percent: percent(n, len(text)),
		})
	}
	if len(missing) > 0 {
		return Set{}, fmt.Errorf("corpus never uses letters %s", missing)
	}

	biCounts := CountBigrams(text)
	positions := len(text) - 1
	biEntries := make([]Entry, 0, len(biCounts))
	for idx, n := range biCounts {
		if n == 0 {
			continue
		}
		biEntries = append(biEntries, Entry{Gram: BigramAt(idx), Percent: percent(n, positions)})
	}
	sortEntries(biEntries)
	if len(biEntries) > bigrams {
		biEntries = biEntries[:bigrams]
	}

	sortEntries(uniEntries)
	uni, err := New(1, uniEntries)
	if err != nil {
		return Set{}, err
	}
	bi, err := New(2, biEntries)
	if err != nil {
		return Set{}, err
	}
	return Set{Name: name, Unigram: uni, Bigram: bi}, nil
}

// SortedByGram returns entries ordered alphabetically, for display.
func SortedByGram(t Table) []Entry {
	out := t.Entries()
	sort.Slice(out, func(i, j int) bool { return out[i].Gram < out[j].Gram })
	return out
}

func percent(n, total int) float64 {
	return float64(n) / float64(total) * 100
}
