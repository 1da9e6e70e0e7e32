// Package generator builds random plaintexts and keys for benchmarking.
package generator

import (
	"math/rand"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/sanitize"
)

// Generator produces reproducible plaintexts for a given seed.
type Generator struct {
	rnd *rand.Rand
}

// NewSeeded returns a Generator whose output is fixed by seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Key returns a uniformly chosen shift key.
func (g *Generator) Key() cipher.Key {
	return cipher.Key(g.rnd.Intn(cipher.Size))
}

// Plaintext joins uniformly chosen words until the sanitized text holds
// exactly letters letters. Words without any letters are skipped; it returns
// "" when no word has letters.
func (g *Generator) Plaintext(words []string, letters int) string {
	pool := letterWords(words)
	if len(pool) == 0 || letters <= 0 {
		return ""
	}
	buf := make([]byte, 0, letters+16)
	for len(buf) < letters {
		buf = append(buf, pool[g.rnd.Intn(len(pool))]...)
	}
	return string(buf[:letters])
}

// Excerpt returns a window of letters letters starting at a random offset of
// the sanitized text, or the whole text when it is shorter.
func (g *Generator) Excerpt(text string, letters int) string {
	clean := sanitize.Normalize(text)
	if letters <= 0 {
		return ""
	}
	if len(clean) <= letters {
		return clean
	}
	start := g.rnd.Intn(len(clean) - letters + 1)
	return clean[start : start+letters]
}

func letterWords(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if clean := sanitize.Normalize(w); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
