package freq

import "github.com/verte-zerg/shiftscope/internal/cipher"

// UnigramCounts holds letter occurrences indexed by alphabet position.
type UnigramCounts [cipher.Size]int

// BigramCounts holds overlapping bigram occurrences indexed by a*Size+b.
type BigramCounts [cipher.Size * cipher.Size]int

// CountUnigrams counts letters of a sanitized text.
func CountUnigrams(text string) UnigramCounts {
	var counts UnigramCounts
	for i := 0; i < len(text); i++ {
		counts[cipher.Index(text[i])]++
	}
	return counts
}

// CountBigrams counts overlapping two-letter windows of a sanitized text.
func CountBigrams(text string) BigramCounts {
	var counts BigramCounts
	for i := 0; i+1 < len(text); i++ {
		counts[BigramIndex(text[i], text[i+1])]++
	}
	return counts
}

// Of returns the count for a single letter.
func (c *UnigramCounts) Of(letter byte) int {
	return c[cipher.Index(letter)]
}

// Of returns the count for a two-letter gram.
func (c *BigramCounts) Of(gram string) int {
	return c[BigramIndex(gram[0], gram[1])]
}

// BigramIndex maps two letters to a BigramCounts slot.
func BigramIndex(a, b byte) int {
	return cipher.Index(a)*cipher.Size + cipher.Index(b)
}

// BigramAt is the inverse of BigramIndex.
func BigramAt(idx int) string {
	return string([]byte{cipher.Alphabet[idx/cipher.Size], cipher.Alphabet[idx%cipher.Size]})
}
