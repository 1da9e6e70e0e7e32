// Package metrics scores sanitized text against reference letter statistics.
//
// Every function assumes its input contains only the letters A-Z; callers are
// expected to pass text through the sanitize package first.
package metrics

import (
	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/freq"
)

// Metric names, as reported in InsufficientInputError.
const (
	NameIC        = "index of coincidence"
	NameChiSquare = "chi-square"
	NameChiBigram = "bigram chi-square"
)

// Minimum text lengths for each metric.
const (
	MinLenIC        = 2
	MinLenChiSquare = 1
	MinLenChiBigram = 2
)

// Thresholds for interpreting an index of coincidence.
const (
	ICRandom  = 0.038466
	ICEnglish = 0.0686
)

// Scorer computes chi-square scores against a pair of frequency tables.
type Scorer struct {
	unigram freq.Table
	bigram  freq.Table
}

// NewScorer returns a Scorer for the given table set.
func NewScorer(set freq.Set) *Scorer {
	return &Scorer{unigram: set.Unigram, bigram: set.Bigram}
}

var english = NewScorer(freq.English())

// English returns the Scorer backed by the built-in English tables.
func English() *Scorer { return english }

// IndexOfCoincidence returns the probability that two letters drawn without
// replacement from text are equal. It does not depend on any table and is
// unchanged by any Caesar shift.
func IndexOfCoincidence(text string) (float64, error) {
	n := len(text)
	if err := require(NameIC, MinLenIC, n); err != nil {
		return 0, err
	}
	counts := freq.CountUnigrams(text)
	var sum int
	for _, f := range counts {
		sum += f * (f - 1)
	}
	return float64(sum) / (float64(n) * float64(n-1)), nil
}

// ChiSquareUnigram scores text against the English letter table.
func ChiSquareUnigram(text string) (float64, error) {
	return english.ChiSquareUnigram(text)
}

// ChiSquareBigram scores text against the English bigram table.
func ChiSquareBigram(text string) (float64, error) {
	return english.ChiSquareBigram(text)
}

// ChiSquareUnigram sums (observed-expected)^2/expected over every tabulated
// letter. Lower scores are closer to the reference language.
func (s *Scorer) ChiSquareUnigram(text string) (float64, error) {
	n := len(text)
	if err := require(NameChiSquare, MinLenChiSquare, n); err != nil {
		return 0, err
	}
	counts := freq.CountUnigrams(text)
	var chi float64
	s.unigram.Each(func(e freq.Entry) {
		observed := float64(counts.Of(e.Gram[0]))
		expected := e.Percent / 100 * float64(n)
		chi += sq(observed-expected) / expected
	})
	return chi, nil
}

// ChiSquareBigram scores overlapping bigrams. Only tabulated bigrams
// contribute; bigrams missing from the table are not penalized.
func (s *Scorer) ChiSquareBigram(text string) (float64, error) {
	if err := require(NameChiBigram, MinLenChiBigram, len(text)); err != nil {
		return 0, err
	}
	positions := float64(len(text) - 1)
	counts := freq.CountBigrams(text)
	var chi float64
	s.bigram.Each(func(e freq.Entry) {
		observed := float64(counts.Of(e.Gram))
		expected := e.Percent / 100 * positions
		chi += sq(observed-expected) / expected
	})
	return chi, nil
}

// RelativeFrequencies returns each letter's share of text in [0, 1], indexed
// by alphabet position. Empty text yields all zeros.
func RelativeFrequencies(text string) [cipher.Size]float64 {
	var out [cipher.Size]float64
	if len(text) == 0 {
		return out
	}
	counts := freq.CountUnigrams(text)
	for i, n := range counts {
		out[i] = float64(n) / float64(len(text))
	}
	return out
}

func sq(x float64) float64 { return x * x }
