// Package rank scores every Caesar key against a ciphertext and orders the
// candidates from most to least English-like.
package rank

import (
	"errors"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/metrics"
)

// Score is one candidate key with its metric value.
type Score struct {
	// Key is the shift applied to the ciphertext to produce the candidate.
	Key   cipher.Key
	Value float64
	// Ratio is Value divided by the best value of the same metric; 1.0 for
	// the best candidate, 0 when the ranking is not normalized.
	Ratio float64
}

// EncryptionKey is the key the plaintext was shifted by, assuming this
// candidate is the correct decryption.
func (s Score) EncryptionKey() cipher.Key {
	return s.Key.Inverse()
}

// Ranking is a metric's scores sorted ascending (best first).
type Ranking struct {
	Metric     string
	Scores     []Score
	Normalized bool
}

// Best returns the lowest-scoring candidate.
func (r Ranking) Best() Score {
	if len(r.Scores) == 0 {
		return Score{}
	}
	return r.Scores[0]
}

// Position returns the 1-based rank of key, or 0 if absent.
func (r Ranking) Position(key cipher.Key) int {
	for i, s := range r.Scores {
		if s.Key == key {
			return i + 1
		}
	}
	return 0
}

// Result is one complete scoring run over a single text.
type Result struct {
	Text    string
	Letters int
	IC      float64

	ChiByKey       [cipher.Size]float64
	ChiBigramByKey [cipher.Size]float64

	Unigram Ranking
	Bigram  Ranking
}

// Candidate returns the text decrypted with the scored key.
func (r Result) Candidate(key cipher.Key) string {
	return cipher.Shift(r.Text, key)
}

// Pipeline ranks texts with a fixed scorer and worker limit.
type Pipeline struct {
	scorer  *metrics.Scorer
	workers int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithScorer replaces the default English scorer.
func WithScorer(s *metrics.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithWorkers bounds how many keys are scored at once. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// New returns a Pipeline using English tables and GOMAXPROCS workers by default.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		scorer:  metrics.English(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	return p
}

// Rank scores text with the default pipeline.
func Rank(text string) (Result, error) {
	return New().Rank(text)
}

// Check reports every metric that cannot be computed for text. The returned
// error joins one metrics.InsufficientInputError per failing metric.
func Check(text string) error {
	var errs []error
	n := len(text)
	if n < metrics.MinLenIC {
		errs = append(errs, &metrics.InsufficientInputError{Metric: metrics.NameIC, Need: metrics.MinLenIC, Got: n})
	}
	if n < metrics.MinLenChiSquare {
		errs = append(errs, &metrics.InsufficientInputError{Metric: metrics.NameChiSquare, Need: metrics.MinLenChiSquare, Got: n})
	}
	if n < metrics.MinLenChiBigram {
		errs = append(errs, &metrics.InsufficientInputError{Metric: metrics.NameChiBigram, Need: metrics.MinLenChiBigram, Got: n})
	}
	return errors.Join(errs...)
}

// Rank computes the index of coincidence once and both chi-square scores for
// every key. Text shorter than any metric's minimum is rejected before any
// scoring starts; a Result is only returned once every key has been scored.
func (p *Pipeline) Rank(text string) (Result, error) {
	if err := Check(text); err != nil {
		return Result{}, err
	}
	ic, err := metrics.IndexOfCoincidence(text)
	if err != nil {
		return Result{}, err
	}
	res := Result{Text: text, Letters: len(text), IC: ic}

	var g errgroup.Group
	g.SetLimit(p.workers)
	for _, key := range cipher.Keys() {
		g.Go(func() error {
			candidate := cipher.Shift(text, key)
			chi, err := p.scorer.ChiSquareUnigram(candidate)
			if err != nil {
				return fmt.Errorf("key %d: %w", key, err)
			}
			bi, err := p.scorer.ChiSquareBigram(candidate)
			if err != nil {
				return fmt.Errorf("key %d: %w", key, err)
			}
			res.ChiByKey[key] = chi
			res.ChiBigramByKey[key] = bi
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res.Unigram = Sort(metrics.NameChiSquare, res.ChiByKey[:])
	res.Bigram = Sort(metrics.NameChiBigram, res.ChiBigramByKey[:])
	return res, nil
}

// Sort pairs values with their keys (values[i] belongs to key i), orders them
// ascending and normalizes by the minimum. Ties keep key order.
func Sort(metric string, values []float64) Ranking {
	scores := make([]Score, len(values))
	for i, v := range values {
		scores[i] = Score{Key: cipher.Key(i), Value: v}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Value < scores[j].Value
	})
	r := Ranking{Metric: metric, Scores: scores}
	if len(scores) == 0 {
		return r
	}
	best := scores[0].Value
	if best > 0 {
		r.Normalized = true
		for i := range scores {
			scores[i].Ratio = scores[i].Value / best
		}
	}
	return r
}
