// Package bench measures how often the ranking recovers the key of a
// generated ciphertext as the input gets shorter.
package bench

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/shiftscope/internal/cipher"
	"github.com/verte-zerg/shiftscope/internal/generator"
	"github.com/verte-zerg/shiftscope/internal/model"
	"github.com/verte-zerg/shiftscope/internal/rank"
)

// DefaultLengths are the input lengths measured when none are configured.
var DefaultLengths = []int{25, 50, 100, 200}

// DefaultTrials is the number of ciphertexts generated per length.
const DefaultTrials = 50

// ErrNoPlaintext is returned when the source yields no letters.
var ErrNoPlaintext = errors.New("plaintext source has no letters")

// Source produces a sanitized plaintext of the requested length.
type Source func(g *generator.Generator, letters int) string

// WordSource draws plaintext from a word list.
func WordSource(words []string) Source {
	return func(g *generator.Generator, letters int) string {
		return g.Plaintext(words, letters)
	}
}

// TextSource draws plaintext as windows of running text.
func TextSource(text string) Source {
	return func(g *generator.Generator, letters int) string {
		return g.Excerpt(text, letters)
	}
}

// Run benchmarks every configured length. Trials for a length are generated
// in order from one seeded generator, so equal configs give equal results.
func Run(ctx context.Context, cfg model.BenchConfig, src Source, p *rank.Pipeline) ([]model.BenchPoint, error) {
	lengths := cfg.Lengths
	if len(lengths) == 0 {
		lengths = DefaultLengths
	}
	trials := cfg.Trials
	if trials <= 0 {
		trials = DefaultTrials
	}
	if p == nil {
		var opts []rank.Option
		if cfg.Workers > 0 {
			opts = append(opts, rank.WithWorkers(cfg.Workers))
		}
		p = rank.New(opts...)
	}
	g := generator.NewSeeded(cfg.Seed)

	points := make([]model.BenchPoint, 0, len(lengths))
	for _, length := range lengths {
		if length < 2 {
			return nil, fmt.Errorf("invalid length %d: must be at least 2", length)
		}
		point, err := runLength(ctx, g, src, p, length, trials)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return points, nil
}

func runLength(ctx context.Context, g *generator.Generator, src Source, p *rank.Pipeline, length, trials int) (model.BenchPoint, error) {
	point := model.BenchPoint{Length: length, Trials: trials}
	var rankSum, ratioSum float64
	ratios := 0
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return model.BenchPoint{}, err
		}
		key := g.Key()
		plain := src(g, length)
		if plain == "" {
			return model.BenchPoint{}, ErrNoPlaintext
		}
		res, err := p.Rank(cipher.Shift(plain, key))
		if err != nil {
			return model.BenchPoint{}, fmt.Errorf("failed to rank trial %d at length %d: %w", i, length, err)
		}
		if res.Unigram.Best().EncryptionKey() == key {
			point.UnigramHits++
		}
		if res.Bigram.Best().EncryptionKey() == key {
			point.BigramHits++
		}
		rankSum += float64(res.Unigram.Position(key.Inverse()))
		if res.Unigram.Normalized && len(res.Unigram.Scores) > 1 {
			ratioSum += res.Unigram.Scores[1].Ratio
			ratios++
		}
	}
	point.MeanTrueRank = rankSum / float64(trials)
	if ratios > 0 {
		point.MeanBestRatio = ratioSum / float64(ratios)
	}
	return point, nil
}
