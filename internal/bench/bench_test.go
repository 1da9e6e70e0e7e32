package bench

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/verte-zerg/shiftscope/internal/corpus"
	"github.com/verte-zerg/shiftscope/internal/model"
	"github.com/verte-zerg/shiftscope/internal/rank"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunLongTextRecoversKeys(t *testing.T) {
	cfg := model.BenchConfig{Lengths: []int{300}, Trials: 10, Seed: 5}
	points, err := Run(context.Background(), cfg, TextSource(corpus.Sample()), rank.New(rank.WithWorkers(4)))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(points))
	}
	p := points[0]
	if p.Trials != 10 || p.Length != 300 {
		t.Fatalf("unexpected point header: %+v", p)
	}
	if p.UnigramHits < 9 {
		t.Fatalf("expected nearly every key recovered at 300 letters, got %d/10", p.UnigramHits)
	}
	if p.BigramHits < 6 {
		t.Fatalf("expected bigrams to recover most keys at 300 letters, got %d/10", p.BigramHits)
	}
	if p.MeanTrueRank < 1 || p.MeanTrueRank > 2 {
		t.Fatalf("unexpected mean rank %.2f", p.MeanTrueRank)
	}
	if p.MeanBestRatio <= 1 {
		t.Fatalf("runner-up ratio should exceed 1, got %.2f", p.MeanBestRatio)
	}
}

func TestRunIsReproducible(t *testing.T) {
	cfg := model.BenchConfig{Lengths: []int{10, 40}, Trials: 6, Seed: 99, Workers: 2}
	src := WordSource(corpus.SplitWords(corpus.Sample()))
	a, err := Run(context.Background(), cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := Run(context.Background(), cfg, src, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("results differ for the same seed (-first +second):\n%s", diff)
	}
}

func TestRunDefaults(t *testing.T) {
	points, err := Run(context.Background(), model.BenchConfig{Trials: 1}, TextSource(corpus.Sample()), nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(points) != len(DefaultLengths) {
		t.Fatalf("expected %d points, got %d", len(DefaultLengths), len(points))
	}
	for i, p := range points {
		if p.Length != DefaultLengths[i] {
			t.Fatalf("point %d has length %d, want %d", i, p.Length, DefaultLengths[i])
		}
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := Run(ctx, model.BenchConfig{Lengths: []int{1}, Trials: 1}, TextSource(corpus.Sample()), nil); err == nil {
		t.Fatalf("expected error for length 1")
	}
	_, err := Run(ctx, model.BenchConfig{Lengths: []int{10}, Trials: 1}, WordSource([]string{"42"}), nil)
	if !errors.Is(err, ErrNoPlaintext) {
		t.Fatalf("expected ErrNoPlaintext, got %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Run(cancelled, model.BenchConfig{Lengths: []int{10}, Trials: 1}, TextSource(corpus.Sample()), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
