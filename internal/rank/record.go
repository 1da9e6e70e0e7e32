package rank

import (
	"time"

	"github.com/verte-zerg/shiftscope/internal/metrics"
	"github.com/verte-zerg/shiftscope/internal/model"
)

// Record flattens r into the rows saved in analysis history.
func (r Result) Record(label, tables string, at time.Time) (model.RunRecord, []model.RunScore) {
	best := r.Unigram.Best()
	bigramBest := r.Bigram.Best()
	rec := model.RunRecord{
		Label:         label,
		CreatedAt:     at,
		Tables:        tables,
		Letters:       r.Letters,
		IC:            r.IC,
		BestKey:       int(best.Key),
		BestChi:       best.Value,
		BigramBestKey: int(bigramBest.Key),
		BigramBestChi: bigramBest.Value,
	}
	scores := make([]model.RunScore, len(r.ChiByKey))
	for k := range r.ChiByKey {
		scores[k] = model.RunScore{Key: k, Chi: r.ChiByKey[k], ChiBigram: r.ChiBigramByKey[k]}
	}
	return rec, scores
}

// FromScores rebuilds the rankings of a saved run.
func FromScores(scores []model.RunScore) (unigram, bigram Ranking) {
	maxKey := -1
	for _, sc := range scores {
		if sc.Key > maxKey {
			maxKey = sc.Key
		}
	}
	chi := make([]float64, maxKey+1)
	bi := make([]float64, maxKey+1)
	for _, sc := range scores {
		chi[sc.Key] = sc.Chi
		bi[sc.Key] = sc.ChiBigram
	}
	return Sort(metrics.NameChiSquare, chi), Sort(metrics.NameChiBigram, bi)
}
