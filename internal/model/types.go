// Package model defines shared data structures.
package model

import "time"

// AnalyzeConfig defines analysis settings.
type AnalyzeConfig struct {
	Top       int
	Normalize bool
	Plot      bool
	Fold      bool
	Workers   int
	Tables    string
	Save      bool
}

// BenchConfig defines key-recovery benchmark settings.
type BenchConfig struct {
	Lengths  []int
	Trials   int
	Seed     int64
	Wordlist string
	Workers  int
	Tables   string
}

// HistoryFilter selects saved runs.
type HistoryFilter struct {
	Label string
	Since *time.Time
	Last  int
}

// RunRecord captures one saved analysis.
type RunRecord struct {
	ID            string
	Label         string
	CreatedAt     time.Time
	Tables        string
	Letters       int
	IC            float64
	BestKey       int
	BestChi       float64
	BigramBestKey int
	BigramBestChi float64
}

// RunScore stores both chi-square scores of one key in a saved run.
type RunScore struct {
	Key       int
	Chi       float64
	ChiBigram float64
}

// BenchPoint summarizes key recovery at one input length.
type BenchPoint struct {
	Length        int
	Trials        int
	UnigramHits   int
	BigramHits    int
	MeanTrueRank  float64
	MeanBestRatio float64
}
