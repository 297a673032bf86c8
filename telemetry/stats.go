// Package telemetry records optimizer runs: per-evaluation CSV samples,
// improvement bookmarks, batch score statistics, phase timings and a top-N
// leaderboard.
package telemetry

import (
	"log/slog"
	"math"
	"sort"
)

// ScoreStats holds aggregated statistics over one batch of feasible scores.
type ScoreStats struct {
	Count int     `csv:"count"`
	Mean  float64 `csv:"mean"`
	Std   float64 `csv:"std"`
	P10   float64 `csv:"p10"`
	P50   float64 `csv:"p50"`
	P90   float64 `csv:"p90"`
	Best  float64 `csv:"best"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeScoreStats aggregates a batch of scores. Maximise selects which end
// of the distribution counts as Best.
func ComputeScoreStats(scores []float64, maximise bool) ScoreStats {
	n := len(scores)
	if n == 0 {
		return ScoreStats{}
	}

	var sum float64
	for _, v := range scores {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiffSum float64
	for _, v := range scores {
		d := v - mean
		sqDiffSum += d * d
	}
	std := math.Sqrt(sqDiffSum / float64(n))

	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	best := sorted[n-1]
	if !maximise {
		best = sorted[0]
	}

	return ScoreStats{
		Count: n,
		Mean:  mean,
		Std:   std,
		P10:   Percentile(sorted, 0.10),
		P50:   Percentile(sorted, 0.50),
		P90:   Percentile(sorted, 0.90),
		Best:  best,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s ScoreStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("best", s.Best),
	)
}
