package telemetry

import (
	"encoding/json"
	"sort"

	"github.com/pthm-cable/atmosim/bomb"
)

// LeaderboardEntry is one ranked candidate kept for the final report.
type LeaderboardEntry struct {
	Score      float64 `json:"score"`
	Eval       int64   `json:"eval"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	State      string  `json:"state"`
	Radius     float64 `json:"radius"`
	Ticks      int     `json:"ticks"`
	Serialized string  `json:"serialized"`
}

// Leaderboard keeps the top-N feasible candidates seen during a run.
type Leaderboard struct {
	entries  []LeaderboardEntry
	maxSize  int
	maximise bool
}

// NewLeaderboard creates a leaderboard holding up to maxSize entries.
func NewLeaderboard(maxSize int, maximise bool) *Leaderboard {
	if maxSize < 1 {
		maxSize = 10
	}
	return &Leaderboard{
		entries:  make([]LeaderboardEntry, 0, maxSize),
		maxSize:  maxSize,
		maximise: maximise,
	}
}

// Consider offers a result; it is kept when it ranks inside the top N.
// Returns true if the entry was admitted.
func (lb *Leaderboard) Consider(eval int64, elapsedMS int64, res bomb.Result) bool {
	if lb == nil || !res.Feasible || res.Data == nil {
		return false
	}
	if len(lb.entries) == lb.maxSize && !lb.better(res.Score, lb.entries[len(lb.entries)-1].Score) {
		return false
	}

	entry := LeaderboardEntry{
		Score:      res.Score,
		Eval:       eval,
		ElapsedMS:  elapsedMS,
		State:      res.Data.State.String(),
		Radius:     res.Data.Radius,
		Ticks:      res.Data.Ticks,
		Serialized: res.Data.Serialize(),
	}
	lb.entries = append(lb.entries, entry)
	sort.SliceStable(lb.entries, func(a, b int) bool {
		return lb.better(lb.entries[a].Score, lb.entries[b].Score)
	})
	if len(lb.entries) > lb.maxSize {
		lb.entries = lb.entries[:lb.maxSize]
	}
	return true
}

func (lb *Leaderboard) better(a, b float64) bool {
	if lb.maximise {
		return a > b
	}
	return a < b
}

// Entries returns the ranked entries, best first.
func (lb *Leaderboard) Entries() []LeaderboardEntry {
	if lb == nil {
		return nil
	}
	return lb.entries
}

// MarshalJSON renders the ranked entries.
func (lb *Leaderboard) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(lb.entries, "", "  ")
}
