package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/atmosim/bomb"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkImprovement  BookmarkType = "improvement"
	BookmarkBreakthrough BookmarkType = "breakthrough"
)

// breakthroughFactor is the score ratio past which an improvement counts as
// a breakthrough rather than an incremental step.
const breakthroughFactor = 2.0

// Bookmark marks a moment where the search found a better candidate.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Eval        int64        `csv:"eval"`
	ElapsedMS   int64        `csv:"elapsed_ms"`
	Score       float64      `csv:"score"`
	Serialized  string       `csv:"serialized"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"eval", b.Eval,
		"elapsed_ms", b.ElapsedMS,
		"score", b.Score,
		"description", b.Description,
	)
}

// BookmarkDetector classifies best-score improvements.
type BookmarkDetector struct {
	hasPrev   bool
	prevScore float64
	maximise  bool
}

// NewBookmarkDetector creates a detector for the given search direction.
func NewBookmarkDetector(maximise bool) *BookmarkDetector {
	return &BookmarkDetector{maximise: maximise}
}

// Check records an improvement and returns its bookmark. The caller
// guarantees the score strictly improves on the previous best.
func (bd *BookmarkDetector) Check(eval int64, elapsedMS int64, res bomb.Result) Bookmark {
	b := Bookmark{
		Type:      BookmarkImprovement,
		Eval:      eval,
		ElapsedMS: elapsedMS,
		Score:     res.Score,
	}
	if res.Data != nil {
		b.Serialized = res.Data.Serialize()
		b.Description = fmt.Sprintf("score %.4g, %s after %d ticks", res.Score, res.Data.State, res.Data.Ticks)
	}

	if bd.hasPrev && bd.isBreakthrough(res.Score) {
		b.Type = BookmarkBreakthrough
		b.Description = fmt.Sprintf("score jumped %.4g -> %.4g", bd.prevScore, res.Score)
	}
	bd.hasPrev = true
	bd.prevScore = res.Score
	return b
}

func (bd *BookmarkDetector) isBreakthrough(score float64) bool {
	if bd.prevScore == 0 {
		return false
	}
	ratio := score / bd.prevScore
	if !bd.maximise {
		ratio = bd.prevScore / score
	}
	return ratio > breakthroughFactor
}
