package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one optimizer batch.
const (
	PhaseSample    = "sample"
	PhaseEvaluate  = "evaluate"
	PhaseRank      = "rank"
	PhaseTelemetry = "telemetry"
)

// PerfSample holds timing data for a single batch.
type PerfSample struct {
	BatchDuration time.Duration
	Evaluations   int
	Phases        map[string]time.Duration
}

// PerfCollector tracks batch timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	currentEvals  int
	batchStart    time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a collector averaging over windowSize batches.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 32
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartBatch begins timing a new sample batch.
func (p *PerfCollector) StartBatch() {
	p.batchStart = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.currentEvals = 0
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndBatch finishes the current batch and records the sample.
func (p *PerfCollector) EndBatch(evaluations int) {
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		BatchDuration: now.Sub(p.batchStart),
		Evaluations:   evaluations,
		Phases:        p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated batch statistics.
type PerfStats struct {
	AvgBatchDuration time.Duration
	MinBatchDuration time.Duration
	MaxBatchDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	EvalsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var totalBatch time.Duration
	var minBatch, maxBatch time.Duration
	var totalEvals int
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		totalBatch += s.BatchDuration
		totalEvals += s.Evaluations

		if i == 0 || s.BatchDuration < minBatch {
			minBatch = s.BatchDuration
		}
		if s.BatchDuration > maxBatch {
			maxBatch = s.BatchDuration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avgBatch := totalBatch / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avgBatch > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avgBatch) * 100
		}
	}

	var evalsPerSec float64
	if totalBatch > 0 {
		evalsPerSec = float64(totalEvals) / totalBatch.Seconds()
	}

	return PerfStats{
		AvgBatchDuration: avgBatch,
		MinBatchDuration: minBatch,
		MaxBatchDuration: maxBatch,
		PhaseAvg:         phaseAvg,
		PhasePct:         phasePct,
		EvalsPerSecond:   evalsPerSec,
	}
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_batch_us", s.AvgBatchDuration.Microseconds(),
		"min_batch_us", s.MinBatchDuration.Microseconds(),
		"max_batch_us", s.MaxBatchDuration.Microseconds(),
		"evals_per_sec", int(s.EvalsPerSecond),
	}

	phases := []string{PhaseSample, PhaseEvaluate, PhaseRank, PhaseTelemetry}
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_batch_us", s.AvgBatchDuration.Microseconds()),
		slog.Int64("min_batch_us", s.MinBatchDuration.Microseconds()),
		slog.Int64("max_batch_us", s.MaxBatchDuration.Microseconds()),
		slog.Float64("evals_per_sec", s.EvalsPerSecond),
	}
	for phase, pct := range s.PhasePct {
		attrs = append(attrs, slog.Float64(phase+"_pct", pct))
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Eval         int64   `csv:"eval"`
	AvgBatchUS   int64   `csv:"avg_batch_us"`
	MinBatchUS   int64   `csv:"min_batch_us"`
	MaxBatchUS   int64   `csv:"max_batch_us"`
	EvalsPerSec  float64 `csv:"evals_per_sec"`
	SamplePct    float64 `csv:"sample_pct"`
	EvaluatePct  float64 `csv:"evaluate_pct"`
	RankPct      float64 `csv:"rank_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(eval int64) PerfStatsCSV {
	return PerfStatsCSV{
		Eval:         eval,
		AvgBatchUS:   s.AvgBatchDuration.Microseconds(),
		MinBatchUS:   s.MinBatchDuration.Microseconds(),
		MaxBatchUS:   s.MaxBatchDuration.Microseconds(),
		EvalsPerSec:  s.EvalsPerSecond,
		SamplePct:    s.PhasePct[PhaseSample],
		EvaluatePct:  s.PhasePct[PhaseEvaluate],
		RankPct:      s.PhasePct[PhaseRank],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
