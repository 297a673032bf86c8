package telemetry

import (
	"strconv"
	"strings"

	"github.com/pthm-cable/atmosim/bomb"
)

// SampleRecord is one evaluated candidate, flattened for CSV export.
type SampleRecord struct {
	Eval      int64   `csv:"eval"`
	ElapsedMS int64   `csv:"elapsed_ms"`
	Score     float64 `csv:"score"`
	Feasible  bool    `csv:"feasible"`
	State     string  `csv:"state"`
	Radius    float64 `csv:"radius"`
	Ticks     int     `csv:"ticks"`
	FinPress  float64 `csv:"fin_pressure"`
	FinTemp   float64 `csv:"fin_temperature"`
	Params    string  `csv:"params"`
}

// NewSampleRecord flattens an evaluation result. Infeasible results with no
// bomb data yield a record with empty outcome fields.
func NewSampleRecord(eval int64, elapsedMS int64, res bomb.Result) SampleRecord {
	rec := SampleRecord{
		Eval:      eval,
		ElapsedMS: elapsedMS,
		Score:     res.Score,
		Feasible:  res.Feasible,
	}
	if d := res.Data; d != nil {
		rec.State = d.State.String()
		rec.Radius = d.Radius
		rec.Ticks = d.Ticks
		rec.FinPress = d.FinPressure
		rec.FinTemp = d.FinTemperature
		rec.Params = formatParams(d.Params)
	}
	return rec
}

// TraceRecord is one simulation tick in a replay trace.
type TraceRecord struct {
	Tick        int     `csv:"tick"`
	State       string  `csv:"state"`
	Pressure    float64 `csv:"pressure"`
	Temperature float64 `csv:"temperature"`
	TotalMoles  float64 `csv:"total_moles"`
	Reacted     bool    `csv:"reacted"`
}

func formatParams(params []float64) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}
