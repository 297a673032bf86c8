package bomb

import (
	"fmt"
	"strings"
)

// toleranceMaxSteps bounds the per-direction widening walk so unbounded
// plateaus terminate.
const toleranceMaxSteps = 10000

// Interval is the tolerance band of one parameter coordinate: the widest
// [Low, High] around the best value within which the score stays acceptable.
type Interval struct {
	Name  string
	Value float64
	Low   float64
	High  float64
}

// String renders the interval as "name: value (low .. high)".
func (iv Interval) String() string {
	return fmt.Sprintf("%s: %g (%g .. %g)", iv.Name, iv.Value, iv.Low, iv.High)
}

// MeasureTolerances perturbs each coordinate of the bomb's parameter vector
// independently, widening in rounding-granularity steps until the re-evaluated
// score degrades past tol times the bomb's own score. Coordinates are
// restored between measurements; the evaluator is reused unchanged.
func MeasureTolerances(a *Args, d *Data, tol float64) ([]Interval, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	base, err := Evaluate(a, d.Params)
	if err != nil {
		return nil, err
	}
	if !base.Feasible {
		return nil, fmt.Errorf("bomb is infeasible under the given restrictions")
	}

	names := a.CoordNames()
	intervals := make([]Interval, len(d.Params))
	params := make([]float64, len(d.Params))
	for i, v := range d.Params {
		iv := Interval{Name: names[i], Value: v, Low: v, High: v}
		step := a.Resolution(i)
		if step <= 0 {
			step = 1e-3
		}

		for _, sign := range []float64{1, -1} {
			for n := 1; n <= toleranceMaxSteps; n++ {
				copy(params, d.Params)
				params[i] = v + sign*float64(n)*step
				res, err := Evaluate(a, params)
				if err != nil {
					return nil, err
				}
				if !res.Feasible || !acceptable(a, res.Score, base.Score, tol) {
					break
				}
				if sign > 0 {
					iv.High = params[i]
				} else {
					iv.Low = params[i]
				}
			}
		}
		intervals[i] = iv
	}
	return intervals, nil
}

// acceptable reports whether a perturbed score stays within the tolerance
// fraction of the reference score, per the optimization direction.
func acceptable(a *Args, score, best, tol float64) bool {
	if a.Maximise {
		return score >= best*tol
	}
	if tol <= 0 {
		return true
	}
	return score <= best/tol
}

// FormatTolerances renders one interval per line.
func FormatTolerances(intervals []Interval) string {
	lines := make([]string, len(intervals))
	for i, iv := range intervals {
		lines[i] = iv.String()
	}
	return strings.Join(lines, "\n")
}
