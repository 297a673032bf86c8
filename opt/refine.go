package opt

import (
	"math"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/atmosim/bomb"
)

// Refine polishes a feasible result with a local Nelder-Mead descent inside
// the original bounds. Points outside the bounds are clipped before
// evaluation, so the simplex cannot wander out of the feasible box. Returns
// the input unchanged when the descent finds nothing better.
func Refine(args *bomb.Args, best bomb.Result, lower, upper []float64, budget time.Duration) (bomb.Result, error) {
	if !best.Feasible {
		return best, nil
	}

	sign := 1.0
	if args.Maximise {
		sign = -1
	}
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clipped := make([]float64, len(x))
			for i := range x {
				clipped[i] = math.Min(math.Max(x[i], lower[i]), upper[i])
			}
			res, err := bomb.Evaluate(args, clipped)
			if err != nil || !res.Feasible {
				return math.Inf(1)
			}
			return sign * res.Score
		},
	}
	settings := &optimize.Settings{
		Runtime:   budget,
		Converger: &optimize.FunctionConverge{Absolute: 1e-6, Iterations: 50},
	}

	result, err := optimize.Minimize(problem, best.Data.Params, settings, &optimize.NelderMead{})
	if err != nil {
		return best, err
	}

	for i := range result.X {
		result.X[i] = math.Min(math.Max(result.X[i], lower[i]), upper[i])
	}
	refined, err := bomb.Evaluate(args, result.X)
	if err != nil {
		return best, err
	}
	if refined.Feasible && args.Better(refined.Score, best.Score) {
		return refined, nil
	}
	return best, nil
}
