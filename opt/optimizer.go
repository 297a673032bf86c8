// Package opt implements the recursive bounded sampler that searches the
// bomb parameter space: sample a hyperrectangle uniformly, rank the results,
// then recurse into shrunken boxes around the best candidates.
package opt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/atmosim/bomb"
	"github.com/pthm-cable/atmosim/telemetry"
)

// samplesPerDim scales the per-recursion batch size with dimensionality.
const samplesPerDim = 16

// progressInterval is the minimum spacing between progress log lines.
const progressInterval = 2 * time.Second

// Options configures a search. Lower and Upper must have one entry per
// parameter coordinate of Args.
type Options struct {
	Lower []float64
	Upper []float64

	MaxRuntime   time.Duration
	SampleRounds int     // candidates recursed into per level, and batch-size factor
	BoundsScale  float64 // child box side as a fraction of the parent side
	NThreads     int     // 0 means GOMAXPROCS
	Seed         uint64
	LogLevel     int // 0 silent, 1 progress, 2 numeric-failure warnings
	Logger       *slog.Logger

	// OnEvaluation and OnImprovement are optional telemetry hooks, invoked
	// from the coordinator goroutine only.
	OnEvaluation  func(params []float64, res bomb.Result)
	OnImprovement func(res bomb.Result, evals int64, elapsed time.Duration)

	// Perf, when set, records per-batch phase timings.
	Perf *telemetry.PerfCollector
}

// Optimizer holds the search state. Workers share only the evaluation
// channels; best is guarded by mu.
type Optimizer struct {
	args *bomb.Args
	opts Options
	dim  int

	pool *pool
	rng  *rand.Rand
	log  *slog.Logger

	mu    sync.Mutex
	best  bomb.Result
	evals int64

	start   time.Time
	lastLog time.Time
}

// New validates options against the evaluation args.
func New(args *bomb.Args, opts Options) (*Optimizer, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	dim := args.ParamCount()
	if len(opts.Lower) != dim || len(opts.Upper) != dim {
		return nil, fmt.Errorf("bounds have %d/%d coordinates, want %d", len(opts.Lower), len(opts.Upper), dim)
	}
	for i := range opts.Lower {
		if opts.Lower[i] > opts.Upper[i] {
			return nil, fmt.Errorf("lower bound %g above upper bound %g in coordinate %d", opts.Lower[i], opts.Upper[i], i)
		}
	}
	if opts.SampleRounds <= 0 {
		return nil, errors.New("sample rounds must be positive")
	}
	if opts.BoundsScale <= 0 || opts.BoundsScale >= 1 {
		return nil, fmt.Errorf("bounds scale %g outside (0, 1)", opts.BoundsScale)
	}
	if opts.MaxRuntime <= 0 {
		return nil, errors.New("max runtime must be positive")
	}
	if opts.NThreads <= 0 {
		opts.NThreads = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	o := &Optimizer{
		args: args,
		opts: opts,
		dim:  dim,
		pool: newPool(args, opts.NThreads),
		rng:  rand.New(rand.NewSource(opts.Seed)),
		log:  logger,
	}
	o.best.Score = args.Infeasible()
	return o, nil
}

// Best returns a copy of the current best result. Data is nil until a
// feasible candidate has been seen.
func (o *Optimizer) Best() bomb.Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.best
}

// Evaluations returns the number of evaluations performed so far.
func (o *Optimizer) Evaluations() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.evals
}

// Run searches until the runtime budget, the resolution floor, or context
// cancellation. It returns the best result found; Feasible is false when no
// candidate survived the restrictions.
func (o *Optimizer) Run(ctx context.Context) (bomb.Result, error) {
	o.start = time.Now()
	o.lastLog = o.start
	if o.opts.NThreads > 1 {
		o.pool.start()
		defer o.pool.stop()
	}

	err := o.recurse(ctx, o.opts.Lower, o.opts.Upper, o.opts.MaxRuntime)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return o.Best(), err
	}

	best := o.Best()
	if o.opts.LogLevel >= 1 {
		o.log.Info("search finished",
			"evaluations", o.Evaluations(),
			"elapsed", time.Since(o.start).Round(time.Millisecond),
			"feasible", best.Feasible,
			"best_score", best.Score)
	}
	return best, nil
}

func (o *Optimizer) recurse(ctx context.Context, lower, upper []float64, budget time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if time.Since(o.start) >= o.opts.MaxRuntime || budget <= 0 {
		return nil
	}
	if o.resolved(lower, upper) {
		return nil
	}
	nodeStart := time.Now()
	perf := o.opts.Perf

	if perf != nil {
		perf.StartBatch()
		perf.StartPhase(telemetry.PhaseSample)
	}
	batch := o.sample(lower, upper)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseEvaluate)
	}
	results, err := o.evaluate(batch)
	if err != nil {
		return err
	}

	if perf != nil {
		perf.StartPhase(telemetry.PhaseTelemetry)
	}
	o.absorb(batch, results)
	o.logProgress(results, lower, upper)

	if perf != nil {
		perf.StartPhase(telemetry.PhaseRank)
	}
	ranked := make([]int, len(results))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return o.args.Better(results[ranked[a]].Score, results[ranked[b]].Score)
	})
	if perf != nil {
		perf.EndBatch(len(results))
	}

	side := make([]float64, o.dim)
	floats.SubTo(side, upper, lower)
	floats.Scale(o.opts.BoundsScale, side)

	recursed := 0
	for _, idx := range ranked {
		if recursed >= o.opts.SampleRounds {
			break
		}
		if !results[idx].Feasible {
			break
		}
		remaining := budget - time.Since(nodeStart)
		if remaining <= 0 || time.Since(o.start) >= o.opts.MaxRuntime {
			break
		}
		childBudget := remaining / time.Duration(o.opts.SampleRounds-recursed)
		childLower, childUpper := o.childBounds(batch[idx], side)
		if err := o.recurse(ctx, childLower, childUpper, childBudget); err != nil {
			return err
		}
		recursed++
	}
	return nil
}

// sample draws the batch uniformly from the box. K scales with dimension and
// sample rounds so deeper recursion levels keep the same selection pressure.
func (o *Optimizer) sample(lower, upper []float64) [][]float64 {
	k := samplesPerDim * o.dim * o.opts.SampleRounds
	dists := make([]distuv.Uniform, o.dim)
	for i := range dists {
		dists[i] = distuv.Uniform{Min: lower[i], Max: upper[i], Src: o.rng}
	}
	batch := make([][]float64, k)
	for s := range batch {
		v := make([]float64, o.dim)
		for i := range v {
			if dists[i].Max > dists[i].Min {
				v[i] = dists[i].Rand()
			} else {
				v[i] = dists[i].Min
			}
		}
		batch[s] = v
	}
	return batch
}

// evaluate runs the batch inline for one thread (keeps fixed-seed runs
// reproducible) or through the worker pool otherwise.
func (o *Optimizer) evaluate(batch [][]float64) ([]bomb.Result, error) {
	if o.opts.NThreads == 1 {
		results := make([]bomb.Result, len(batch))
		for i, params := range batch {
			res, err := bomb.Evaluate(o.args, params)
			if err != nil {
				return nil, err
			}
			results[i] = res
		}
		return results, nil
	}
	return o.pool.evalBatch(batch)
}

// absorb folds a batch into the shared best and fires telemetry hooks.
func (o *Optimizer) absorb(batch [][]float64, results []bomb.Result) {
	for i, res := range results {
		if o.opts.OnEvaluation != nil {
			o.opts.OnEvaluation(batch[i], res)
		}
		if res.NumericFailure && o.opts.LogLevel >= 2 {
			o.log.Warn("evaluation failed numerically", "params", batch[i])
		}

		o.mu.Lock()
		o.evals++
		improved := res.Feasible && (!o.best.Feasible || o.args.Better(res.Score, o.best.Score))
		if improved {
			o.best = res
		}
		evals := o.evals
		o.mu.Unlock()

		if improved && o.opts.OnImprovement != nil {
			o.opts.OnImprovement(res, evals, time.Since(o.start))
		}
	}
}

func (o *Optimizer) logProgress(results []bomb.Result, lower, upper []float64) {
	if o.opts.LogLevel < 1 || time.Since(o.lastLog) < progressInterval {
		return
	}
	o.lastLog = time.Now()

	feasible := make([]float64, 0, len(results))
	for _, res := range results {
		if res.Feasible {
			feasible = append(feasible, res.Score)
		}
	}
	sides := make([]float64, len(lower))
	floats.SubTo(sides, upper, lower)

	best := o.Best()
	attrs := []any{
		"evaluations", o.Evaluations(),
		"elapsed", time.Since(o.start).Round(time.Millisecond),
		"feasible_in_batch", len(feasible),
		"batch_size", len(results),
		"box_side", floats.Max(sides),
		"best_score", best.Score,
	}
	if len(feasible) > 0 {
		attrs = append(attrs,
			"batch_mean", stat.Mean(feasible, nil),
			"batch_stddev", stat.StdDev(feasible, nil))
	}
	o.log.Info("search progress", attrs...)
}

// resolved reports whether every box side has shrunk to its coordinate's
// rounding resolution, below which further narrowing cannot change results.
func (o *Optimizer) resolved(lower, upper []float64) bool {
	for i := range lower {
		res := o.args.Resolution(i)
		if res <= 0 {
			res = 1e-9
		}
		if upper[i]-lower[i] > res {
			return false
		}
	}
	return true
}

// childBounds centers a shrunken box on the candidate, clipped to the
// original search bounds.
func (o *Optimizer) childBounds(center, side []float64) ([]float64, []float64) {
	lower := make([]float64, o.dim)
	upper := make([]float64, o.dim)
	for i := range center {
		lower[i] = center[i] - side[i]/2
		upper[i] = center[i] + side[i]/2
		if lower[i] < o.opts.Lower[i] {
			lower[i] = o.opts.Lower[i]
		}
		if upper[i] > o.opts.Upper[i] {
			upper[i] = o.opts.Upper[i]
		}
	}
	return lower, upper
}
