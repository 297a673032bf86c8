package bomb

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/gas"
	"github.com/pthm-cable/atmosim/tank"
)

// ErrNoGases reports an empty mix or primer gas group.
var ErrNoGases = errors.New("mix and primer gas groups must be non-empty")

// Args configures bomb evaluation. The parameter vector layout is
// [target_temp, mix_temp, primer_temp, pressure, mix ratios..., primer
// ratios...], with one ratio per gas beyond the first in each group.
type Args struct {
	MixGases    []gas.Gas
	PrimerGases []gas.Gas

	// MeasureBefore captures the pre-sim pressure/temperature snapshot from
	// the fuel mix alone, before the primer is merged in.
	MeasureBefore bool

	RoundTempTo     float64
	RoundPressureTo float64
	RoundRatioTo    float64

	TickCap  int
	Target   Field
	Maximise bool

	PreRestrictions  []Restriction
	PostRestrictions []Restriction
}

// Validate checks the gas groups.
func (a *Args) Validate() error {
	if len(a.MixGases) == 0 || len(a.PrimerGases) == 0 {
		return ErrNoGases
	}
	return nil
}

// ParamCount returns the parameter vector dimension for these args.
func (a *Args) ParamCount() int {
	return 4 + (len(a.MixGases) - 1) + (len(a.PrimerGases) - 1)
}

// CoordNames returns a display name per parameter coordinate.
func (a *Args) CoordNames() []string {
	names := []string{"target_temp", "mix_temp", "primer_temp", "pressure"}
	for _, g := range a.MixGases[1:] {
		names = append(names, "mix_ratio_"+g.String())
	}
	for _, g := range a.PrimerGases[1:] {
		names = append(names, "primer_ratio_"+g.String())
	}
	return names
}

// Resolution returns the rounding granularity of coordinate i. The optimizer
// stops recursing once every box side is at or below its resolution.
func (a *Args) Resolution(i int) float64 {
	switch {
	case i < 3:
		return a.RoundTempTo
	case i == 3:
		return a.RoundPressureTo
	default:
		return a.RoundRatioTo
	}
}

// Infeasible returns the sentinel score for evaluations that violate a
// restriction or fail numerically.
func (a *Args) Infeasible() float64 {
	if a.Maximise {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Better reports whether score x strictly improves on y per the direction.
func (a *Args) Better(x, y float64) bool {
	if a.Maximise {
		return x > y
	}
	return x < y
}

// Result is one evaluation outcome. Score holds the sentinel when the
// candidate is infeasible; NumericFailure marks NaN/Inf mixture state.
type Result struct {
	Data           *Data
	Score          float64
	Feasible       bool
	NumericFailure bool
}

// Evaluate builds a bomb from the parameter vector, simulates it and scores
// it. Pure given fixed global configuration; restriction failures and numeric
// failures are reported in the Result, not as errors.
func Evaluate(a *Args, params []float64) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	if len(params) != a.ParamCount() {
		return Result{}, fmt.Errorf("parameter vector has %d coordinates, want %d", len(params), a.ParamCount())
	}

	rounded := make([]float64, len(params))
	for i, p := range params {
		rounded[i] = roundTo(p, a.Resolution(i))
	}

	targetTemp := rounded[0]
	mixTemp := rounded[1]
	primerTemp := rounded[2]
	pressure := rounded[3]
	nMixRatios := len(a.MixGases) - 1
	mixRatios := rounded[4 : 4+nMixRatios]
	primerRatios := rounded[4+nMixRatios:]

	volume := config.Cfg().Tank.Volume
	mix := buildGroup(a.MixGases, mixRatios, mixTemp, pressure/2, volume)
	primer := buildGroup(a.PrimerGases, primerRatios, primerTemp, pressure/2, volume)

	d := &Data{
		MixGases:    a.MixGases,
		PrimerGases: a.PrimerGases,
		Params:      rounded,
	}

	if a.MeasureBefore {
		d.PrePressure = mix.Pressure()
		d.PreTemperature = mix.Temperature
	}
	mix.Merge(&primer)
	mix.SetTemperature(targetTemp)
	if !a.MeasureBefore {
		d.PrePressure = mix.Pressure()
		d.PreTemperature = mix.Temperature
	}
	d.PreMix = mix
	d.Tank = tank.New(mix)

	if !HoldsAll(a.PreRestrictions, d) {
		return Result{Data: d, Score: a.Infeasible()}, nil
	}

	d.Ticks = d.Tank.TickN(a.TickCap)
	d.State = d.Tank.State
	d.FinPressure = d.Tank.FinalPressure
	if d.State == tank.Intact {
		d.FinPressure = d.Tank.Mix.Pressure()
	}
	d.FinTemperature = d.Tank.Mix.Temperature
	d.Radius = d.Tank.CalcRadius()

	if !finite(d.FinPressure) || !finite(d.FinTemperature) || !finite(d.Radius) {
		return Result{Data: d, Score: a.Infeasible(), NumericFailure: true}, nil
	}
	if !HoldsAll(a.PostRestrictions, d) {
		return Result{Data: d, Score: a.Infeasible()}, nil
	}

	score := d.Value(a.Target)
	if !finite(score) {
		return Result{Data: d, Score: a.Infeasible(), NumericFailure: true}, nil
	}
	return Result{Data: d, Score: score, Feasible: true}, nil
}

// buildGroup fills a fresh mixture with the group's gases at the given
// partial pressure. The first gas carries unit weight; each further gas
// carries exp2 of its ratio coordinate. Weights are normalized so the group
// total satisfies n = P*V/(R*T).
func buildGroup(gases []gas.Gas, ratios []float64, temperature, pressure, volume float64) gas.Mixture {
	m := gas.NewMixture(volume, temperature)
	total := pressure * volume / (config.Cfg().Atmospherics.R * m.Temperature)
	if total <= 0 {
		return m
	}

	weights := make([]float64, len(gases))
	weights[0] = 1
	sum := 1.0
	for i, r := range ratios {
		w := math.Exp2(r)
		weights[i+1] = w
		sum += w
	}
	for i, g := range gases {
		m.SetMoles(g, total*weights[i]/sum)
	}
	return m
}

func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
