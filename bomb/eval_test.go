package bomb

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/gas"
	"github.com/pthm-cable/atmosim/tank"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	m.Run()
}

// plasmaArgs is the canonical plasma + oxygen search setup used across the
// evaluator tests.
func plasmaArgs() *Args {
	return &Args{
		MixGases:        []gas.Gas{gas.Plasma},
		PrimerGases:     []gas.Gas{gas.Oxygen},
		RoundTempTo:     0.01,
		RoundPressureTo: 0.1,
		RoundRatioTo:    0.001,
		TickCap:         100,
		Target:          FieldRadius,
		Maximise:        true,
	}
}

func TestEvaluatePlasmaFire(t *testing.T) {
	a := plasmaArgs()
	res, err := Evaluate(a, []float64{500, 500, 500, 2000})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if !res.Feasible {
		t.Fatal("unrestricted evaluation reported infeasible")
	}
	d := res.Data
	if d.Ticks <= 0 {
		t.Errorf("ticks: got %d, want > 0", d.Ticks)
	}
	if d.Radius < 0 {
		t.Errorf("radius: got %v, want >= 0", d.Radius)
	}
	if math.Abs(d.PrePressure-2000) > 1 {
		t.Errorf("pre-sim pressure: got %v, want ~2000", d.PrePressure)
	}
	if d.PreTemperature != 500 {
		t.Errorf("pre-sim temperature: got %v, want 500", d.PreTemperature)
	}
	// Plasma fire must have run: the fuel is partially burned.
	if got := d.PreMix.Moles(gas.Plasma); got <= 0 {
		t.Errorf("pre-sim snapshot lost its plasma: %v", got)
	}
	if d.State == tank.Intact && d.Tank.Mix.Moles(gas.Plasma) >= d.PreMix.Moles(gas.Plasma) {
		t.Error("no plasma was burned during simulation")
	}
}

func TestEvaluateRoundsParams(t *testing.T) {
	a := plasmaArgs()
	res, err := Evaluate(a, []float64{500.004, 499.996, 500.0049, 2000.04})
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{500, 500, 500.0, 2000.0}
	for i, w := range want {
		if math.Abs(res.Data.Params[i]-w) > 1e-9 {
			t.Errorf("param %d: got %v, want %v", i, res.Data.Params[i], w)
		}
	}
}

func TestEvaluateEmptyGases(t *testing.T) {
	a := plasmaArgs()
	a.PrimerGases = nil
	if _, err := Evaluate(a, []float64{500, 500, 500, 2000}); !errors.Is(err, ErrNoGases) {
		t.Errorf("expected ErrNoGases, got %v", err)
	}
}

func TestEvaluateParamCountMismatch(t *testing.T) {
	a := plasmaArgs()
	if _, err := Evaluate(a, []float64{500, 500}); err == nil {
		t.Error("short parameter vector accepted")
	}
}

func TestEvaluatePreRestrictionInfeasible(t *testing.T) {
	a := plasmaArgs()
	a.PreRestrictions = []Restriction{{Field: FieldPrePressure, Op: OpLess, Value: 1000}}

	res, err := Evaluate(a, []float64{500, 500, 500, 2000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Feasible {
		t.Fatal("restricted evaluation reported feasible")
	}
	if !math.IsInf(res.Score, -1) {
		t.Errorf("maximising sentinel: got %v, want -Inf", res.Score)
	}
	// Pre-sim failure skips the simulation entirely.
	if res.Data.Ticks != 0 {
		t.Errorf("infeasible bomb was simulated for %d ticks", res.Data.Ticks)
	}
}

func TestEvaluateMinimiseSentinel(t *testing.T) {
	a := plasmaArgs()
	a.Maximise = false
	a.PostRestrictions = []Restriction{{Field: FieldRadius, Op: OpGreater, Value: 1e9}}

	res, err := Evaluate(a, []float64{500, 500, 500, 2000})
	if err != nil {
		t.Fatal(err)
	}
	if res.Feasible {
		t.Fatal("restricted evaluation reported feasible")
	}
	if !math.IsInf(res.Score, 1) {
		t.Errorf("minimising sentinel: got %v, want +Inf", res.Score)
	}
}

func TestEvaluateMeasureBefore(t *testing.T) {
	a := plasmaArgs()
	a.MeasureBefore = true

	res, err := Evaluate(a, []float64{500, 450, 293.15, 2000})
	if err != nil {
		t.Fatal(err)
	}
	// The snapshot covers the fuel mix alone at half the total pressure.
	if math.Abs(res.Data.PrePressure-1000) > 1 {
		t.Errorf("pre-sim pressure: got %v, want ~1000", res.Data.PrePressure)
	}
	if res.Data.PreTemperature != 450 {
		t.Errorf("pre-sim temperature: got %v, want 450", res.Data.PreTemperature)
	}
}

func TestEvaluateRatioSplit(t *testing.T) {
	a := plasmaArgs()
	a.PrimerGases = []gas.Gas{gas.Tritium, gas.Oxygen}

	// A primer ratio of +1 in log2 space gives oxygen twice tritium's moles.
	res, err := Evaluate(a, []float64{500, 500, 293.15, 2000, 1})
	if err != nil {
		t.Fatal(err)
	}
	pre := res.Data.PreMix
	trit := pre.Moles(gas.Tritium)
	oxy := pre.Moles(gas.Oxygen)
	if trit <= 0 || oxy <= 0 {
		t.Fatalf("primer gases missing: tritium %v, oxygen %v", trit, oxy)
	}
	if math.Abs(oxy/trit-2) > 1e-6 {
		t.Errorf("oxygen/tritium ratio: got %v, want 2", oxy/trit)
	}
}

func TestEvaluateGroupPressureBudget(t *testing.T) {
	a := plasmaArgs()
	a.PrimerGases = []gas.Gas{gas.Tritium, gas.Oxygen}

	res, err := Evaluate(a, []float64{500, 500, 500, 2000, 0})
	if err != nil {
		t.Fatal(err)
	}
	// With every group at the target temperature, the merged pressure is the
	// requested total.
	if got := res.Data.PrePressure; math.Abs(got-2000) > 1 {
		t.Errorf("total pressure: got %v, want ~2000", got)
	}
}

func TestFieldValueAndParse(t *testing.T) {
	d := &Data{
		Ticks:          7,
		Radius:         3.5,
		FinPressure:    4000,
		FinTemperature: 900,
		State:          tank.Exploded,
	}

	cases := []struct {
		name string
		want float64
	}{
		{"radius", 3.5},
		{"ticks", 7},
		{"fin_pressure", 4000},
		{"fin_temperature", 900},
		{"state", float64(tank.Exploded)},
	}
	for _, tc := range cases {
		f, err := ParseField(tc.name)
		if err != nil {
			t.Errorf("ParseField(%q): %v", tc.name, err)
			continue
		}
		if got := d.Value(f); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}

	if _, err := ParseField("yield"); err == nil {
		t.Error("ParseField accepted an unknown field")
	}
}
