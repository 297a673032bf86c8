package reaction

import (
	"testing"

	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/gas"
)

func TestMain(m *testing.M) {
	config.MustInit("")
	m.Run()
}

func mixture(temp float64, moles map[gas.Gas]float64) gas.Mixture {
	m := gas.NewMixture(config.Cfg().Tank.Volume, temp)
	for g, v := range moles {
		m.SetMoles(g, v)
	}
	return m
}

// ---------- plasma fire ----------

func TestPlasmaFireBurns(t *testing.T) {
	m := mixture(500, map[gas.Gas]float64{gas.Oxygen: 1, gas.Plasma: 1})

	if !plasmaFire(&m) {
		t.Fatal("plasma fire did not ignite at 500 K")
	}
	if got := m.Moles(gas.Plasma); got >= 1 {
		t.Errorf("plasma not consumed: %v", got)
	}
	if got := m.Moles(gas.Oxygen); got >= 1 {
		t.Errorf("oxygen not consumed: %v", got)
	}
	// O2/plasma ratio of 1 is far below the supersaturation band.
	if got := m.Moles(gas.CarbonDioxide); got <= 0 {
		t.Errorf("no carbon dioxide produced: %v", got)
	}
	if got := m.Moles(gas.Tritium); got != 0 {
		t.Errorf("tritium produced below supersaturation: %v", got)
	}
	if m.Temperature <= 500 {
		t.Errorf("combustion did not heat the mixture: %v K", m.Temperature)
	}
}

func TestPlasmaFireSupersaturation(t *testing.T) {
	m := mixture(500, map[gas.Gas]float64{gas.Oxygen: 100, gas.Plasma: 1})

	if !plasmaFire(&m) {
		t.Fatal("plasma fire did not ignite")
	}
	if got := m.Moles(gas.Tritium); got <= 0 {
		t.Errorf("supersaturated burn produced no tritium: %v", got)
	}
	if got := m.Moles(gas.CarbonDioxide); got != 0 {
		t.Errorf("supersaturated burn produced carbon dioxide: %v", got)
	}
}

func TestPlasmaFireBelowIgnition(t *testing.T) {
	m := mixture(300, map[gas.Gas]float64{gas.Oxygen: 1, gas.Plasma: 1})
	orig := m

	if plasmaFire(&m) {
		t.Fatal("plasma fire ignited below the fire temperature")
	}
	if m != orig {
		t.Error("failed predicate mutated the mixture")
	}
}

func TestPlasmaFireUntouchedGases(t *testing.T) {
	m := mixture(500, map[gas.Gas]float64{
		gas.Oxygen: 1, gas.Plasma: 1, gas.Nitrogen: 7, gas.Frezon: 0.001,
	})

	if !plasmaFire(&m) {
		t.Fatal("plasma fire did not ignite")
	}
	if got := m.Moles(gas.Nitrogen); got != 7 {
		t.Errorf("nitrogen changed: %v", got)
	}
	if got := m.Moles(gas.Frezon); got != 0.001 {
		t.Errorf("frezon changed: %v", got)
	}
}

// ---------- tritium fire ----------

func TestTritiumFireOxyburn(t *testing.T) {
	// Thermal energy 120 J/K * 600 K = 72 kJ, below the oxyburn floor:
	// the burned fuel oxidizes to water vapor.
	m := mixture(600, map[gas.Gas]float64{gas.Tritium: 10, gas.Oxygen: 1})

	if !tritiumFire(&m) {
		t.Fatal("tritium fire did not ignite at 600 K")
	}
	if got := m.Moles(gas.WaterVapor); got <= 0 {
		t.Errorf("no water vapor produced: %v", got)
	}
	if got := m.Moles(gas.Hydrogen); got != 0 {
		t.Errorf("hydrogen produced below the oxyburn floor: %v", got)
	}
	if got := m.Moles(gas.Oxygen); got >= 1 {
		t.Errorf("oxygen not consumed: %v", got)
	}
}

func TestTritiumFireHydrogen(t *testing.T) {
	// Thermal energy 120 J/K * 1400 K = 168 kJ, above the oxyburn floor:
	// the fuel survives as hydrogen and oxygen is untouched.
	m := mixture(1400, map[gas.Gas]float64{gas.Tritium: 10, gas.Oxygen: 1})

	if !tritiumFire(&m) {
		t.Fatal("tritium fire did not ignite at 1400 K")
	}
	if got := m.Moles(gas.Hydrogen); got <= 0 {
		t.Errorf("no hydrogen produced: %v", got)
	}
	if got := m.Moles(gas.Oxygen); got != 1 {
		t.Errorf("oxygen consumed above the oxyburn floor: %v", got)
	}
}

// ---------- frezon ----------

func TestFrezonCoolantLowersTemperature(t *testing.T) {
	m := mixture(300, map[gas.Gas]float64{gas.Nitrogen: 10, gas.Frezon: 1})

	if !frezonCoolant(&m) {
		t.Fatal("frezon coolant did not fire")
	}
	if m.Temperature >= 300 {
		t.Errorf("coolant did not lower temperature: %v K", m.Temperature)
	}
	if got := m.Moles(gas.NitrousOxide); got <= 0 {
		t.Errorf("no nitrous oxide produced: %v", got)
	}
	if got := m.Moles(gas.Frezon); got >= 1 {
		t.Errorf("frezon not consumed: %v", got)
	}
}

func TestFrezonCoolantTickSequence(t *testing.T) {
	m := mixture(300, map[gas.Gas]float64{gas.Nitrogen: 10, gas.Frezon: 1})

	prev := m.Temperature
	for i := 0; i < 5; i++ {
		if !Tick(&m) {
			break
		}
		if m.Temperature >= prev {
			t.Fatalf("tick %d: temperature did not decrease (%v -> %v)", i, prev, m.Temperature)
		}
		prev = m.Temperature
	}
}

func TestFrezonCoolantNeedsNitrogenRatio(t *testing.T) {
	m := mixture(300, map[gas.Gas]float64{gas.Nitrogen: 1, gas.Frezon: 1})
	orig := m

	if frezonCoolant(&m) {
		t.Fatal("coolant fired below the nitrogen ratio")
	}
	if m != orig {
		t.Error("failed predicate mutated the mixture")
	}
}

func TestFrezonProduction(t *testing.T) {
	m := mixture(50, map[gas.Gas]float64{
		gas.Oxygen: 10, gas.Tritium: 5, gas.Nitrogen: 20,
	})

	if !frezonProduction(&m) {
		t.Fatal("frezon production did not fire at 50 K")
	}
	if got := m.Moles(gas.Frezon); got <= 0 {
		t.Errorf("no frezon produced: %v", got)
	}
	if got := m.Moles(gas.Oxygen); got >= 10 {
		t.Errorf("oxygen not consumed: %v", got)
	}
}

func TestFrezonProductionTooHot(t *testing.T) {
	m := mixture(200, map[gas.Gas]float64{
		gas.Oxygen: 10, gas.Tritium: 5, gas.Nitrogen: 20,
	})
	if frezonProduction(&m) {
		t.Error("frezon production fired above the production temperature")
	}
}

// ---------- decompositions ----------

func TestN2ODecomposition(t *testing.T) {
	m := mixture(900, map[gas.Gas]float64{gas.NitrousOxide: 10})

	if !n2oDecomposition(&m) {
		t.Fatal("N2O decomposition did not fire at 900 K")
	}
	if got := m.Moles(gas.NitrousOxide); got != 5 {
		t.Errorf("nitrous oxide: got %v, want 5", got)
	}
	if got := m.Moles(gas.Nitrogen); got != 5 {
		t.Errorf("nitrogen: got %v, want 5", got)
	}
	if got := m.Moles(gas.Oxygen); got != 2.5 {
		t.Errorf("oxygen: got %v, want 2.5", got)
	}
}

func TestNitriumDecomposition(t *testing.T) {
	m := mixture(300, map[gas.Gas]float64{gas.Nitrium: 10})

	if !nitriumDecomposition(&m) {
		t.Fatal("nitrium decomposition did not fire at 300 K")
	}
	if got := m.Moles(gas.Nitrium); got >= 10 {
		t.Errorf("nitrium not consumed: %v", got)
	}
	if got := m.Moles(gas.WaterVapor); got <= 0 {
		t.Errorf("no water vapor produced: %v", got)
	}
	if m.Temperature <= 300 {
		t.Errorf("decomposition did not heat the mixture: %v K", m.Temperature)
	}
}

func TestNitriumStableWhenHot(t *testing.T) {
	m := mixture(400, map[gas.Gas]float64{gas.Nitrium: 10})
	if nitriumDecomposition(&m) {
		t.Error("nitrium decomposed above its stability temperature")
	}
}

// ---------- tick invariants ----------

func TestTickEmptyMixture(t *testing.T) {
	m := gas.NewMixture(config.Cfg().Tank.Volume, 500)
	if Tick(&m) {
		t.Error("empty mixture reported a reaction")
	}
}

func TestTickInvariants(t *testing.T) {
	mixtures := []gas.Mixture{
		mixture(500, map[gas.Gas]float64{gas.Oxygen: 50, gas.Plasma: 30, gas.Tritium: 5}),
		mixture(1200, map[gas.Gas]float64{gas.Tritium: 40, gas.Oxygen: 2}),
		mixture(300, map[gas.Gas]float64{gas.Nitrogen: 20, gas.Frezon: 3, gas.Nitrium: 4}),
		mixture(900, map[gas.Gas]float64{gas.NitrousOxide: 15, gas.Plasma: 1, gas.Oxygen: 80}),
	}

	tcmb := config.Cfg().Atmospherics.TCMB
	for mi, m := range mixtures {
		for tick := 0; tick < 20; tick++ {
			Tick(&m)
			for g := gas.Gas(0); g < gas.Count; g++ {
				if m.Moles(g) < 0 {
					t.Fatalf("mixture %d tick %d: negative %s moles %v", mi, tick, g, m.Moles(g))
				}
			}
			if m.Temperature < tcmb {
				t.Fatalf("mixture %d tick %d: temperature %v below TCMB", mi, tick, m.Temperature)
			}
		}
	}
}
