// Package reaction implements the ordered gas reaction set. Reactions are
// free functions over a passive mixture; each tests a predicate and mutates
// moles plus temperature through thermal-energy accounting.
package reaction

import (
	"math"

	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/gas"
)

// order is the fixed per-tick application sequence. Each reaction sees the
// mixture as mutated by the ones before it.
var order = []func(*gas.Mixture) bool{
	plasmaFire,
	tritiumFire,
	frezonCoolant,
	frezonProduction,
	n2oDecomposition,
	nitriumDecomposition,
}

// Tick applies every reaction in order and reports whether any fired.
func Tick(m *gas.Mixture) bool {
	fired := false
	for _, react := range order {
		if react(m) {
			fired = true
		}
	}
	return fired
}

// applyEnergy recomputes temperature from the pre-mutation thermal energy
// plus the released energy, divided by the new heat capacity. Inert mixtures
// keep their temperature; the TCMB floor always holds.
func applyEnergy(m *gas.Mixture, energyBefore, deltaE float64) {
	if c := m.HeatCapacity(); c > config.Cfg().Atmospherics.MinimumHeatCapacity {
		m.SetTemperature((energyBefore + deltaE) / c)
	} else {
		m.ClampTemperature()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// plasmaFire burns plasma with oxygen. High oxygen-to-plasma ratios shift
// the product from carbon dioxide toward tritium (supersaturation).
func plasmaFire(m *gas.Mixture) bool {
	cfg := config.Cfg()
	if m.Temperature < cfg.Reactions.PlasmaFireTemp {
		return false
	}
	oxy := m.Moles(gas.Oxygen)
	plasma := m.Moles(gas.Plasma)
	minGas := cfg.Reactions.ReactionMinGas
	if oxy < minGas || plasma < minGas {
		return false
	}

	p := cfg.Plasma
	tScale := clamp01((m.Temperature - p.MinimumBurnTemperature) / (p.UpperTemperature - p.MinimumBurnTemperature))
	if tScale <= 0 {
		return false
	}
	oxyBurn := p.OxygenBurnRateBase - tScale

	var burned float64
	if oxy/plasma > p.OxygenFullburn {
		burned = plasma * tScale / p.BurnRateDelta
	} else {
		burned = (oxy / p.OxygenFullburn) * tScale / p.BurnRateDelta
	}
	burned = math.Min(burned, plasma)
	burned = math.Min(burned, oxy/oxyBurn)
	if burned <= 0 {
		return false
	}

	tritFraction := clamp01((oxy/plasma - cfg.Derived.SuperSaturationEnds) /
		(p.SuperSaturationThreshold - cfg.Derived.SuperSaturationEnds))

	energy := m.ThermalEnergy()
	m.AdjustMoles(gas.Plasma, -burned)
	m.AdjustMoles(gas.Oxygen, -burned*oxyBurn)
	produced := burned * oxyBurn
	m.AdjustMoles(gas.Tritium, produced*tritFraction)
	m.AdjustMoles(gas.CarbonDioxide, produced*(1-tritFraction))

	applyEnergy(m, energy, burned*cfg.Derived.PlasmaFireEnergy)
	return true
}

// tritiumFire burns tritium. Below the oxyburn energy floor the fuel
// oxidizes fully to water vapor; above it the burn is too energetic to
// oxidize and the fuel survives as hydrogen.
func tritiumFire(m *gas.Mixture) bool {
	cfg := config.Cfg()
	if m.Temperature < cfg.Reactions.TritiumFireTemp {
		return false
	}
	trit := m.Moles(gas.Tritium)
	if trit < cfg.Reactions.ReactionMinGas {
		return false
	}

	t := cfg.Tritium
	oxy := m.Moles(gas.Oxygen)
	var burned float64
	if oxy < trit*t.BurnOxyFactor {
		burned = oxy / t.BurnOxyFactor
	} else {
		burned = trit / t.BurnTritFactor * (1 + t.BurnFuelRatio)
	}
	burned = math.Min(burned, trit)
	if burned <= 0 {
		return false
	}

	energy := m.ThermalEnergy()
	m.AdjustMoles(gas.Tritium, -burned)
	if energy < cfg.Tritium.MinimumOxyburnEnergy {
		m.AdjustMoles(gas.Oxygen, -burned)
		m.AdjustMoles(gas.WaterVapor, burned)
	} else {
		m.AdjustMoles(gas.Hydrogen, burned)
	}

	applyEnergy(m, energy, burned*cfg.Derived.TritiumFireEnergy)
	return true
}

// frezonCoolant absorbs heat by converting frezon and nitrogen into nitrous
// oxide. The configured energy release is negative.
func frezonCoolant(m *gas.Mixture) bool {
	cfg := config.Cfg()
	f := cfg.Frezon
	temp := m.Temperature
	if temp < f.CoolLowerTemperature || temp > f.CoolMidTemperature {
		return false
	}
	nit := m.Moles(gas.Nitrogen)
	frz := m.Moles(gas.Frezon)
	minGas := cfg.Reactions.ReactionMinGas
	if nit < minGas || frz < minGas || nit/frz < f.NitrogenCoolRatio {
		return false
	}

	scale := (temp - f.CoolLowerTemperature) / (f.CoolMidTemperature - f.CoolLowerTemperature)
	energyModifier := math.Min(scale*f.CoolMaximumEnergyModifier, 1)
	burn := frz * scale / f.CoolRateModifier
	if burn <= 0 {
		return false
	}

	nitUsed := math.Min(burn*f.NitrogenCoolRatio, nit)
	frzUsed := math.Min(burn, frz)

	energy := m.ThermalEnergy()
	m.AdjustMoles(gas.Nitrogen, -nitUsed)
	m.AdjustMoles(gas.Frezon, -frzUsed)
	m.AdjustMoles(gas.NitrousOxide, nitUsed+frzUsed)

	applyEnergy(m, energy, burn*f.CoolEnergyReleased*energyModifier)
	return true
}

// frezonProduction converts oxygen and tritium into frezon at cryogenic
// temperatures, catalyzed by nitrogen. Energetically neutral.
func frezonProduction(m *gas.Mixture) bool {
	cfg := config.Cfg()
	f := cfg.Frezon
	if m.Temperature > f.ProductionTemp {
		return false
	}
	oxy := m.Moles(gas.Oxygen)
	trit := m.Moles(gas.Tritium)
	nit := m.Moles(gas.Nitrogen)
	minGas := cfg.Reactions.ReactionMinGas
	if oxy < minGas || trit < minGas || nit < minGas {
		return false
	}

	efficiency := clamp01(f.ProductionMaxEfficiencyTemperature / m.Temperature)
	oxyConverted := math.Min(oxy, nit/f.ProductionNitrogenRatio) / f.ProductionConversionRate * efficiency
	if oxyConverted <= 0 {
		return false
	}
	tritConverted := math.Min(trit, oxyConverted/f.ProductionTritRatio)

	m.AdjustMoles(gas.Oxygen, -oxyConverted)
	m.AdjustMoles(gas.Tritium, -tritConverted)
	m.AdjustMoles(gas.Frezon, oxyConverted+tritConverted)
	return true
}

// n2oDecomposition breaks nitrous oxide back into nitrogen and oxygen at
// high temperature.
func n2oDecomposition(m *gas.Mixture) bool {
	cfg := config.Cfg()
	if m.Temperature < cfg.Reactions.N2ODecompositionTemp {
		return false
	}
	n2o := m.Moles(gas.NitrousOxide)
	if n2o < cfg.Reactions.ReactionMinGas {
		return false
	}

	decomposed := n2o * cfg.N2O.DecompositionRate
	m.AdjustMoles(gas.NitrousOxide, -decomposed)
	m.AdjustMoles(gas.Nitrogen, decomposed)
	m.AdjustMoles(gas.Oxygen, decomposed/2)
	return true
}

// nitriumDecomposition breaks nitrium down below its stability temperature,
// releasing heat. Colder mixtures decompose faster.
func nitriumDecomposition(m *gas.Mixture) bool {
	cfg := config.Cfg()
	decompTemp := cfg.Reactions.NitriumDecompositionTemp
	if m.Temperature > decompTemp {
		return false
	}
	nitrium := m.Moles(gas.Nitrium)
	if nitrium < cfg.Reactions.ReactionMinGas {
		return false
	}

	efficiency := clamp01(1 - m.Temperature/decompTemp)
	decomposed := nitrium * efficiency
	if decomposed <= 0 {
		return false
	}

	energy := m.ThermalEnergy()
	m.AdjustMoles(gas.Nitrium, -decomposed)
	m.AdjustMoles(gas.Nitrogen, decomposed)
	m.AdjustMoles(gas.WaterVapor, decomposed)

	applyEnergy(m, energy, decomposed*cfg.Nitrium.DecompositionEnergy)
	return true
}
