package gas

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/atmosim/config"
)

// Mixture is a well-mixed volume of gas. The zero value is an empty mixture
// at 0 K with no volume; use NewMixture for a usable instance.
type Mixture struct {
	moles       [Count]float64
	Temperature float64 // Kelvin
	Volume      float64 // liters, fixed per instance
}

// NewMixture creates an empty mixture with the given volume and temperature.
// Temperature is clamped to TCMB.
func NewMixture(volume, temperature float64) Mixture {
	m := Mixture{Volume: volume, Temperature: temperature}
	m.ClampTemperature()
	return m
}

// Moles returns the mole count of a gas.
func (m *Mixture) Moles(g Gas) float64 {
	return m.moles[g]
}

// SetMoles sets the mole count of a gas, clamping at zero.
func (m *Mixture) SetMoles(g Gas, v float64) {
	if v < 0 {
		v = 0
	}
	m.moles[g] = v
}

// AdjustMoles adds delta to the mole count of a gas, clamping at zero.
func (m *Mixture) AdjustMoles(g Gas, delta float64) {
	m.SetMoles(g, m.moles[g]+delta)
}

// TotalMoles returns the sum of all mole counts.
func (m *Mixture) TotalMoles() float64 {
	var total float64
	for g := Gas(0); g < Count; g++ {
		total += m.moles[g]
	}
	return total
}

// HeatCapacity returns the mixture heat capacity in J/K.
func (m *Mixture) HeatCapacity() float64 {
	var c float64
	for g := Gas(0); g < Count; g++ {
		c += m.moles[g] * specificHeats[g]
	}
	return c
}

// ThermalEnergy returns temperature times heat capacity.
func (m *Mixture) ThermalEnergy() float64 {
	return m.Temperature * m.HeatCapacity()
}

// Pressure returns the ideal-gas pressure in kPa, or 0 for an empty mixture.
func (m *Mixture) Pressure() float64 {
	total := m.TotalMoles()
	if total <= 0 || m.Volume <= 0 {
		return 0
	}
	// n*R*T/V with V in liters; J/L = kPa
	return total * config.Cfg().Atmospherics.R * m.Temperature / m.Volume
}

// SetTemperature sets the temperature, clamped to TCMB.
func (m *Mixture) SetTemperature(t float64) {
	m.Temperature = t
	m.ClampTemperature()
}

// ClampTemperature enforces the TCMB floor.
func (m *Mixture) ClampTemperature() {
	if tcmb := config.Cfg().Atmospherics.TCMB; m.Temperature < tcmb {
		m.Temperature = tcmb
	}
}

// Merge absorbs other into m. The resulting temperature is the heat-capacity
// weighted mix; if the combined capacity is inert the temperature is
// unchanged. Volume is unchanged (the absorbed mixture is discarded).
func (m *Mixture) Merge(other *Mixture) {
	cSelf := m.HeatCapacity()
	cOther := other.HeatCapacity()
	if cTotal := cSelf + cOther; cTotal > config.Cfg().Atmospherics.MinimumHeatCapacity {
		m.Temperature = (m.Temperature*cSelf + other.Temperature*cOther) / cTotal
	}
	for g := Gas(0); g < Count; g++ {
		m.moles[g] += other.moles[g]
	}
	m.ClampTemperature()
}

// Scale multiplies every mole count by factor. Temperature is unchanged.
func (m *Mixture) Scale(factor float64) {
	if factor < 0 {
		factor = 0
	}
	for g := Gas(0); g < Count; g++ {
		m.moles[g] *= factor
	}
}

// RemoveRatio transfers ratio of every gas into a new mixture with the same
// temperature and volume.
func (m *Mixture) RemoveRatio(ratio float64) Mixture {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	out := Mixture{Temperature: m.Temperature, Volume: m.Volume}
	for g := Gas(0); g < Count; g++ {
		moved := m.moles[g] * ratio
		out.moles[g] = moved
		m.moles[g] -= moved
	}
	return out
}

// Clear removes all gas, keeping temperature and volume.
func (m *Mixture) Clear() {
	m.moles = [Count]float64{}
}

// Status returns a human-readable summary: temperature, pressure and the
// non-trace per-gas moles.
func (m *Mixture) Status() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.2f K, %.1f kPa", m.Temperature, m.Pressure())
	for g := Gas(0); g < Count; g++ {
		if m.moles[g] >= 0.005 {
			fmt.Fprintf(&b, ", %s: %.2f mol", g, m.moles[g])
		}
	}
	return b.String()
}
