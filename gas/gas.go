// Package gas defines the gas registry and the well-mixed gas mixture that
// reactions and tanks operate on.
package gas

import (
	"fmt"
	"strings"
)

// Gas identifies one of the simulated gases.
type Gas uint8

const (
	Oxygen Gas = iota
	Nitrogen
	Plasma
	Tritium
	CarbonDioxide
	WaterVapor
	NitrousOxide
	Frezon
	Nitrium
	Hydrogen
	Healium
	ProtoNitrate
	BZ
	Pluoxium

	// Count is the number of gases; valid Gas values are below it.
	Count
)

// names holds display names, indexed by Gas.
var names = [Count]string{
	Oxygen:        "oxygen",
	Nitrogen:      "nitrogen",
	Plasma:        "plasma",
	Tritium:       "tritium",
	CarbonDioxide: "carbon_dioxide",
	WaterVapor:    "water_vapor",
	NitrousOxide:  "nitrous_oxide",
	Frezon:        "frezon",
	Nitrium:       "nitrium",
	Hydrogen:      "hydrogen",
	Healium:       "healium",
	ProtoNitrate:  "proto_nitrate",
	BZ:            "bz",
	Pluoxium:      "pluoxium",
}

// specificHeats holds specific heat in J/(mol*K), indexed by Gas.
var specificHeats = [Count]float64{
	Oxygen:        20,
	Nitrogen:      20,
	Plasma:        200,
	Tritium:       10,
	CarbonDioxide: 30,
	WaterVapor:    40,
	NitrousOxide:  40,
	Frezon:        600,
	Nitrium:       10,
	Hydrogen:      15,
	Healium:       10,
	ProtoNitrate:  30,
	BZ:            20,
	Pluoxium:      80,
}

// byName maps display name to Gas, built once at init.
var byName = func() map[string]Gas {
	m := make(map[string]Gas, Count)
	for g := Gas(0); g < Count; g++ {
		m[names[g]] = g
	}
	return m
}()

// String returns the display name.
func (g Gas) String() string {
	if g >= Count {
		return fmt.Sprintf("gas(%d)", uint8(g))
	}
	return names[g]
}

// SpecificHeat returns the gas's specific heat in J/(mol*K).
func (g Gas) SpecificHeat() float64 {
	return specificHeats[g]
}

// Parse resolves a display name to a Gas.
func Parse(name string) (Gas, error) {
	g, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown gas %q (available: %s)", name, Names())
	}
	return g, nil
}

// ParseList parses a comma-separated gas list, preserving order.
func ParseList(s string) ([]Gas, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	gases := make([]Gas, 0, len(parts))
	seen := make(map[Gas]bool, len(parts))
	for _, p := range parts {
		g, err := Parse(p)
		if err != nil {
			return nil, err
		}
		if seen[g] {
			return nil, fmt.Errorf("duplicate gas %q", g)
		}
		seen[g] = true
		gases = append(gases, g)
	}
	return gases, nil
}

// Names returns a comma-separated list of all gas names.
func Names() string {
	all := make([]string, Count)
	for g := Gas(0); g < Count; g++ {
		all[g] = names[g]
	}
	return strings.Join(all, ", ")
}
