// Package bomb builds candidate tank bombs from optimizer parameter vectors,
// simulates them, and scores the outcome.
package bomb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm-cable/atmosim/gas"
	"github.com/pthm-cable/atmosim/tank"
)

// Data is the full record of one evaluated bomb: the inputs that built it,
// the pre-sim mixture snapshot, and the simulation outcome.
type Data struct {
	MixGases    []gas.Gas
	PrimerGases []gas.Gas
	Params      []float64 // rounded parameter vector actually simulated

	PreMix gas.Mixture // mixture snapshot before simulation
	Tank   *tank.Tank

	Ticks          int
	Radius         float64
	FinPressure    float64
	FinTemperature float64
	PrePressure    float64
	PreTemperature float64
	State          tank.State
}

// Field identifies an inspectable Data attribute for targets and
// restrictions.
type Field uint8

const (
	FieldRadius Field = iota
	FieldTicks
	FieldFinPressure
	FieldFinTemperature
	FieldPrePressure
	FieldPreTemperature
	FieldState
)

var fieldNames = map[Field]string{
	FieldRadius:         "radius",
	FieldTicks:          "ticks",
	FieldFinPressure:    "fin_pressure",
	FieldFinTemperature: "fin_temperature",
	FieldPrePressure:    "pre_pressure",
	FieldPreTemperature: "pre_temperature",
	FieldState:          "state",
}

// String returns the field name.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range fieldNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Value returns the numeric value of a field. States compare by ordinal
// (intact < ruptured < exploded).
func (d *Data) Value(f Field) float64 {
	switch f {
	case FieldRadius:
		return d.Radius
	case FieldTicks:
		return float64(d.Ticks)
	case FieldFinPressure:
		return d.FinPressure
	case FieldFinTemperature:
		return d.FinTemperature
	case FieldPrePressure:
		return d.PrePressure
	case FieldPreTemperature:
		return d.PreTemperature
	case FieldState:
		return float64(d.State)
	}
	return 0
}

// PrintFull returns a multi-line report of the bomb.
func (d *Data) PrintFull() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mix gases: %s\n", gasListString(d.MixGases))
	fmt.Fprintf(&b, "Primer gases: %s\n", gasListString(d.PrimerGases))
	fmt.Fprintf(&b, "Initial mixture: %s\n", d.PreMix.Status())
	fmt.Fprintf(&b, "Ticks: %d\n", d.Ticks)
	fmt.Fprintf(&b, "Final state: %s\n", d.State)
	fmt.Fprintf(&b, "Final pressure: %.1f kPa\n", d.FinPressure)
	fmt.Fprintf(&b, "Final temperature: %.2f K\n", d.FinTemperature)
	fmt.Fprintf(&b, "Radius: %.2f", d.Radius)
	return b.String()
}

func gasListString(gases []gas.Gas) string {
	parts := make([]string, len(gases))
	for i, g := range gases {
		parts[i] = g.String()
	}
	return strings.Join(parts, ",")
}

const serialTag = "asim1"

// Serialize encodes the bomb as a printable string sufficient to round-trip:
// gas lists, the pre-sim mixture, and the parameter vector.
func (d *Data) Serialize() string {
	var b strings.Builder
	b.WriteString(serialTag)
	b.WriteByte('|')
	b.WriteString(gasListString(d.MixGases))
	b.WriteByte('|')
	b.WriteString(gasListString(d.PrimerGases))
	b.WriteByte('|')
	b.WriteString(formatFloat(d.PreMix.Volume))
	b.WriteByte('|')
	b.WriteString(formatFloat(d.PreMix.Temperature))
	b.WriteByte('|')
	pairs := make([]string, 0, 4)
	for g := gas.Gas(0); g < gas.Count; g++ {
		if moles := d.PreMix.Moles(g); moles > 0 {
			pairs = append(pairs, g.String()+":"+formatFloat(moles))
		}
	}
	b.WriteString(strings.Join(pairs, ","))
	b.WriteByte('|')
	params := make([]string, len(d.Params))
	for i, p := range d.Params {
		params[i] = formatFloat(p)
	}
	b.WriteString(strings.Join(params, ","))
	return b.String()
}

// Deserialize is the inverse of Serialize. The returned Data has a fresh
// intact tank loaded with the encoded mixture, ready to simulate.
func Deserialize(s string) (*Data, error) {
	parts := strings.Split(strings.TrimSpace(s), "|")
	if len(parts) != 7 || parts[0] != serialTag {
		return nil, fmt.Errorf("malformed bomb string: want 7 %q-separated fields with tag %q", "|", serialTag)
	}

	mixGases, err := gas.ParseList(parts[1])
	if err != nil {
		return nil, fmt.Errorf("mix gases: %w", err)
	}
	primerGases, err := gas.ParseList(parts[2])
	if err != nil {
		return nil, fmt.Errorf("primer gases: %w", err)
	}
	volume, err := parseFloat(parts[3])
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	temperature, err := parseFloat(parts[4])
	if err != nil {
		return nil, fmt.Errorf("temperature: %w", err)
	}

	mix := gas.NewMixture(volume, temperature)
	if parts[5] != "" {
		for _, pair := range strings.Split(parts[5], ",") {
			name, molesStr, ok := strings.Cut(pair, ":")
			if !ok {
				return nil, fmt.Errorf("malformed gas pair %q", pair)
			}
			g, err := gas.Parse(name)
			if err != nil {
				return nil, err
			}
			moles, err := parseFloat(molesStr)
			if err != nil {
				return nil, fmt.Errorf("moles of %s: %w", g, err)
			}
			mix.SetMoles(g, moles)
		}
	}

	var params []float64
	if parts[6] != "" {
		for _, p := range strings.Split(parts[6], ",") {
			v, err := parseFloat(p)
			if err != nil {
				return nil, fmt.Errorf("parameter vector: %w", err)
			}
			params = append(params, v)
		}
	}

	return &Data{
		MixGases:       mixGases,
		PrimerGases:    primerGases,
		Params:         params,
		PreMix:         mix,
		Tank:           tank.New(mix),
		PrePressure:    mix.Pressure(),
		PreTemperature: mix.Temperature,
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
