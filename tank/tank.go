// Package tank implements the gas tank state machine: a sealed mixture that
// leaks, ruptures or fragments as reactions drive its pressure up.
package tank

import (
	"fmt"
	"math"

	"github.com/pthm-cable/atmosim/config"
	"github.com/pthm-cable/atmosim/gas"
	"github.com/pthm-cable/atmosim/reaction"
)

// State is the tank lifecycle state. Ruptured and Exploded are terminal.
type State uint8

const (
	Intact State = iota
	Ruptured
	Exploded
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Intact:
		return "intact"
	case Ruptured:
		return "ruptured"
	case Exploded:
		return "exploded"
	}
	return "unknown"
}

// ParseState resolves a state name.
func ParseState(name string) (State, error) {
	switch name {
	case "intact":
		return Intact, nil
	case "ruptured":
		return Ruptured, nil
	case "exploded":
		return Exploded, nil
	}
	return 0, fmt.Errorf("unknown tank state %q", name)
}

// Tank owns a mixture exclusively and tracks rupture timing.
type Tank struct {
	Mix   gas.Mixture
	State State
	Ticks int

	integrity int // ticks spent at or above rupture pressure

	// Final metrics recorded at the terminal transition.
	FinalPressure float64
}

// New wraps a mixture in an intact tank.
func New(mix gas.Mixture) *Tank {
	return &Tank{Mix: mix}
}

// Tick runs one simulation step: apply reactions, then evaluate pressure
// transitions. Returns whether any reaction fired. Terminal tanks are
// left untouched.
func (t *Tank) Tick() bool {
	if t.State != Intact {
		return false
	}
	cfg := config.Cfg()

	fired := reaction.Tick(&t.Mix)
	pressure := t.Mix.Pressure()

	switch {
	case pressure >= cfg.Tank.FragmentPressure:
		t.State = Exploded
		t.FinalPressure = pressure
	case pressure >= cfg.Tank.RupturePressure:
		t.integrity++
		if t.integrity >= cfg.Tank.Integrity {
			t.State = Ruptured
			t.FinalPressure = pressure
			t.Mix.Clear() // vented
		}
	case pressure >= cfg.Tank.LeakPressure:
		t.Mix.Scale(1 - cfg.Tank.LeakRatio)
	}

	t.Ticks++
	return fired
}

// TickN runs up to cap ticks or until a terminal state, returning the number
// of ticks executed.
func (t *Tank) TickN(cap int) int {
	start := t.Ticks
	for t.State == Intact && t.Ticks-start < cap {
		t.Tick()
	}
	return t.Ticks - start
}

// CalcRadius returns the explosion radius from overpressure at the
// fragmentation threshold. Overpressure is clamped to zero before the root;
// rounding is left to callers.
func (t *Tank) CalcRadius() float64 {
	cfg := config.Cfg()
	pressure := t.FinalPressure
	if t.State == Intact {
		pressure = t.Mix.Pressure()
	}
	over := (pressure - cfg.Tank.FragmentPressure) / cfg.Tank.FragmentScale
	if over < 0 {
		over = 0
	}
	return math.Sqrt(over) * cfg.Misc.Tickrate
}

// Status returns a human-readable summary of the contained mixture.
func (t *Tank) Status() string {
	return t.Mix.Status()
}
