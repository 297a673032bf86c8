package bomb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm-cable/atmosim/tank"
)

// Op is a comparison operator in a restriction.
type Op uint8

const (
	OpLess Op = iota
	OpLessEq
	OpEq
	OpGreaterEq
	OpGreater
)

// String returns the operator symbol.
func (o Op) String() string {
	switch o {
	case OpLess:
		return "<"
	case OpLessEq:
		return "<="
	case OpEq:
		return "="
	case OpGreaterEq:
		return ">="
	case OpGreater:
		return ">"
	}
	return "?"
}

// Restriction filters bombs by comparing one field against a constant.
// A list of restrictions is conjunctive.
type Restriction struct {
	Field Field
	Op    Op
	Value float64
}

// String renders the restriction in the parse grammar.
func (r Restriction) String() string {
	if r.Field == FieldState {
		return fmt.Sprintf("%s%s%s", r.Field, r.Op, tank.State(r.Value))
	}
	return fmt.Sprintf("%s%s%s", r.Field, r.Op, strconv.FormatFloat(r.Value, 'g', -1, 64))
}

// Holds reports whether the bomb satisfies the restriction.
func (r Restriction) Holds(d *Data) bool {
	v := d.Value(r.Field)
	switch r.Op {
	case OpLess:
		return v < r.Value
	case OpLessEq:
		return v <= r.Value
	case OpEq:
		return v == r.Value
	case OpGreaterEq:
		return v >= r.Value
	case OpGreater:
		return v > r.Value
	}
	return false
}

// HoldsAll reports whether every restriction holds.
func HoldsAll(rs []Restriction, d *Data) bool {
	for _, r := range rs {
		if !r.Holds(d) {
			return false
		}
	}
	return true
}

// ParseRestrictions parses a comma-separated conjunction such as
// "radius>=10,ticks<30,state=exploded". An empty string yields nil.
func ParseRestrictions(s string) ([]Restriction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	rs := make([]Restriction, 0, len(parts))
	for _, part := range parts {
		r, err := parseRestriction(part)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return rs, nil
}

var opSymbols = []struct {
	sym string
	op  Op
}{
	// Two-character operators first so "<=" does not parse as "<".
	{"<=", OpLessEq},
	{">=", OpGreaterEq},
	{"<", OpLess},
	{">", OpGreater},
	{"=", OpEq},
}

func parseRestriction(s string) (Restriction, error) {
	s = strings.TrimSpace(s)
	for _, cand := range opSymbols {
		idx := strings.Index(s, cand.sym)
		if idx < 0 {
			continue
		}
		field, err := ParseField(s[:idx])
		if err != nil {
			return Restriction{}, fmt.Errorf("restriction %q: %w", s, err)
		}
		valStr := strings.TrimSpace(s[idx+len(cand.sym):])
		var value float64
		if field == FieldState {
			st, err := tank.ParseState(valStr)
			if err != nil {
				return Restriction{}, fmt.Errorf("restriction %q: %w", s, err)
			}
			value = float64(st)
		} else {
			value, err = strconv.ParseFloat(valStr, 64)
			if err != nil {
				return Restriction{}, fmt.Errorf("restriction %q: bad value %q", s, valStr)
			}
		}
		return Restriction{Field: field, Op: cand.op, Value: value}, nil
	}
	return Restriction{}, fmt.Errorf("restriction %q: no comparison operator", s)
}
