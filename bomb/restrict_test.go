package bomb

import (
	"testing"

	"github.com/pthm-cable/atmosim/tank"
)

func TestParseRestrictions(t *testing.T) {
	rs, err := ParseRestrictions("radius>=10,ticks<30,state=exploded")
	if err != nil {
		t.Fatal(err)
	}
	if len(rs) != 3 {
		t.Fatalf("got %d restrictions, want 3", len(rs))
	}

	want := []Restriction{
		{FieldRadius, OpGreaterEq, 10},
		{FieldTicks, OpLess, 30},
		{FieldState, OpEq, float64(tank.Exploded)},
	}
	for i, w := range want {
		if rs[i] != w {
			t.Errorf("restriction %d: got %+v, want %+v", i, rs[i], w)
		}
	}
}

func TestParseRestrictionsEmpty(t *testing.T) {
	rs, err := ParseRestrictions("")
	if err != nil || rs != nil {
		t.Errorf("empty input: got %v, %v", rs, err)
	}
}

func TestParseRestrictionsErrors(t *testing.T) {
	cases := []string{
		"radius",              // no operator
		"yield>=10",           // unknown field
		"radius>=big",         // bad value
		"state=melted",        // unknown state
		"radius>=10,,ticks<3", // empty conjunct
	}
	for _, s := range cases {
		if _, err := ParseRestrictions(s); err == nil {
			t.Errorf("ParseRestrictions(%q) accepted malformed input", s)
		}
	}
}

func TestRestrictionHolds(t *testing.T) {
	d := &Data{Radius: 12, Ticks: 20, State: tank.Exploded}

	cases := []struct {
		expr string
		want bool
	}{
		{"radius>=10", true},
		{"radius>12", false},
		{"radius<=12", true},
		{"ticks=20", true},
		{"ticks<20", false},
		{"state=exploded", true},
		{"state=ruptured", false},
		{"state>=ruptured", true},
	}
	for _, tc := range cases {
		rs, err := ParseRestrictions(tc.expr)
		if err != nil {
			t.Errorf("%q: %v", tc.expr, err)
			continue
		}
		if got := rs[0].Holds(d); got != tc.want {
			t.Errorf("%q: got %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestHoldsAllConjunction(t *testing.T) {
	d := &Data{Radius: 12, Ticks: 20}

	rs, err := ParseRestrictions("radius>=10,ticks<=20")
	if err != nil {
		t.Fatal(err)
	}
	if !HoldsAll(rs, d) {
		t.Error("satisfied conjunction reported false")
	}

	rs, err = ParseRestrictions("radius>=10,ticks<20")
	if err != nil {
		t.Fatal(err)
	}
	if HoldsAll(rs, d) {
		t.Error("violated conjunction reported true")
	}

	if !HoldsAll(nil, d) {
		t.Error("empty conjunction reported false")
	}
}

func TestRestrictionString(t *testing.T) {
	r := Restriction{FieldRadius, OpGreaterEq, 10}
	if got := r.String(); got != "radius>=10" {
		t.Errorf("String: got %q", got)
	}
	r = Restriction{FieldState, OpEq, float64(tank.Exploded)}
	if got := r.String(); got != "state=exploded" {
		t.Errorf("String: got %q", got)
	}
}
