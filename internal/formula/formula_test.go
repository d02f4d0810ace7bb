package formula

import (
	"errors"
	"testing"
)

func chainTestFormula() *Formula {
	f := &Formula{
		ID:    "test",
		Order: []ID{"a", "b", "c", "d"},
		Vars: map[ID]*Variable{
			"a": {ID: "a", Value: 1, Mantissa: 1, UnitRatio: 1},
			"b": {ID: "b", Value: 2, Mantissa: 2, UnitRatio: 1},
			"c": {ID: "c", Value: 3, Mantissa: 3, UnitRatio: 1},
			"d": {ID: "d", Value: 4, Mantissa: 4, UnitRatio: 1},
		},
	}
	f.RefreshPrefixes()
	return f
}

func assertOrder(t *testing.T, f *Formula, want ...ID) {
	t.Helper()
	if len(f.Order) != len(want) {
		t.Fatalf("order = %v, want %v", f.Order, want)
	}
	for i := range want {
		if f.Order[i] != want[i] {
			t.Fatalf("order = %v, want %v", f.Order, want)
		}
	}
}

func TestReorder_MovesVariableToEnd(t *testing.T) {
	f := chainTestFormula()

	if err := f.Reorder("b"); err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	assertOrder(t, f, "a", "c", "d", "b")
}

func TestReorder_PreviousLastSitsDirectlyBefore(t *testing.T) {
	f := chainTestFormula()

	if err := f.Reorder("b"); err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	last := f.Order[len(f.Order)-1]
	beforeLast := f.Order[len(f.Order)-2]
	if last != "b" || beforeLast != "d" {
		t.Fatalf("chain tail = [%s %s], want [d b]", beforeLast, last)
	}
}

func TestReorder_LastElementIsStable(t *testing.T) {
	f := chainTestFormula()

	if err := f.Reorder("d"); err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	assertOrder(t, f, "a", "b", "c", "d")
}

func TestReorder_RefreshesPrefixMarkers(t *testing.T) {
	f := chainTestFormula()

	if err := f.Reorder("a"); err != nil {
		t.Fatalf("Reorder returned error: %v", err)
	}

	assertOrder(t, f, "b", "c", "d", "a")
	for id, want := range map[ID]Prefix{
		"b": PrefixInput,
		"c": PrefixNone,
		"d": PrefixNone,
		"a": PrefixOutput,
	} {
		if got := f.Vars[id].Prefix; got != want {
			t.Fatalf("prefix of %q = %q, want %q", id, got, want)
		}
	}
}

func TestReorder_UnknownVariable(t *testing.T) {
	f := chainTestFormula()

	if err := f.Reorder("z"); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("Reorder(z) error = %v, want ErrUnknownVariable", err)
	}
	assertOrder(t, f, "a", "b", "c", "d")
}

func TestClone_IsIndependent(t *testing.T) {
	f := chainTestFormula()
	c := f.Clone()

	if err := c.Reorder("a"); err != nil {
		t.Fatalf("Reorder on clone returned error: %v", err)
	}
	c.Vars["b"].Value = 99

	assertOrder(t, f, "a", "b", "c", "d")
	if f.Vars["b"].Value != 2 {
		t.Fatalf("original b.Value = %v, want 2", f.Vars["b"].Value)
	}
	if f.Vars["a"].Prefix != PrefixInput {
		t.Fatalf("original a.Prefix = %q, want %q", f.Vars["a"].Prefix, PrefixInput)
	}
}

func TestCatalogClone_IsIndependent(t *testing.T) {
	cat := &Catalog{
		Order: []string{"g"},
		Groups: map[string]*Group{
			"g": {
				ID:       "g",
				Name:     "Group",
				Order:    []string{"test"},
				Formulas: map[string]*Formula{"test": chainTestFormula()},
			},
		},
	}

	dup := cat.Clone()
	dupFormula, err := dup.Formula("g", "test")
	if err != nil {
		t.Fatalf("clone lookup failed: %v", err)
	}
	dupFormula.Vars["a"].Value = -1

	original, err := cat.Formula("g", "test")
	if err != nil {
		t.Fatalf("original lookup failed: %v", err)
	}
	if original.Vars["a"].Value != 1 {
		t.Fatalf("original a.Value = %v, want 1", original.Vars["a"].Value)
	}
}

func TestCatalogFormula_UnknownIDs(t *testing.T) {
	cat := &Catalog{Groups: map[string]*Group{}}

	if _, err := cat.Formula("nope", "test"); !errors.Is(err, ErrUnknownFormula) {
		t.Fatalf("unknown group error = %v, want ErrUnknownFormula", err)
	}

	cat.Groups["g"] = &Group{ID: "g", Formulas: map[string]*Formula{}}
	if _, err := cat.Formula("g", "nope"); !errors.Is(err, ErrUnknownFormula) {
		t.Fatalf("unknown formula error = %v, want ErrUnknownFormula", err)
	}
}
