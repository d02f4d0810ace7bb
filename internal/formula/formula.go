// Package formula holds the mutable data model of the calculator: formula
// groups, formulas, their variables, and the recalculation chain the
// engine walks after an edit.
package formula

import (
	"errors"
	"fmt"
)

// ErrUnknownFormula reports a group or formula id absent from the catalog.
var ErrUnknownFormula = errors.New("unknown formula")

// ErrUnknownVariable reports a variable id absent from a formula.
var ErrUnknownVariable = errors.New("unknown variable")

// ID identifies a variable within its formula. It is the stable key used
// by dependency references in Derive functions and in the chain.
type ID string

// Func derives one variable's value from the current values of its
// siblings, expressed in default-unit terms. Implementations must be pure
// and total over the formula's own variable ids; out-of-domain inputs
// return NaN rather than panic.
type Func func(vals map[ID]float64) float64

// Prefix is the display marker for a variable's position in the chain.
// It is derived state, refreshed after every reorder.
type Prefix string

const (
	PrefixNone   Prefix = ""
	PrefixInput  Prefix = "input"  // first in the chain, the free input
	PrefixOutput Prefix = "output" // last in the chain, the solved-for target
)

// Variable is one editable quantity of a formula.
type Variable struct {
	ID     ID
	Name   string
	Symbol string

	// Value is the current value in default-unit terms. It is
	// unit-independent; the display unit only affects Mantissa/Exponent.
	Value float64

	// Mantissa and Exponent are the scientific-notation view of Value in
	// the display unit. Exponent is a float64 so an in-progress entry can
	// carry NaN; a completed recalculation always stores an integer.
	Mantissa float64
	Exponent float64

	// Unit is the current display unit and DefaultUnit the unit the
	// Derive functions assume. Both are empty for dimensionless
	// variables.
	Unit        string
	DefaultUnit string

	// UnitRatio is factor(Unit)/factor(DefaultUnit). After every
	// completed recalculation Value == Mantissa * 10^Exponent * UnitRatio.
	UnitRatio float64

	Derive Func
	Prefix Prefix
}

// Formula is a named physical relation between interdependent variables.
type Formula struct {
	ID          string
	Name        string
	Description string

	// Order is the recalculation chain: a permutation of the variable
	// ids. The first element is the free input for the current pass, the
	// last the solved-for target.
	Order []ID
	Vars  map[ID]*Variable
}

// Var returns the variable with the given id.
func (f *Formula) Var(id ID) (*Variable, bool) {
	v, ok := f.Vars[id]
	return v, ok
}

// Snapshot returns the current value of every variable, the working map a
// recalculation pass folds over.
func (f *Formula) Snapshot() map[ID]float64 {
	vals := make(map[ID]float64, len(f.Vars))
	for id, v := range f.Vars {
		vals[id] = v.Value
	}
	return vals
}

// Reorder moves id to the last position of the recalculation chain,
// preserving the relative order of the remaining variables, then refreshes
// the prefix markers. No values are recomputed; the caller recalculates
// afterwards if values must reflect the new chain immediately.
func (f *Formula) Reorder(id ID) error {
	if _, ok := f.Vars[id]; !ok {
		return fmt.Errorf("reorder %q in %q: %w", id, f.ID, ErrUnknownVariable)
	}

	order := make([]ID, 0, len(f.Order))
	for _, v := range f.Order {
		if v != id {
			order = append(order, v)
		}
	}
	f.Order = append(order, id)

	f.RefreshPrefixes()
	return nil
}

// RefreshPrefixes recomputes the display markers: the chain's first
// variable gets PrefixInput, the last PrefixOutput, all others none.
func (f *Formula) RefreshPrefixes() {
	for _, v := range f.Vars {
		v.Prefix = PrefixNone
	}
	if len(f.Order) == 0 {
		return
	}
	f.Vars[f.Order[0]].Prefix = PrefixInput
	f.Vars[f.Order[len(f.Order)-1]].Prefix = PrefixOutput
}

// Clone returns a deep copy of the formula. Derive functions are shared;
// they are pure, so sharing is safe across sessions.
func (f *Formula) Clone() *Formula {
	c := &Formula{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Order:       append([]ID(nil), f.Order...),
		Vars:        make(map[ID]*Variable, len(f.Vars)),
	}
	for id, v := range f.Vars {
		dup := *v
		c.Vars[id] = &dup
	}
	return c
}

// Group is a named collection of formulas with a stable display order.
type Group struct {
	ID       string
	Name     string
	Order    []string
	Formulas map[string]*Formula
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	c := &Group{
		ID:       g.ID,
		Name:     g.Name,
		Order:    append([]string(nil), g.Order...),
		Formulas: make(map[string]*Formula, len(g.Formulas)),
	}
	for id, f := range g.Formulas {
		c.Formulas[id] = f.Clone()
	}
	return c
}

// Catalog is the full formula catalog: groups in display order. It is
// constructed once at startup and then owned by a single session.
type Catalog struct {
	Order  []string
	Groups map[string]*Group
}

// Formula resolves a (group id, formula id) pair.
func (c *Catalog) Formula(groupID, formulaID string) (*Formula, error) {
	g, ok := c.Groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %q: %w", groupID, ErrUnknownFormula)
	}
	f, ok := g.Formulas[formulaID]
	if !ok {
		return nil, fmt.Errorf("formula %q/%q: %w", groupID, formulaID, ErrUnknownFormula)
	}
	return f, nil
}

// Clone returns a deep copy of the catalog. Each session owns an
// independent copy; nothing is shared except the pure Derive functions.
func (c *Catalog) Clone() *Catalog {
	dup := &Catalog{
		Order:  append([]string(nil), c.Order...),
		Groups: make(map[string]*Group, len(c.Groups)),
	}
	for id, g := range c.Groups {
		dup.Groups[id] = g.Clone()
	}
	return dup
}
