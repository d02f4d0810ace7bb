// Package engine implements the recalculation pass that re-derives every
// variable of a formula after a single edit, unit change, or commit.
package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"astrocalc/internal/formula"
	"astrocalc/internal/scinot"
	"astrocalc/internal/units"
)

// ErrUnknownField reports an edit targeting neither mantissa nor exponent.
var ErrUnknownField = errors.New("unknown field")

// Field selects which part of a variable's displayed number an edit
// targets.
type Field string

const (
	FieldMantissa Field = "mantissa"
	FieldExponent Field = "exponent"
)

// Input applies an in-progress keystroke edit to a mantissa or exponent
// field and recalculates without re-deriving the edited variable, so the
// field being typed into is not overwritten under the user. Unparseable
// text (a bare "-" or ".") is stored as NaN; the propagation guard then
// leaves every other variable's display untouched.
func Input(f *formula.Formula, id formula.ID, field Field, raw string) error {
	v, ok := f.Var(id)
	if !ok {
		return fmt.Errorf("input on %q/%q: %w", f.ID, id, formula.ErrUnknownVariable)
	}

	switch field {
	case FieldMantissa:
		v.Mantissa = parseNumber(raw)
	case FieldExponent:
		v.Exponent = parseNumber(raw)
	default:
		return fmt.Errorf("input on %q/%q: field %q: %w", f.ID, id, field, ErrUnknownField)
	}

	Recalculate(f, id, false)
	return nil
}

// Commit completes an edit (blur or change): the edited variable is also
// re-derived from its siblings unless it is the chain's free input.
func Commit(f *formula.Formula, id formula.ID) error {
	if _, ok := f.Var(id); !ok {
		return fmt.Errorf("commit on %q/%q: %w", f.ID, id, formula.ErrUnknownVariable)
	}
	Recalculate(f, id, true)
	return nil
}

// SetUnit switches a variable's display unit. The displayed digits are
// kept and the stored value reinterpreted under the new scale, then a full
// recalculation re-derives every non-first variable, the edited one
// included.
func SetUnit(reg *units.Registry, f *formula.Formula, id formula.ID, unit string) error {
	v, ok := f.Var(id)
	if !ok {
		return fmt.Errorf("set unit on %q/%q: %w", f.ID, id, formula.ErrUnknownVariable)
	}
	if v.DefaultUnit == "" {
		return fmt.Errorf("set unit on dimensionless %q/%q: %w", f.ID, id, units.ErrUnitNotFound)
	}

	kind, err := reg.KindOf(unit)
	if err != nil {
		return fmt.Errorf("set unit on %q/%q: %w", f.ID, id, err)
	}
	defaultKind, err := reg.KindOf(v.DefaultUnit)
	if err != nil {
		return fmt.Errorf("set unit on %q/%q: %w", f.ID, id, err)
	}
	if kind != defaultKind {
		return fmt.Errorf("set unit on %q/%q: %q is a %s unit, variable is %s", f.ID, id, unit, kind, defaultKind)
	}

	factor, err := reg.FactorOf(unit)
	if err != nil {
		return fmt.Errorf("set unit on %q/%q: %w", f.ID, id, err)
	}
	base, err := reg.FactorOf(v.DefaultUnit)
	if err != nil {
		return fmt.Errorf("set unit on %q/%q: %w", f.ID, id, err)
	}

	v.Unit = unit
	v.UnitRatio = factor / base

	Recalculate(f, id, true)
	return nil
}

// Recalculate re-derives the formula's variables after an edit to edited.
//
// The edited variable's value is first recomputed from its raw
// mantissa/exponent fields. If any variable other than the chain's first
// element then holds a non-finite value, propagation is aborted and every
// other display left untouched: a mid-edit transient (bare "-", division
// by zero, out-of-domain formula) must not cascade. Otherwise the chain is
// walked left to right as a single-pass fold over the value snapshot; the
// first element is the free input and is never re-derived, and the edited
// variable is only re-derived when selfRecompute is set.
func Recalculate(f *formula.Formula, edited formula.ID, selfRecompute bool) {
	v, ok := f.Var(edited)
	if !ok {
		return
	}
	v.Value = scinot.Denormalize(v.Mantissa, v.Exponent) * v.UnitRatio

	vals := f.Snapshot()

	for id, val := range vals {
		if len(f.Order) > 0 && id == f.Order[0] {
			continue
		}
		if !isFinite(val) {
			return
		}
	}

	for i, id := range f.Order {
		if i == 0 {
			// The free input is treated as already valid.
			continue
		}
		if id == edited && !selfRecompute {
			continue
		}
		u, ok := f.Var(id)
		if !ok || u.Derive == nil {
			continue
		}

		val := u.Derive(vals)
		vals[id] = val

		mant, exp := scinot.Normalize(val / u.UnitRatio)
		u.Mantissa = mant
		u.Exponent = float64(exp)
		u.Value = val
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// parseNumber turns raw field text into a float64. Partial or invalid
// entries become NaN so the guard halts propagation while the input widget
// keeps the typed text.
func parseNumber(raw string) float64 {
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return val
}
