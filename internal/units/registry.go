// Package units is the static registry of measurement units grouped by
// quantity kind.
package units

import (
	"errors"
	"fmt"
)

// ErrUnitNotFound reports a unit identifier that no kind declares. This is
// a catalog configuration error: callers must surface it rather than
// silently default to another unit.
var ErrUnitNotFound = errors.New("unit not found")

// Unit is a named unit with its scalar conversion factor to the base unit
// of its kind: 1 unit = Factor base units. Factor must be positive.
type Unit struct {
	Name   string
	Factor float64
}

// Kind groups mutually convertible units. By convention the first unit is
// the base unit with factor 1.
type Kind struct {
	ID    string
	Units []Unit
}

// Registry holds kinds in declaration order. Unit names must be globally
// unique across kinds; lookups scan kinds in order and return the first
// match, so a duplicate name would shadow the later one.
type Registry struct {
	kinds []Kind
}

// NewRegistry builds a registry over static kind declarations. The slice
// is retained; callers must not mutate it afterwards.
func NewRegistry(kinds []Kind) *Registry {
	return &Registry{kinds: kinds}
}

// KindOf returns the id of the quantity kind the unit belongs to.
func (r *Registry) KindOf(unit string) (string, error) {
	for _, k := range r.kinds {
		for _, u := range k.Units {
			if u.Name == unit {
				return k.ID, nil
			}
		}
	}
	return "", fmt.Errorf("kind of %q: %w", unit, ErrUnitNotFound)
}

// FactorOf returns the unit's conversion factor to its kind's base unit.
func (r *Registry) FactorOf(unit string) (float64, error) {
	for _, k := range r.kinds {
		for _, u := range k.Units {
			if u.Name == unit {
				return u.Factor, nil
			}
		}
	}
	return 0, fmt.Errorf("factor of %q: %w", unit, ErrUnitNotFound)
}

// UnitsOfKind returns the kind's unit names in declaration order, used to
// populate unit-selection choices. Unknown kinds yield an empty slice so
// selection fails closed.
func (r *Registry) UnitsOfKind(kind string) []string {
	for _, k := range r.kinds {
		if k.ID != kind {
			continue
		}
		names := make([]string, 0, len(k.Units))
		for _, u := range k.Units {
			names = append(names, u.Name)
		}
		return names
	}
	return nil
}
