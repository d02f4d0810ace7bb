package catalog

import (
	"fmt"

	"astrocalc/internal/formula"
	"astrocalc/internal/scinot"
	"astrocalc/internal/units"
)

// Build assembles a live catalog from group definitions. Every declared
// default unit must resolve in the registry; a miss is a configuration
// error and fails the whole build rather than defaulting silently.
func Build(groups []GroupDef, reg *units.Registry) (*formula.Catalog, error) {
	cat := &formula.Catalog{Groups: make(map[string]*formula.Group, len(groups))}

	for _, gd := range groups {
		g := &formula.Group{
			ID:       gd.ID,
			Name:     gd.Name,
			Formulas: make(map[string]*formula.Formula, len(gd.Formulas)),
		}
		for _, fd := range gd.Formulas {
			f, err := buildFormula(fd, reg)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", gd.ID, err)
			}
			g.Formulas[fd.ID] = f
			g.Order = append(g.Order, fd.ID)
		}
		cat.Groups[gd.ID] = g
		cat.Order = append(cat.Order, gd.ID)
	}

	return cat, nil
}

func buildFormula(fd FormulaDef, reg *units.Registry) (*formula.Formula, error) {
	f := &formula.Formula{
		ID:          fd.ID,
		Name:        fd.Name,
		Description: fd.Description,
		Vars:        make(map[formula.ID]*formula.Variable, len(fd.Variables)),
	}

	for _, vd := range fd.Variables {
		if vd.Unit != "" {
			if _, err := reg.FactorOf(vd.Unit); err != nil {
				return nil, fmt.Errorf("formula %q variable %q: %w", fd.ID, vd.ID, err)
			}
		}

		mant, exp := scinot.Normalize(vd.Default)
		f.Vars[vd.ID] = &formula.Variable{
			ID:          vd.ID,
			Name:        vd.Name,
			Symbol:      vd.Symbol,
			Value:       vd.Default,
			Mantissa:    mant,
			Exponent:    float64(exp),
			Unit:        vd.Unit,
			DefaultUnit: vd.Unit,
			UnitRatio:   1,
			Derive:      vd.Derive,
		}
		f.Order = append(f.Order, vd.ID)
	}

	f.RefreshPrefixes()
	return f, nil
}
