package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"astrocalc/internal/formula"
	"astrocalc/internal/units"
)

// ErrNoDerive reports a catalog row with no builtin derive function to
// bind to. Formula functions are code, not data: the database only carries
// the declarative half of the catalog.
var ErrNoDerive = errors.New("no derive function for catalog row")

// Load reads the unit registry and formula catalog from the database and
// binds every variable row to its builtin derive function by
// (formula id, variable id). Rows the builtin tables do not know fail
// loudly; a catalog that cannot compute is a configuration error.
func Load(db *sql.DB) (*units.Registry, *formula.Catalog, error) {
	reg, err := LoadRegistry(db)
	if err != nil {
		return nil, nil, err
	}

	groups, err := loadGroupDefs(db)
	if err != nil {
		return nil, nil, err
	}

	cat, err := Build(groups, reg)
	if err != nil {
		return nil, nil, err
	}
	return reg, cat, nil
}

// LoadRegistry reads the kind and unit tables in declared position order.
func LoadRegistry(db *sql.DB) (*units.Registry, error) {
	rows, err := db.Query(`
		SELECT k.id, u.name, u.factor
		FROM kinds k
		JOIN units u ON u.kind_id = k.id
		ORDER BY k.position, u.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	var kinds []units.Kind
	for rows.Next() {
		var kindID, name string
		var factor float64
		if err := rows.Scan(&kindID, &name, &factor); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		if len(kinds) == 0 || kinds[len(kinds)-1].ID != kindID {
			kinds = append(kinds, units.Kind{ID: kindID})
		}
		last := &kinds[len(kinds)-1]
		last.Units = append(last.Units, units.Unit{Name: name, Factor: factor})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	return units.NewRegistry(kinds), nil
}

func loadGroupDefs(db *sql.DB) ([]GroupDef, error) {
	derive := deriveIndex()

	groups, err := loadGroups(db)
	if err != nil {
		return nil, err
	}

	for gi := range groups {
		formulas, err := loadFormulas(db, groups[gi].ID)
		if err != nil {
			return nil, err
		}
		for fi := range formulas {
			if err := loadVariables(db, &formulas[fi], derive); err != nil {
				return nil, err
			}
		}
		groups[gi].Formulas = formulas
	}
	return groups, nil
}

func loadGroups(db *sql.DB) ([]GroupDef, error) {
	rows, err := db.Query(`SELECT id, name FROM formula_groups ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query formula groups: %w", err)
	}
	defer rows.Close()

	var groups []GroupDef
	for rows.Next() {
		var g GroupDef
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("scan formula group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formula groups: %w", err)
	}
	return groups, nil
}

func loadFormulas(db *sql.DB, groupID string) ([]FormulaDef, error) {
	rows, err := db.Query(`
		SELECT id, name, description
		FROM formulas
		WHERE group_id = ?
		ORDER BY position
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query formulas of %q: %w", groupID, err)
	}
	defer rows.Close()

	var formulas []FormulaDef
	for rows.Next() {
		var f FormulaDef
		if err := rows.Scan(&f.ID, &f.Name, &f.Description); err != nil {
			return nil, fmt.Errorf("scan formula: %w", err)
		}
		formulas = append(formulas, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate formulas of %q: %w", groupID, err)
	}
	return formulas, nil
}

func loadVariables(db *sql.DB, fd *FormulaDef, derive map[string]map[formula.ID]formula.Func) error {
	rows, err := db.Query(`
		SELECT id, name, symbol, default_value, COALESCE(default_unit, '')
		FROM variables
		WHERE formula_id = ?
		ORDER BY position
	`, fd.ID)
	if err != nil {
		return fmt.Errorf("query variables of %q: %w", fd.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var vd VariableDef
		if err := rows.Scan(&vd.ID, &vd.Name, &vd.Symbol, &vd.Default, &vd.Unit); err != nil {
			return fmt.Errorf("scan variable of %q: %w", fd.ID, err)
		}
		fn, ok := derive[fd.ID][vd.ID]
		if !ok {
			return fmt.Errorf("bind %q/%q: %w", fd.ID, vd.ID, ErrNoDerive)
		}
		vd.Derive = fn
		fd.Variables = append(fd.Variables, vd)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate variables of %q: %w", fd.ID, err)
	}
	return nil
}

// deriveIndex maps builtin formula and variable ids to their functions.
func deriveIndex() map[string]map[formula.ID]formula.Func {
	index := make(map[string]map[formula.ID]formula.Func)
	for _, g := range Definitions() {
		for _, f := range g.Formulas {
			vars := make(map[formula.ID]formula.Func, len(f.Variables))
			for _, v := range f.Variables {
				vars[v.ID] = v.Derive
			}
			index[f.ID] = vars
		}
	}
	return index
}
