// Package seed writes the builtin formula catalog into the database at
// startup. Seeding is idempotent: rows that already exist are left alone,
// so operator edits to catalog metadata survive restarts.
package seed

import (
	"database/sql"
	"fmt"

	"astrocalc/internal/catalog"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
}

// Run executes the startup seed in a single transaction.
func Run(db *sql.DB) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedKinds(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := seedGroups(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedKinds(tx *sql.Tx, stats *Stats) error {
	for ki, kind := range catalog.DefaultKinds() {
		inserted, err := insertIfAbsent(tx,
			`SELECT EXISTS(SELECT 1 FROM kinds WHERE id = ?)`, []any{kind.ID},
			`INSERT INTO kinds (id, position) VALUES (?, ?)`, []any{kind.ID, ki})
		if err != nil {
			return fmt.Errorf("seed kind %q: %w", kind.ID, err)
		}
		if inserted {
			stats.Inserts++
		}

		for ui, unit := range kind.Units {
			inserted, err := insertIfAbsent(tx,
				`SELECT EXISTS(SELECT 1 FROM units WHERE name = ?)`, []any{unit.Name},
				`INSERT INTO units (name, kind_id, factor, position) VALUES (?, ?, ?, ?)`,
				[]any{unit.Name, kind.ID, unit.Factor, ui})
			if err != nil {
				return fmt.Errorf("seed unit %q: %w", unit.Name, err)
			}
			if inserted {
				stats.Inserts++
			}
		}
	}
	return nil
}

func seedGroups(tx *sql.Tx, stats *Stats) error {
	for gi, group := range catalog.Definitions() {
		inserted, err := insertIfAbsent(tx,
			`SELECT EXISTS(SELECT 1 FROM formula_groups WHERE id = ?)`, []any{group.ID},
			`INSERT INTO formula_groups (id, name, position) VALUES (?, ?, ?)`,
			[]any{group.ID, group.Name, gi})
		if err != nil {
			return fmt.Errorf("seed group %q: %w", group.ID, err)
		}
		if inserted {
			stats.Inserts++
		}

		for fi, f := range group.Formulas {
			if err := seedFormula(tx, group.ID, fi, f, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func seedFormula(tx *sql.Tx, groupID string, position int, f catalog.FormulaDef, stats *Stats) error {
	inserted, err := insertIfAbsent(tx,
		`SELECT EXISTS(SELECT 1 FROM formulas WHERE id = ?)`, []any{f.ID},
		`INSERT INTO formulas (id, group_id, name, description, position) VALUES (?, ?, ?, ?, ?)`,
		[]any{f.ID, groupID, f.Name, f.Description, position})
	if err != nil {
		return fmt.Errorf("seed formula %q: %w", f.ID, err)
	}
	if inserted {
		stats.Inserts++
	}

	for vi, v := range f.Variables {
		var unit any
		if v.Unit != "" {
			unit = v.Unit
		}
		inserted, err := insertIfAbsent(tx,
			`SELECT EXISTS(SELECT 1 FROM variables WHERE formula_id = ? AND id = ?)`,
			[]any{f.ID, string(v.ID)},
			`INSERT INTO variables (formula_id, id, name, symbol, default_value, default_unit, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{f.ID, string(v.ID), v.Name, v.Symbol, v.Default, unit, vi})
		if err != nil {
			return fmt.Errorf("seed variable %q/%q: %w", f.ID, v.ID, err)
		}
		if inserted {
			stats.Inserts++
		}
	}
	return nil
}

func insertIfAbsent(tx *sql.Tx, existsQuery string, existsArgs []any, insert string, insertArgs []any) (bool, error) {
	var exists bool
	if err := tx.QueryRow(existsQuery, existsArgs...).Scan(&exists); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	if exists {
		return false, nil
	}
	if _, err := tx.Exec(insert, insertArgs...); err != nil {
		return false, fmt.Errorf("insert: %w", err)
	}
	return true, nil
}
