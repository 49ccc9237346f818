// This file implements the read-only verification report: a pre-deployment
// diagnostic that enumerates tables, confirms required columns, and runs
// representative sanity queries. It never mutates the store.
package sqlite

import (
	"fmt"

	"github.com/keelworks/keel/pkg/types"
)

// Report summarizes the health of an attached store.
type Report struct {
	Tables         []TableReport `json:"tables"`
	MissingTables  []string      `json:"missing_tables,omitempty"`
	CurrentBeliefs int           `json:"current_beliefs"`
	ActiveEffects  int           `json:"active_effects"`
	HardBlocks     int           `json:"hard_blocks"`
	CapabilityCaps int           `json:"capability_caps"`
	FormativeScars int           `json:"formative_scars"`
	OK             bool          `json:"ok"`
}

// TableReport covers one table: presence, row count, and any columns the
// schema requires that the table lacks.
type TableReport struct {
	Name           string   `json:"name"`
	Rows           int      `json:"rows"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// Verify inspects the attached store and returns a diagnostic report. It is
// read-only: only sanity queries run, never mutations.
func (b *Backend) Verify() (*Report, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	report := &Report{OK: true}

	present := make(map[string]bool)
	rows, err := b.db.Query("SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, fmt.Errorf("enumerating tables: %w", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		present[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, name := range types.StandardTableNames {
		if !present[name] {
			report.MissingTables = append(report.MissingTables, name)
			report.OK = false
			continue
		}

		tr := TableReport{Name: name}

		if err := b.db.QueryRow("SELECT COUNT(*) FROM " + name).Scan(&tr.Rows); err != nil {
			return nil, fmt.Errorf("counting rows in %s: %w", name, err)
		}

		missing, err := b.missingColumns(name)
		if err != nil {
			return nil, err
		}
		tr.MissingColumns = missing
		if len(missing) > 0 {
			report.OK = false
		}

		report.Tables = append(report.Tables, tr)
	}

	if err := b.db.QueryRow(
		"SELECT COUNT(*) FROM beliefs WHERE is_active = 1 AND valid_to IS NULL",
	).Scan(&report.CurrentBeliefs); err != nil {
		return nil, fmt.Errorf("counting current beliefs: %w", err)
	}

	viewCounts := []struct {
		dest  *int
		query string
		arg   any
	}{
		{&report.ActiveEffects, "SELECT COUNT(*) FROM scar_effects WHERE is_active = 1", nil},
		{&report.HardBlocks, "SELECT COUNT(*) FROM scar_effects WHERE is_active = 1 AND effect_class = ?", types.EffectClassHardBlock},
		{&report.CapabilityCaps, "SELECT COUNT(*) FROM scar_effects WHERE is_active = 1 AND effect_class = ?", types.EffectClassCapabilityCap},
		{&report.FormativeScars, "SELECT COUNT(DISTINCT scar_id) FROM formative_events WHERE scar_id IS NOT NULL", nil},
	}
	for _, vc := range viewCounts {
		var err error
		if vc.arg != nil {
			err = b.db.QueryRow(vc.query, vc.arg).Scan(vc.dest)
		} else {
			err = b.db.QueryRow(vc.query).Scan(vc.dest)
		}
		if err != nil {
			return nil, fmt.Errorf("running sanity query: %w", err)
		}
	}

	return report, nil
}

// missingColumns reports schema columns absent from the live table.
func (b *Backend) missingColumns(tableName string) ([]string, error) {
	rows, err := b.db.Query("SELECT name FROM pragma_table_info(?)", tableName)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s: %w", tableName, err)
	}
	defer rows.Close()

	have := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scanning column name: %w", err)
		}
		have[col] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var missing []string
	for _, col := range tableColumns[tableName] {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	return missing, nil
}
