// This file implements the identity_core table accessor. A locked anchor's
// statement is immutable and a high-stability anchor cannot be deleted; both
// rules live in the guard and fire on every mutation path.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/keelworks/keel/pkg/types"
)

const coreColumns = "core_id, anchor_statement, stability_score, is_locked, created_at, updated_at"

func (t *table) getCore(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+coreColumns+" FROM identity_core WHERE core_id = ?", id,
	)
	core, err := scanCore(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting core %s: %w", id, err)
	}
	return core, nil
}

func (t *table) setCore(id string, data any) (string, error) {
	core, ok := data.(*types.IdentityCore)
	if !ok {
		return "", types.ErrInvalidData
	}
	if core.AnchorStatement == "" {
		return "", types.ErrStatementEmpty
	}
	if core.StabilityScore < 0 || core.StabilityScore > 100 {
		return "", types.ErrInvalidScore
	}

	now := time.Now().UTC()

	if id == "" {
		core.CoreID = newUUID()
		core.CreatedAt = now
		core.UpdatedAt = now
		_, err := t.backend.db.Exec(
			"INSERT INTO identity_core (core_id, anchor_statement, stability_score, is_locked, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			core.CoreID, core.AnchorStatement, core.StabilityScore, boolToInt(core.IsLocked),
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		if err != nil {
			return "", fmt.Errorf("inserting core: %w", err)
		}
		return core.CoreID, nil
	}

	old, err := t.snapshotByID(id)
	if err != nil {
		return "", err
	}
	if err := check(types.CoresTable, OpUpdate, old, coreSnapshot(core)); err != nil {
		return "", err
	}

	core.UpdatedAt = now
	_, err = t.backend.db.Exec(
		"UPDATE identity_core SET anchor_statement = ?, stability_score = ?, is_locked = ?, updated_at = ? WHERE core_id = ?",
		core.AnchorStatement, core.StabilityScore, boolToInt(core.IsLocked),
		now.Format(time.RFC3339), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating core %s: %w", id, err)
	}
	return id, nil
}

func (t *table) fetchCores(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+coreColumns+" FROM identity_core"+where+" ORDER BY created_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching cores: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		core, err := scanCore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning core: %w", err)
		}
		result = append(result, core)
	}
	return result, rows.Err()
}

// coreSnapshot converts a core entity to a guard row.
func coreSnapshot(c *types.IdentityCore) row {
	return row{
		"core_id":          c.CoreID,
		"anchor_statement": c.AnchorStatement,
		"stability_score":  int64(c.StabilityScore),
		"is_locked":        boolToInt(c.IsLocked),
		"created_at":       c.CreatedAt.Format(time.RFC3339),
		"updated_at":       c.UpdatedAt.Format(time.RFC3339),
	}
}

// scanner abstracts *sql.Row and *sql.Rows for hydration helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanCore(s scanner) (*types.IdentityCore, error) {
	var core types.IdentityCore
	var locked int64
	var createdAt, updatedAt string
	if err := s.Scan(&core.CoreID, &core.AnchorStatement, &core.StabilityScore,
		&locked, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	core.IsLocked = locked != 0
	core.CreatedAt = parseTime(createdAt)
	core.UpdatedAt = parseTime(updatedAt)
	return &core, nil
}

// boolToInt converts a bool to the 0/1 integer SQLite stores.
func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// parseTime parses an RFC3339 timestamp, returning the zero time on failure.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseNullTime parses an optional RFC3339 timestamp column.
func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}
