// This file implements the generic Table accessor for the SQLite backend.
// Each table knows its entity type and dispatches to per-entity helpers; the
// invariant guard is consulted on every update and delete before any SQL
// mutation runs.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keelworks/keel/pkg/types"
)

// isNoRows reports whether err indicates an empty query result.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// Compile-time interface check: table must implement types.Table.
var _ types.Table = (*table)(nil)

// table implements types.Table for a single entity type.
type table struct {
	name    string   // Table name (e.g. "identity_scars").
	backend *Backend // Parent backend for DB access.
}

func newTable(b *Backend, name string) *table {
	return &table{name: name, backend: b}
}

// Get retrieves an entity by ID.
// Returns ErrInvalidID if id is empty, ErrNotFound if not found.
func (t *table) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	switch t.name {
	case types.CoresTable:
		return t.getCore(id)
	case types.BeliefsTable:
		return t.getBelief(id)
	case types.EmbeddingsTable:
		return t.getEmbedding(id)
	case types.ScarsTable:
		return t.getScar(id)
	case types.EffectsTable:
		return t.getEffect(id)
	case types.AcksTable:
		return t.getAck(id)
	case types.ActivationsTable:
		return t.getActivation(id)
	case types.EventsTable:
		return t.getEvent(id)
	case types.CausalityTable:
		return t.getCausality(id)
	case types.TensionTable:
		return t.getTension(id)
	case types.DistressTable:
		return t.getDistress(id)
	case types.EchoesTable:
		return t.getEcho(id)
	case types.LoadTable:
		return t.getLoad(id)
	default:
		return nil, types.ErrTableNotFound
	}
}

// Set creates or updates an entity. If id is empty, generates a UUID v7.
// Updates pass through the invariant guard; a rejected update is not applied.
func (t *table) Set(id string, data any) (string, error) {
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return "", types.ErrStoreDetached
	}

	switch t.name {
	case types.CoresTable:
		return t.setCore(id, data)
	case types.BeliefsTable:
		return t.setBelief(id, data)
	case types.EmbeddingsTable:
		return t.setEmbedding(id, data)
	case types.ScarsTable:
		return t.setScar(id, data)
	case types.EffectsTable:
		return t.setEffect(id, data)
	case types.AcksTable:
		return t.setAck(id, data)
	case types.ActivationsTable:
		return t.setActivation(id, data)
	case types.EventsTable:
		return t.setEvent(id, data)
	case types.CausalityTable:
		return t.setCausality(id, data)
	case types.TensionTable:
		return t.setTension(id, data)
	case types.DistressTable:
		return t.setDistress(id, data)
	case types.EchoesTable:
		return t.setEcho(id, data)
	case types.LoadTable:
		return t.setLoad(id, data)
	default:
		return "", types.ErrTableNotFound
	}
}

// Delete removes an entity by ID. The invariant guard runs first; protected
// rows are rejected with a violation error and remain unchanged.
func (t *table) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	t.backend.mu.Lock()
	defer t.backend.mu.Unlock()

	if !t.backend.attached {
		return types.ErrStoreDetached
	}

	snapshot, err := t.snapshotByID(id)
	if err != nil {
		return err
	}
	if err := check(t.name, OpDelete, snapshot, nil); err != nil {
		return err
	}

	_, err = t.backend.db.Exec(
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.name, t.idColumn()), id,
	)
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", t.name, err)
	}
	return nil
}

// Fetch returns all entities matching the filter. Filter keys are column
// names; values are matched with equality. An empty filter returns every
// entity.
func (t *table) Fetch(filter map[string]any) ([]any, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()

	if !t.backend.attached {
		return nil, types.ErrStoreDetached
	}

	where, args := buildWhere(t.name, filter)

	switch t.name {
	case types.CoresTable:
		return t.fetchCores(where, args)
	case types.BeliefsTable:
		return t.fetchBeliefs(where, args)
	case types.EmbeddingsTable:
		return t.fetchEmbeddings(where, args)
	case types.ScarsTable:
		return t.fetchScars(where, args)
	case types.EffectsTable:
		return t.fetchEffects(where, args)
	case types.AcksTable:
		return t.fetchAcks(where, args)
	case types.ActivationsTable:
		return t.fetchActivations(where, args)
	case types.EventsTable:
		return t.fetchEvents(where, args)
	case types.CausalityTable:
		return t.fetchCausalities(where, args)
	case types.TensionTable:
		return t.fetchTensions(where, args)
	case types.DistressTable:
		return t.fetchDistresses(where, args)
	case types.EchoesTable:
		return t.fetchEchoes(where, args)
	case types.LoadTable:
		return t.fetchLoads(where, args)
	default:
		return nil, types.ErrTableNotFound
	}
}

// idColumn returns the primary key column for the table.
func (t *table) idColumn() string {
	return idColumns[t.name]
}

// idColumns maps table names to their primary key columns.
var idColumns = map[string]string{
	types.CoresTable:       "core_id",
	types.BeliefsTable:     "belief_id",
	types.EmbeddingsTable:  "embedding_id",
	types.ScarsTable:       "scar_id",
	types.EffectsTable:     "effect_id",
	types.AcksTable:        "ack_id",
	types.ActivationsTable: "activation_id",
	types.EventsTable:      "event_id",
	types.CausalityTable:   "causality_id",
	types.TensionTable:     "tension_id",
	types.DistressTable:    "distress_id",
	types.EchoesTable:      "echo_id",
	types.LoadTable:        "load_id",
}

// snapshotByID reads the current stored row as a column snapshot for the
// guard. Returns ErrNotFound if the row does not exist. The caller must hold
// the write lock.
func (t *table) snapshotByID(id string) (row, error) {
	cols := tableColumns[t.name]
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(cols, ", "), t.name, t.idColumn())

	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	err := t.backend.db.QueryRow(query, id).Scan(dest...)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("reading %s row for guard: %w", t.name, err)
	}

	snapshot := make(row, len(cols))
	for i, col := range cols {
		snapshot[col] = values[i]
	}
	return snapshot, nil
}

// buildWhere translates a filter map into a WHERE clause and args. Unknown
// columns are ignored rather than erroring, matching Fetch's permissive
// contract.
func buildWhere(tableName string, filter map[string]any) (string, []any) {
	if len(filter) == 0 {
		return "", nil
	}

	valid := make(map[string]bool, len(tableColumns[tableName]))
	for _, col := range tableColumns[tableName] {
		valid[col] = true
	}

	var clauses []string
	var args []any
	for _, col := range tableColumns[tableName] {
		v, ok := filter[col]
		if !ok || !valid[col] {
			continue
		}
		clauses = append(clauses, col+" = ?")
		args = append(args, v)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
