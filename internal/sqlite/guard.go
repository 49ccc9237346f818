// This file implements the invariant guard: the write-path checks that every
// update and delete must pass before it is applied. The guard is a pure
// function of (table, operation, old row, proposed row); it is evaluated
// inside the mutating transaction, so a rejection rolls the whole mutation
// back and leaves stored state unchanged.
package sqlite

import (
	"fmt"

	"github.com/keelworks/keel/pkg/types"
)

// Op is the kind of mutation being checked.
type Op int

const (
	OpInsert Op = iota
	OpUpdate
	OpDelete
)

// row is a column-name to value snapshot of an entity, as stored. Old rows
// are read inside the transaction; proposed rows are built from the caller's
// entity before any SQL runs.
type row map[string]any

func (r row) str(col string) string {
	v, _ := r[col].(string)
	return v
}

func (r row) boolean(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return false
	}
}

func (r row) num(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

// isSet reports whether the column holds a non-nil value.
func (r row) isSet(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// rule is one invariant check. fn returns nil to allow the mutation or a
// wrapped violation sentinel to reject it.
type rule struct {
	op Op
	fn func(old, proposed row) error
}

// guardRules holds the per-table rule sets. Every rule whose op matches the
// operation is evaluated; the first failure is surfaced and the mutation is
// rejected.
var guardRules = map[string][]rule{
	types.ScarsTable: {
		{OpDelete, func(old, proposed row) error {
			return fmt.Errorf("identity scars cannot be deleted: %w", types.ErrDeletionForbidden)
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.str("scar_type") != proposed.str("scar_type") ||
				old.str("behavioral_impact") != proposed.str("behavioral_impact") {
				return fmt.Errorf("scar core properties are immutable: %w", types.ErrImmutableField)
			}
			return nil
		}},
	},

	types.EffectsTable: {
		{OpDelete, func(old, proposed row) error {
			return fmt.Errorf("scar effects cannot be deleted: %w", types.ErrDeletionForbidden)
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.boolean("is_permanent") && old.boolean("is_active") && !proposed.boolean("is_active") {
				return fmt.Errorf("effect is permanent and cannot be deactivated: %w", types.ErrPermanentEffect)
			}
			return nil
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.boolean("is_permanent") && !proposed.boolean("is_permanent") {
				return fmt.Errorf("the permanent flag is a one-way lock: %w", types.ErrImmutableField)
			}
			return nil
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.str("scar_id") != proposed.str("scar_id") {
				return fmt.Errorf("effects cannot be moved between scars: %w", types.ErrImmutableField)
			}
			return nil
		}},
	},

	types.CoresTable: {
		{OpDelete, func(old, proposed row) error {
			if old.num("stability_score") > types.StabilityThreshold {
				return fmt.Errorf("cannot delete core anchor with stability above %d: %w",
					types.StabilityThreshold, types.ErrDeletionForbidden)
			}
			return nil
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.boolean("is_locked") && old.str("anchor_statement") != proposed.str("anchor_statement") {
				return fmt.Errorf("cannot directly modify locked core anchor: %w", types.ErrImmutableField)
			}
			return nil
		}},
	},

	types.BeliefsTable: {
		{OpDelete, func(old, proposed row) error {
			return fmt.Errorf("beliefs are retired by superseding, never deleted: %w", types.ErrDeletionForbidden)
		}},
		{OpUpdate, func(old, proposed row) error {
			if !old.boolean("is_active") && proposed.boolean("is_active") {
				return fmt.Errorf("closed beliefs cannot be reactivated: %w", types.ErrImmutableField)
			}
			return nil
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.isSet("valid_to") && (!proposed.isSet("valid_to") || old.str("valid_to") != proposed.str("valid_to")) {
				return fmt.Errorf("validity interval cannot be reopened: %w", types.ErrImmutableField)
			}
			return nil
		}},
	},

	types.EmbeddingsTable: {
		{OpDelete, func(old, proposed row) error {
			return fmt.Errorf("embeddings are replaced on regenerate, not deleted: %w", types.ErrDeletionForbidden)
		}},
	},

	types.TensionTable: {
		{OpDelete, func(old, proposed row) error {
			return fmt.Errorf("cognitive tension records cannot be deleted: %w", types.ErrDeletionForbidden)
		}},
		{OpUpdate, func(old, proposed row) error {
			if old.str("belief_a") != proposed.str("belief_a") ||
				old.str("belief_b") != proposed.str("belief_b") ||
				old.str("tension_type") != proposed.str("tension_type") ||
				old.num("magnitude") != proposed.num("magnitude") {
				return fmt.Errorf("only resolution may change on a tension record: %w", types.ErrImmutableField)
			}
			if old.isSet("resolved_at") && old.str("resolved_at") != proposed.str("resolved_at") {
				return fmt.Errorf("tension resolution is recorded once: %w", types.ErrImmutableField)
			}
			return nil
		}},
	},

	types.LoadTable: {
		{OpDelete, func(old, proposed row) error {
			return fmt.Errorf("cognitive load state cannot be deleted: %w", types.ErrDeletionForbidden)
		}},
	},
}

// appendOnlyTables are event logs: rows are inserted and read, never updated
// or deleted.
var appendOnlyTables = []string{
	types.AcksTable,
	types.ActivationsTable,
	types.EventsTable,
	types.CausalityTable,
	types.DistressTable,
	types.EchoesTable,
}

func init() {
	for _, name := range appendOnlyTables {
		guardRules[name] = append(guardRules[name],
			rule{OpUpdate, func(old, proposed row) error {
				return fmt.Errorf("%s is append-only: %w", name, types.ErrAppendOnly)
			}},
			rule{OpDelete, func(old, proposed row) error {
				return fmt.Errorf("%s is append-only: %w", name, types.ErrAppendOnly)
			}},
		)
	}
}

// check evaluates every rule registered for the table and operation against
// the old and proposed row snapshots. It returns nil when all rules pass, or
// the first violation. check is a pure function: it never touches the
// database and has no side effects.
func check(table string, op Op, old, proposed row) error {
	for _, r := range guardRules[table] {
		if r.op != op {
			continue
		}
		if err := r.fn(old, proposed); err != nil {
			return err
		}
	}
	return nil
}
