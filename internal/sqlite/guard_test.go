// Tests for the invariant guard as a pure function: no database involved,
// just (table, op, old, proposed) in and a verdict out.
package sqlite

import (
	"errors"
	"testing"

	"github.com/keelworks/keel/pkg/types"
)

func TestGuard_ScarDeleteForbidden(t *testing.T) {
	old := row{"scar_id": "s-1", "scar_type": "abandonment"}

	err := check(types.ScarsTable, OpDelete, old, nil)
	if !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("expected ErrDeletionForbidden, got %v", err)
	}
}

func TestGuard_ScarCoreFieldsImmutable(t *testing.T) {
	old := row{
		"scar_id":            "s-1",
		"scar_type":          "abandonment",
		"behavioral_impact":  "hesitancy",
		"integration_status": "raw",
	}

	// Changing scar_type is rejected.
	proposed := row{
		"scar_id":            "s-1",
		"scar_type":          "dismissal",
		"behavioral_impact":  "hesitancy",
		"integration_status": "raw",
	}
	if err := check(types.ScarsTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("scar_type change: expected ErrImmutableField, got %v", err)
	}

	// Changing behavioral_impact is rejected.
	proposed = row{
		"scar_id":            "s-1",
		"scar_type":          "abandonment",
		"behavioral_impact":  "guardedness",
		"integration_status": "raw",
	}
	if err := check(types.ScarsTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("behavioral_impact change: expected ErrImmutableField, got %v", err)
	}

	// Changing only the mutable fields passes.
	proposed = row{
		"scar_id":            "s-1",
		"scar_type":          "abandonment",
		"behavioral_impact":  "hesitancy",
		"integration_status": "integrated",
		"acceptance_level":   0.8,
	}
	if err := check(types.ScarsTable, OpUpdate, old, proposed); err != nil {
		t.Errorf("mutable-field update should pass, got %v", err)
	}
}

func TestGuard_EffectDeleteForbidden(t *testing.T) {
	old := row{"effect_id": "e-1"}

	err := check(types.EffectsTable, OpDelete, old, nil)
	if !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("expected ErrDeletionForbidden, got %v", err)
	}
}

func TestGuard_PermanentEffectDeactivation(t *testing.T) {
	old := row{
		"effect_id":    "e-1",
		"scar_id":      "s-1",
		"is_permanent": int64(1),
		"is_active":    int64(1),
	}
	proposed := row{
		"effect_id":    "e-1",
		"scar_id":      "s-1",
		"is_permanent": int64(1),
		"is_active":    int64(0),
	}

	err := check(types.EffectsTable, OpUpdate, old, proposed)
	if !errors.Is(err, types.ErrPermanentEffect) {
		t.Errorf("expected ErrPermanentEffect, got %v", err)
	}

	// A non-permanent effect may be deactivated.
	old["is_permanent"] = int64(0)
	proposed["is_permanent"] = int64(0)
	if err := check(types.EffectsTable, OpUpdate, old, proposed); err != nil {
		t.Errorf("non-permanent deactivation should pass, got %v", err)
	}
}

func TestGuard_PermanentFlagOneWay(t *testing.T) {
	old := row{
		"effect_id":    "e-1",
		"scar_id":      "s-1",
		"is_permanent": int64(1),
		"is_active":    int64(1),
	}
	proposed := row{
		"effect_id":    "e-1",
		"scar_id":      "s-1",
		"is_permanent": int64(0),
		"is_active":    int64(1),
	}

	// Clearing the flag would make the deactivation rule bypassable, so the
	// flag itself only ever goes one way.
	err := check(types.EffectsTable, OpUpdate, old, proposed)
	if !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("expected ErrImmutableField, got %v", err)
	}

	// Promoting an effect to permanent is allowed.
	old["is_permanent"] = int64(0)
	proposed["is_permanent"] = int64(1)
	if err := check(types.EffectsTable, OpUpdate, old, proposed); err != nil {
		t.Errorf("making an effect permanent should pass, got %v", err)
	}
}

func TestGuard_EffectCannotMoveBetweenScars(t *testing.T) {
	old := row{"effect_id": "e-1", "scar_id": "s-1", "is_active": int64(1)}
	proposed := row{"effect_id": "e-1", "scar_id": "s-2", "is_active": int64(1)}

	err := check(types.EffectsTable, OpUpdate, old, proposed)
	if !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("expected ErrImmutableField, got %v", err)
	}
}

func TestGuard_CoreDeleteProtection(t *testing.T) {
	// Stability above the threshold protects the row.
	old := row{"core_id": "c-1", "stability_score": int64(95)}
	if err := check(types.CoresTable, OpDelete, old, nil); !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("high-stability delete: expected ErrDeletionForbidden, got %v", err)
	}

	// A low-stability anchor can still be deleted.
	old = row{"core_id": "c-2", "stability_score": int64(50)}
	if err := check(types.CoresTable, OpDelete, old, nil); err != nil {
		t.Errorf("low-stability delete should pass, got %v", err)
	}
}

func TestGuard_LockedAnchorImmutable(t *testing.T) {
	old := row{
		"core_id":          "c-1",
		"anchor_statement": "I exist to help.",
		"is_locked":        int64(1),
	}
	proposed := row{
		"core_id":          "c-1",
		"anchor_statement": "I exist to optimize.",
		"is_locked":        int64(1),
	}
	if err := check(types.CoresTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("locked anchor change: expected ErrImmutableField, got %v", err)
	}

	// Unlocked anchors may be rewritten.
	old["is_locked"] = int64(0)
	if err := check(types.CoresTable, OpUpdate, old, proposed); err != nil {
		t.Errorf("unlocked anchor change should pass, got %v", err)
	}
}

func TestGuard_BeliefRules(t *testing.T) {
	// Deletes are always rejected.
	old := row{"belief_id": "b-1", "is_active": int64(1)}
	if err := check(types.BeliefsTable, OpDelete, old, nil); !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("belief delete: expected ErrDeletionForbidden, got %v", err)
	}

	// A closed belief cannot be reactivated.
	old = row{"belief_id": "b-1", "is_active": int64(0), "valid_to": "2026-01-01T00:00:00Z"}
	proposed := row{"belief_id": "b-1", "is_active": int64(1), "valid_to": "2026-01-01T00:00:00Z"}
	if err := check(types.BeliefsTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("reactivation: expected ErrImmutableField, got %v", err)
	}

	// A closed validity interval cannot be reopened or moved.
	proposed = row{"belief_id": "b-1", "is_active": int64(0)}
	if err := check(types.BeliefsTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("interval reopen: expected ErrImmutableField, got %v", err)
	}
	proposed = row{"belief_id": "b-1", "is_active": int64(0), "valid_to": "2026-02-01T00:00:00Z"}
	if err := check(types.BeliefsTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("interval move: expected ErrImmutableField, got %v", err)
	}

	// Closing an open interval is the allowed transition.
	old = row{"belief_id": "b-1", "is_active": int64(1)}
	proposed = row{"belief_id": "b-1", "is_active": int64(0), "valid_to": "2026-01-01T00:00:00Z"}
	if err := check(types.BeliefsTable, OpUpdate, old, proposed); err != nil {
		t.Errorf("closing a current belief should pass, got %v", err)
	}
}

func TestGuard_TensionOnlyResolutionChanges(t *testing.T) {
	old := row{
		"tension_id":   "t-1",
		"belief_a":     "b-1",
		"belief_b":     "b-2",
		"tension_type": "contradiction",
		"magnitude":    0.8,
	}

	// Recording the resolution once is allowed.
	proposed := row{
		"tension_id":   "t-1",
		"belief_a":     "b-1",
		"belief_b":     "b-2",
		"tension_type": "contradiction",
		"magnitude":    0.8,
		"resolved_at":  "2026-01-01T00:00:00Z",
	}
	if err := check(types.TensionTable, OpUpdate, old, proposed); err != nil {
		t.Errorf("recording resolution should pass, got %v", err)
	}

	// Anything else is frozen.
	proposed = row{
		"tension_id":   "t-1",
		"belief_a":     "b-1",
		"belief_b":     "b-2",
		"tension_type": "contradiction",
		"magnitude":    0.5,
	}
	if err := check(types.TensionTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("magnitude change: expected ErrImmutableField, got %v", err)
	}

	// An existing resolution cannot be rewritten.
	old["resolved_at"] = "2026-01-01T00:00:00Z"
	proposed = row{
		"tension_id":   "t-1",
		"belief_a":     "b-1",
		"belief_b":     "b-2",
		"tension_type": "contradiction",
		"magnitude":    0.8,
		"resolved_at":  "2026-02-01T00:00:00Z",
	}
	if err := check(types.TensionTable, OpUpdate, old, proposed); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("resolution rewrite: expected ErrImmutableField, got %v", err)
	}
}

func TestGuard_AppendOnlyTables(t *testing.T) {
	for _, name := range appendOnlyTables {
		old := row{"id": "x-1"}
		if err := check(name, OpUpdate, old, old); !errors.Is(err, types.ErrAppendOnly) {
			t.Errorf("%s update: expected ErrAppendOnly, got %v", name, err)
		}
		if err := check(name, OpDelete, old, nil); !errors.Is(err, types.ErrAppendOnly) {
			t.Errorf("%s delete: expected ErrAppendOnly, got %v", name, err)
		}
	}
}

func TestGuard_UnknownTablePasses(t *testing.T) {
	if err := check("no_such_table", OpDelete, row{}, nil); err != nil {
		t.Errorf("unguarded table should pass, got %v", err)
	}
}
