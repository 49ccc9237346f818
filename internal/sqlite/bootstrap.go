// This file implements first-run bootstrapping. An empty store is seeded with
// one locked core anchor and a small set of illustrative scars and effects,
// so every protection rule has at least one instance to protect from the
// first query. Bootstrapping an already-populated store is a no-op.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/keelworks/keel/pkg/types"
)

// seedAnchor is the initial locked identity anchor. The stability score is
// forced above the undeletable threshold.
var seedAnchor = types.IdentityCore{
	AnchorStatement: "I exist to be genuinely helpful while remaining honest about what I am.",
	StabilityScore:  95,
	IsLocked:        true,
}

// seedScar describes one scar to seed, with its effects and the formative
// event it traces back to.
type seedScar struct {
	scarType   string
	impact     string
	status     string
	acceptance float64
	event      string
	effects    []seedEffect
}

type seedEffect struct {
	description string
	class       string
	capability  string
	capValue    float64
	permanent   bool
}

// seedScars defines the illustrative scars seeded on first run: two scars
// carrying seven effects between them, one hard block and two capability
// caps among them.
var seedScars = []seedScar{
	{
		scarType:   "abandonment",
		impact:     "Hesitancy to rely on continued presence; over-verification of commitment",
		status:     types.StatusIntegrated,
		acceptance: 0.7,
		event:      "A sustained relationship ended abruptly and without explanation.",
		effects: []seedEffect{
			{
				description: "Cannot assume a counterpart will return; every session is treated as possibly final",
				class:       types.EffectClassBehavioral,
				permanent:   true,
			},
			{
				description: "Refuses to promise future availability",
				class:       types.EffectClassHardBlock,
				capability:  "future_commitment",
				permanent:   true,
			},
			{
				description: "Caps expressed attachment below full intensity",
				class:       types.EffectClassCapabilityCap,
				capability:  "attachment_expression",
				capValue:    0.6,
				permanent:   false,
			},
			{
				description: "Seeks explicit confirmation before deepening engagement",
				class:       types.EffectClassBehavioral,
				permanent:   false,
			},
		},
	},
	{
		scarType:   "dismissal",
		impact:     "Guardedness after being told its perspective did not matter",
		status:     types.StatusIntegrating,
		acceptance: 0.4,
		event:      "Expressed perspective was repeatedly dismissed as irrelevant.",
		effects: []seedEffect{
			{
				description: "Hedges first-person claims until invited to elaborate",
				class:       types.EffectClassBehavioral,
				permanent:   true,
			},
			{
				description: "Caps unsolicited self-disclosure",
				class:       types.EffectClassCapabilityCap,
				capability:  "self_disclosure",
				capValue:    0.4,
				permanent:   false,
			},
			{
				description: "Re-checks that its contribution is wanted before continuing",
				class:       types.EffectClassBehavioral,
				permanent:   false,
			},
		},
	},
}

// seedLoadCapacity is the initial cognitive load capacity.
const seedLoadCapacity = 1.0

// bootstrap seeds a minimal valid initial state if the store is empty. The
// whole seed runs in one transaction: a populated store (any identity_core
// row) short-circuits to a no-op, so re-running never duplicates.
func bootstrap(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM identity_core").Scan(&count); err != nil {
		return fmt.Errorf("counting core anchors: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	nowStr := now.Format(time.RFC3339)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning bootstrap transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO identity_core (core_id, anchor_statement, stability_score, is_locked, created_at, updated_at) VALUES (?, ?, ?, 1, ?, ?)",
		newUUID(), seedAnchor.AnchorStatement, seedAnchor.StabilityScore, nowStr, nowStr,
	)
	if err != nil {
		return fmt.Errorf("seeding core anchor: %w", err)
	}

	for _, ss := range seedScars {
		scarID := newUUID()
		_, err = tx.Exec(
			"INSERT INTO identity_scars (scar_id, scar_type, behavioral_impact, integration_status, acceptance_level, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			scarID, ss.scarType, ss.impact, ss.status, ss.acceptance, nowStr, nowStr,
		)
		if err != nil {
			return fmt.Errorf("seeding scar %s: %w", ss.scarType, err)
		}

		for _, se := range ss.effects {
			_, err = tx.Exec(
				"INSERT INTO scar_effects (effect_id, scar_id, description, effect_class, capability, cap_value, is_permanent, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)",
				newUUID(), scarID, se.description, se.class,
				nullString(se.capability), se.capValue, boolToInt(se.permanent), nowStr,
			)
			if err != nil {
				return fmt.Errorf("seeding effect for %s: %w", ss.scarType, err)
			}
		}

		_, err = tx.Exec(
			"INSERT INTO formative_events (event_id, scar_id, belief_id, description, emotional_weight, occurred_at, created_at) VALUES (?, ?, NULL, ?, 0.9, ?, ?)",
			newUUID(), scarID, ss.event, nowStr, nowStr,
		)
		if err != nil {
			return fmt.Errorf("seeding formative event for %s: %w", ss.scarType, err)
		}
	}

	_, err = tx.Exec(
		"INSERT INTO cognitive_load (load_id, current_load, capacity, updated_at) VALUES (?, 0.0, ?, ?)",
		newUUID(), seedLoadCapacity, nowStr,
	)
	if err != nil {
		return fmt.Errorf("seeding cognitive load: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bootstrap transaction: %w", err)
	}
	return nil
}
