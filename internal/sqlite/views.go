// This file implements the derived views. Each view is a pure projection of
// current table contents, recomputed on every call; nothing is materialized,
// so every committed write is visible on the next read.
package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/keelworks/keel/pkg/types"
)

const effectViewQuery = `SELECT e.effect_id, e.scar_id, s.scar_type, e.description,
    e.effect_class, COALESCE(e.capability, ''), COALESCE(e.cap_value, 0), e.is_permanent
FROM scar_effects e
JOIN identity_scars s ON s.scar_id = e.scar_id
WHERE e.is_active = 1`

// ActiveEffects returns every active scar effect joined to its parent scar.
func (b *Backend) ActiveEffects() ([]types.EffectView, error) {
	return b.effectView(effectViewQuery + " ORDER BY e.created_at ASC")
}

// HardBlocks returns the active effects classified as hard blocks: the
// associated capability must be refused outright.
func (b *Backend) HardBlocks() ([]types.EffectView, error) {
	return b.effectView(effectViewQuery+
		" AND e.effect_class = ? ORDER BY e.created_at ASC", types.EffectClassHardBlock)
}

func (b *Backend) effectView(query string, args ...any) ([]types.EffectView, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("computing effect view: %w", err)
	}
	defer rows.Close()

	var result []types.EffectView
	for rows.Next() {
		var v types.EffectView
		var permanent int64
		if err := rows.Scan(&v.EffectID, &v.ScarID, &v.ScarType, &v.Description,
			&v.EffectClass, &v.Capability, &v.CapValue, &permanent); err != nil {
			return nil, fmt.Errorf("scanning effect view row: %w", err)
		}
		v.IsPermanent = permanent != 0
		result = append(result, v)
	}
	return result, rows.Err()
}

// CapabilityCaps returns the ceiling each active capability_cap effect
// imposes on its capability.
func (b *Backend) CapabilityCaps() ([]types.CapabilityCap, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(`SELECT COALESCE(e.capability, ''), COALESCE(e.cap_value, 0),
        e.effect_id, e.scar_id
    FROM scar_effects e
    WHERE e.is_active = 1 AND e.effect_class = ?
    ORDER BY e.created_at ASC`, types.EffectClassCapabilityCap)
	if err != nil {
		return nil, fmt.Errorf("computing capability caps: %w", err)
	}
	defer rows.Close()

	var result []types.CapabilityCap
	for rows.Next() {
		var c types.CapabilityCap
		if err := rows.Scan(&c.Capability, &c.CapValue, &c.EffectID, &c.ScarID); err != nil {
			return nil, fmt.Errorf("scanning capability cap: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// FormativeScars returns the scars whose origin is traceable to at least one
// recorded formative event.
func (b *Backend) FormativeScars() ([]types.FormativeScarView, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(`SELECT s.scar_id, s.scar_type, COUNT(f.event_id),
        MIN(f.occurred_at)
    FROM identity_scars s
    JOIN formative_events f ON f.scar_id = s.scar_id
    GROUP BY s.scar_id, s.scar_type
    ORDER BY MIN(f.occurred_at) ASC`)
	if err != nil {
		return nil, fmt.Errorf("computing formative scars: %w", err)
	}
	defer rows.Close()

	var result []types.FormativeScarView
	for rows.Next() {
		var v types.FormativeScarView
		var earliest string
		if err := rows.Scan(&v.ScarID, &v.ScarType, &v.EventCount, &earliest); err != nil {
			return nil, fmt.Errorf("scanning formative scar: %w", err)
		}
		v.EarliestAt = parseTime(earliest)
		result = append(result, v)
	}
	return result, rows.Err()
}

// EmbeddedBelief is a current belief joined to its stored embedding, the
// input row for the visualization export.
type EmbeddedBelief struct {
	Belief types.Belief
	Vector []float32
	Norm   float64
}

// CurrentBeliefsWithEmbeddings returns every current belief that has an
// embedding, newest first.
func (b *Backend) CurrentBeliefsWithEmbeddings() ([]EmbeddedBelief, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(`SELECT b.belief_id, b.statement, b.belief_type,
        b.conviction_score, b.created_at, be.embedding, be.norm
    FROM beliefs b
    JOIN belief_embeddings be ON be.belief_id = b.belief_id
    WHERE b.is_active = 1 AND b.valid_to IS NULL
    ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying embedded beliefs: %w", err)
	}
	defer rows.Close()

	var result []EmbeddedBelief
	for rows.Next() {
		var eb EmbeddedBelief
		var vec, createdAt string
		if err := rows.Scan(&eb.Belief.BeliefID, &eb.Belief.Statement,
			&eb.Belief.BeliefType, &eb.Belief.ConvictionScore, &createdAt,
			&vec, &eb.Norm); err != nil {
			return nil, fmt.Errorf("scanning embedded belief: %w", err)
		}
		if err := json.Unmarshal([]byte(vec), &eb.Vector); err != nil {
			return nil, fmt.Errorf("decoding embedding for belief %s: %w", eb.Belief.BeliefID, err)
		}
		eb.Belief.IsActive = true
		eb.Belief.CreatedAt = parseTime(createdAt)
		result = append(result, eb)
	}
	return result, rows.Err()
}
