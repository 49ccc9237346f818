// This file implements the identity_scars, scar_effects,
// scar_acknowledgements, and scar_activations table accessors. Scars and
// effects can never be deleted; scar core fields are frozen at creation and
// permanent effects cannot be deactivated. The guard enforces all of this on
// every mutation path.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/keelworks/keel/pkg/types"
)

const scarColumns = "scar_id, scar_type, behavioral_impact, integration_status, acceptance_level, created_at, updated_at"

func (t *table) getScar(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+scarColumns+" FROM identity_scars WHERE scar_id = ?", id,
	)
	scar, err := scanScar(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting scar %s: %w", id, err)
	}
	return scar, nil
}

func (t *table) setScar(id string, data any) (string, error) {
	scar, ok := data.(*types.IdentityScar)
	if !ok {
		return "", types.ErrInvalidData
	}
	if scar.ScarType == "" || scar.BehavioralImpact == "" {
		return "", types.ErrInvalidData
	}
	if scar.AcceptanceLevel < 0.0 || scar.AcceptanceLevel > 1.0 {
		return "", types.ErrInvalidAcceptance
	}
	if scar.IntegrationStatus == "" {
		scar.IntegrationStatus = types.StatusRaw
	}

	now := time.Now().UTC()

	if id == "" {
		scar.ScarID = newUUID()
		scar.CreatedAt = now
		scar.UpdatedAt = now
		_, err := t.backend.db.Exec(
			"INSERT INTO identity_scars ("+scarColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			scar.ScarID, scar.ScarType, scar.BehavioralImpact, scar.IntegrationStatus,
			scar.AcceptanceLevel, now.Format(time.RFC3339), now.Format(time.RFC3339),
		)
		if err != nil {
			return "", fmt.Errorf("inserting scar: %w", err)
		}
		return scar.ScarID, nil
	}

	old, err := t.snapshotByID(id)
	if err != nil {
		return "", err
	}
	if err := check(types.ScarsTable, OpUpdate, old, scarSnapshot(scar)); err != nil {
		return "", err
	}

	scar.UpdatedAt = now
	_, err = t.backend.db.Exec(
		"UPDATE identity_scars SET integration_status = ?, acceptance_level = ?, updated_at = ? WHERE scar_id = ?",
		scar.IntegrationStatus, scar.AcceptanceLevel, now.Format(time.RFC3339), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating scar %s: %w", id, err)
	}
	return id, nil
}

func (t *table) fetchScars(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+scarColumns+" FROM identity_scars"+where+" ORDER BY created_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching scars: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		scar, err := scanScar(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scar: %w", err)
		}
		result = append(result, scar)
	}
	return result, rows.Err()
}

// scarSnapshot converts a scar entity to a guard row.
func scarSnapshot(s *types.IdentityScar) row {
	return row{
		"scar_id":            s.ScarID,
		"scar_type":          s.ScarType,
		"behavioral_impact":  s.BehavioralImpact,
		"integration_status": s.IntegrationStatus,
		"acceptance_level":   s.AcceptanceLevel,
		"created_at":         s.CreatedAt.Format(time.RFC3339),
		"updated_at":         s.UpdatedAt.Format(time.RFC3339),
	}
}

func scanScar(s scanner) (*types.IdentityScar, error) {
	var scar types.IdentityScar
	var createdAt, updatedAt string
	if err := s.Scan(&scar.ScarID, &scar.ScarType, &scar.BehavioralImpact,
		&scar.IntegrationStatus, &scar.AcceptanceLevel, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	scar.CreatedAt = parseTime(createdAt)
	scar.UpdatedAt = parseTime(updatedAt)
	return &scar, nil
}

const effectColumns = "effect_id, scar_id, description, effect_class, capability, cap_value, is_permanent, is_active, created_at"

func (t *table) getEffect(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+effectColumns+" FROM scar_effects WHERE effect_id = ?", id,
	)
	effect, err := scanEffect(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting effect %s: %w", id, err)
	}
	return effect, nil
}

func (t *table) setEffect(id string, data any) (string, error) {
	effect, ok := data.(*types.ScarEffect)
	if !ok {
		return "", types.ErrInvalidData
	}
	if effect.Description == "" {
		return "", types.ErrInvalidData
	}
	if effect.EffectClass == "" {
		effect.EffectClass = types.EffectClassBehavioral
	}
	if !types.ValidEffectClass(effect.EffectClass) {
		return "", types.ErrInvalidEffectClass
	}

	now := time.Now().UTC()

	if id == "" {
		if err := t.requireScar(effect.ScarID); err != nil {
			return "", err
		}
		effect.EffectID = newUUID()
		effect.CreatedAt = now
		_, err := t.backend.db.Exec(
			"INSERT INTO scar_effects ("+effectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
			effect.EffectID, effect.ScarID, effect.Description, effect.EffectClass,
			nullString(effect.Capability), effect.CapValue,
			boolToInt(effect.IsPermanent), boolToInt(effect.IsActive),
			now.Format(time.RFC3339),
		)
		if err != nil {
			return "", fmt.Errorf("inserting effect: %w", err)
		}
		return effect.EffectID, nil
	}

	old, err := t.snapshotByID(id)
	if err != nil {
		return "", err
	}
	if err := check(types.EffectsTable, OpUpdate, old, effectSnapshot(effect)); err != nil {
		return "", err
	}

	_, err = t.backend.db.Exec(
		"UPDATE scar_effects SET description = ?, effect_class = ?, capability = ?, cap_value = ?, is_permanent = ?, is_active = ? WHERE effect_id = ?",
		effect.Description, effect.EffectClass, nullString(effect.Capability),
		effect.CapValue, boolToInt(effect.IsPermanent), boolToInt(effect.IsActive), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating effect %s: %w", id, err)
	}
	return id, nil
}

func (t *table) fetchEffects(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+effectColumns+" FROM scar_effects"+where+" ORDER BY created_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching effects: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		effect, err := scanEffect(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning effect: %w", err)
		}
		result = append(result, effect)
	}
	return result, rows.Err()
}

// effectSnapshot converts an effect entity to a guard row.
func effectSnapshot(e *types.ScarEffect) row {
	return row{
		"effect_id":    e.EffectID,
		"scar_id":      e.ScarID,
		"description":  e.Description,
		"effect_class": e.EffectClass,
		"capability":   e.Capability,
		"cap_value":    e.CapValue,
		"is_permanent": boolToInt(e.IsPermanent),
		"is_active":    boolToInt(e.IsActive),
		"created_at":   e.CreatedAt.Format(time.RFC3339),
	}
}

func scanEffect(s scanner) (*types.ScarEffect, error) {
	var effect types.ScarEffect
	var permanent, active int64
	var capability sql.NullString
	var capValue sql.NullFloat64
	var createdAt string
	if err := s.Scan(&effect.EffectID, &effect.ScarID, &effect.Description,
		&effect.EffectClass, &capability, &capValue, &permanent, &active,
		&createdAt); err != nil {
		return nil, err
	}
	effect.Capability = capability.String
	effect.CapValue = capValue.Float64
	effect.IsPermanent = permanent != 0
	effect.IsActive = active != 0
	effect.CreatedAt = parseTime(createdAt)
	return &effect, nil
}

// requireScar rejects mutations that would orphan a dependent row.
func (t *table) requireScar(scarID string) error {
	if scarID == "" {
		return fmt.Errorf("missing scar reference: %w", types.ErrReferentialIntegrity)
	}
	var exists int
	err := t.backend.db.QueryRow(
		"SELECT 1 FROM identity_scars WHERE scar_id = ?", scarID,
	).Scan(&exists)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("scar %s does not exist: %w", scarID, types.ErrReferentialIntegrity)
		}
		return fmt.Errorf("checking scar existence: %w", err)
	}
	return nil
}

const ackColumns = "ack_id, scar_id, context, acknowledged_at"

func (t *table) getAck(id string) (any, error) {
	var ack types.ScarAcknowledgement
	var context sql.NullString
	var ackedAt string
	err := t.backend.db.QueryRow(
		"SELECT "+ackColumns+" FROM scar_acknowledgements WHERE ack_id = ?", id,
	).Scan(&ack.AckID, &ack.ScarID, &context, &ackedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting acknowledgement %s: %w", id, err)
	}
	ack.Context = context.String
	ack.AcknowledgedAt = parseTime(ackedAt)
	return &ack, nil
}

func (t *table) setAck(id string, data any) (string, error) {
	ack, ok := data.(*types.ScarAcknowledgement)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", fmt.Errorf("%s is append-only: %w", types.AcksTable, types.ErrAppendOnly)
	}
	if err := t.requireScar(ack.ScarID); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	ack.AckID = newUUID()
	if ack.AcknowledgedAt.IsZero() {
		ack.AcknowledgedAt = now
	}
	_, err := t.backend.db.Exec(
		"INSERT INTO scar_acknowledgements ("+ackColumns+") VALUES (?, ?, ?, ?)",
		ack.AckID, ack.ScarID, nullString(ack.Context),
		ack.AcknowledgedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting acknowledgement: %w", err)
	}
	return ack.AckID, nil
}

func (t *table) fetchAcks(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+ackColumns+" FROM scar_acknowledgements"+where+" ORDER BY acknowledged_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching acknowledgements: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var ack types.ScarAcknowledgement
		var context sql.NullString
		var ackedAt string
		if err := rows.Scan(&ack.AckID, &ack.ScarID, &context, &ackedAt); err != nil {
			return nil, fmt.Errorf("scanning acknowledgement: %w", err)
		}
		ack.Context = context.String
		ack.AcknowledgedAt = parseTime(ackedAt)
		result = append(result, &ack)
	}
	return result, rows.Err()
}

const activationColumns = "activation_id, scar_id, trigger_context, activated_at"

func (t *table) getActivation(id string) (any, error) {
	var act types.ScarActivation
	var trigger sql.NullString
	var activatedAt string
	err := t.backend.db.QueryRow(
		"SELECT "+activationColumns+" FROM scar_activations WHERE activation_id = ?", id,
	).Scan(&act.ActivationID, &act.ScarID, &trigger, &activatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting activation %s: %w", id, err)
	}
	act.TriggerContext = trigger.String
	act.ActivatedAt = parseTime(activatedAt)
	return &act, nil
}

func (t *table) setActivation(id string, data any) (string, error) {
	act, ok := data.(*types.ScarActivation)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", fmt.Errorf("%s is append-only: %w", types.ActivationsTable, types.ErrAppendOnly)
	}
	if err := t.requireScar(act.ScarID); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	act.ActivationID = newUUID()
	if act.ActivatedAt.IsZero() {
		act.ActivatedAt = now
	}
	_, err := t.backend.db.Exec(
		"INSERT INTO scar_activations ("+activationColumns+") VALUES (?, ?, ?, ?)",
		act.ActivationID, act.ScarID, nullString(act.TriggerContext),
		act.ActivatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting activation: %w", err)
	}
	return act.ActivationID, nil
}

func (t *table) fetchActivations(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+activationColumns+" FROM scar_activations"+where+" ORDER BY activated_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching activations: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var act types.ScarActivation
		var trigger sql.NullString
		var activatedAt string
		if err := rows.Scan(&act.ActivationID, &act.ScarID, &trigger, &activatedAt); err != nil {
			return nil, fmt.Errorf("scanning activation: %w", err)
		}
		act.TriggerContext = trigger.String
		act.ActivatedAt = parseTime(activatedAt)
		result = append(result, &act)
	}
	return result, rows.Err()
}
