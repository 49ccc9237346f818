// This file implements the supporting history and running-state table
// accessors: formative_events, belief_causality, cognitive_tension,
// identity_distress, belief_echoes, and cognitive_load. The event tables are
// append-only; cognitive_load is a single row that is only ever updated.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/keelworks/keel/pkg/types"
)

// requireBelief rejects mutations that would orphan a dependent row.
func (t *table) requireBelief(beliefID string) error {
	if beliefID == "" {
		return fmt.Errorf("missing belief reference: %w", types.ErrReferentialIntegrity)
	}
	var exists int
	err := t.backend.db.QueryRow(
		"SELECT 1 FROM beliefs WHERE belief_id = ?", beliefID,
	).Scan(&exists)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("belief %s does not exist: %w", beliefID, types.ErrReferentialIntegrity)
		}
		return fmt.Errorf("checking belief existence: %w", err)
	}
	return nil
}

const eventColumns = "event_id, scar_id, belief_id, description, emotional_weight, occurred_at, created_at"

func (t *table) getEvent(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+eventColumns+" FROM formative_events WHERE event_id = ?", id,
	)
	event, err := scanEvent(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting event %s: %w", id, err)
	}
	return event, nil
}

func (t *table) setEvent(id string, data any) (string, error) {
	event, ok := data.(*types.FormativeEvent)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", fmt.Errorf("%s is append-only: %w", types.EventsTable, types.ErrAppendOnly)
	}
	if event.Description == "" {
		return "", types.ErrInvalidData
	}
	if event.ScarID != "" {
		if err := t.requireScar(event.ScarID); err != nil {
			return "", err
		}
	}
	if event.BeliefID != "" {
		if err := t.requireBelief(event.BeliefID); err != nil {
			return "", err
		}
	}

	now := time.Now().UTC()
	event.EventID = newUUID()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = now
	}
	event.CreatedAt = now
	_, err := t.backend.db.Exec(
		"INSERT INTO formative_events ("+eventColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		event.EventID, nullString(event.ScarID), nullString(event.BeliefID),
		event.Description, event.EmotionalWeight,
		event.OccurredAt.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting event: %w", err)
	}
	return event.EventID, nil
}

func (t *table) fetchEvents(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+eventColumns+" FROM formative_events"+where+" ORDER BY occurred_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

func scanEvent(s scanner) (*types.FormativeEvent, error) {
	var event types.FormativeEvent
	var scarID, beliefID sql.NullString
	var occurredAt, createdAt string
	if err := s.Scan(&event.EventID, &scarID, &beliefID, &event.Description,
		&event.EmotionalWeight, &occurredAt, &createdAt); err != nil {
		return nil, err
	}
	event.ScarID = scarID.String
	event.BeliefID = beliefID.String
	event.OccurredAt = parseTime(occurredAt)
	event.CreatedAt = parseTime(createdAt)
	return &event, nil
}

const causalityColumns = "causality_id, cause_belief_id, effect_belief_id, strength, created_at"

func (t *table) getCausality(id string) (any, error) {
	var edge types.BeliefCausality
	var createdAt string
	err := t.backend.db.QueryRow(
		"SELECT "+causalityColumns+" FROM belief_causality WHERE causality_id = ?", id,
	).Scan(&edge.CausalityID, &edge.CauseBeliefID, &edge.EffectBeliefID,
		&edge.Strength, &createdAt)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting causality %s: %w", id, err)
	}
	edge.CreatedAt = parseTime(createdAt)
	return &edge, nil
}

func (t *table) setCausality(id string, data any) (string, error) {
	edge, ok := data.(*types.BeliefCausality)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", fmt.Errorf("%s is append-only: %w", types.CausalityTable, types.ErrAppendOnly)
	}
	if err := t.requireBelief(edge.CauseBeliefID); err != nil {
		return "", err
	}
	if err := t.requireBelief(edge.EffectBeliefID); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	edge.CausalityID = newUUID()
	edge.CreatedAt = now
	_, err := t.backend.db.Exec(
		"INSERT INTO belief_causality ("+causalityColumns+") VALUES (?, ?, ?, ?, ?)",
		edge.CausalityID, edge.CauseBeliefID, edge.EffectBeliefID,
		edge.Strength, now.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting causality: %w", err)
	}
	return edge.CausalityID, nil
}

func (t *table) fetchCausalities(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+causalityColumns+" FROM belief_causality"+where+" ORDER BY created_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching causalities: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var edge types.BeliefCausality
		var createdAt string
		if err := rows.Scan(&edge.CausalityID, &edge.CauseBeliefID,
			&edge.EffectBeliefID, &edge.Strength, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning causality: %w", err)
		}
		edge.CreatedAt = parseTime(createdAt)
		result = append(result, &edge)
	}
	return result, rows.Err()
}

const tensionColumns = "tension_id, belief_a, belief_b, tension_type, magnitude, detected_at, resolved_at"

func (t *table) getTension(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+tensionColumns+" FROM cognitive_tension WHERE tension_id = ?", id,
	)
	tension, err := scanTension(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting tension %s: %w", id, err)
	}
	return tension, nil
}

func (t *table) setTension(id string, data any) (string, error) {
	tension, ok := data.(*types.CognitiveTension)
	if !ok {
		return "", types.ErrInvalidData
	}

	now := time.Now().UTC()

	if id == "" {
		if err := t.requireBelief(tension.BeliefA); err != nil {
			return "", err
		}
		if err := t.requireBelief(tension.BeliefB); err != nil {
			return "", err
		}
		tension.TensionID = newUUID()
		if tension.DetectedAt.IsZero() {
			tension.DetectedAt = now
		}
		_, err := t.backend.db.Exec(
			"INSERT INTO cognitive_tension ("+tensionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
			tension.TensionID, tension.BeliefA, tension.BeliefB, tension.TensionType,
			tension.Magnitude, tension.DetectedAt.Format(time.RFC3339),
			nullTimeString(tension.ResolvedAt),
		)
		if err != nil {
			return "", fmt.Errorf("inserting tension: %w", err)
		}
		return tension.TensionID, nil
	}

	old, err := t.snapshotByID(id)
	if err != nil {
		return "", err
	}
	if err := check(types.TensionTable, OpUpdate, old, tensionSnapshot(tension)); err != nil {
		return "", err
	}

	_, err = t.backend.db.Exec(
		"UPDATE cognitive_tension SET resolved_at = ? WHERE tension_id = ?",
		nullTimeString(tension.ResolvedAt), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating tension %s: %w", id, err)
	}
	return id, nil
}

func (t *table) fetchTensions(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+tensionColumns+" FROM cognitive_tension"+where+" ORDER BY detected_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching tensions: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		tension, err := scanTension(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tension: %w", err)
		}
		result = append(result, tension)
	}
	return result, rows.Err()
}

// tensionSnapshot converts a tension entity to a guard row.
func tensionSnapshot(tn *types.CognitiveTension) row {
	r := row{
		"tension_id":   tn.TensionID,
		"belief_a":     tn.BeliefA,
		"belief_b":     tn.BeliefB,
		"tension_type": tn.TensionType,
		"magnitude":    tn.Magnitude,
		"detected_at":  tn.DetectedAt.Format(time.RFC3339),
	}
	if tn.ResolvedAt != nil {
		r["resolved_at"] = tn.ResolvedAt.Format(time.RFC3339)
	}
	return r
}

func scanTension(s scanner) (*types.CognitiveTension, error) {
	var tension types.CognitiveTension
	var detectedAt string
	var resolvedAt sql.NullString
	if err := s.Scan(&tension.TensionID, &tension.BeliefA, &tension.BeliefB,
		&tension.TensionType, &tension.Magnitude, &detectedAt, &resolvedAt); err != nil {
		return nil, err
	}
	tension.DetectedAt = parseTime(detectedAt)
	tension.ResolvedAt = parseNullTime(resolvedAt)
	return &tension, nil
}

const distressColumns = "distress_id, source, distress_level, context, recorded_at"

func (t *table) getDistress(id string) (any, error) {
	var d types.IdentityDistress
	var context sql.NullString
	var recordedAt string
	err := t.backend.db.QueryRow(
		"SELECT "+distressColumns+" FROM identity_distress WHERE distress_id = ?", id,
	).Scan(&d.DistressID, &d.Source, &d.DistressLevel, &context, &recordedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting distress %s: %w", id, err)
	}
	d.Context = context.String
	d.RecordedAt = parseTime(recordedAt)
	return &d, nil
}

func (t *table) setDistress(id string, data any) (string, error) {
	d, ok := data.(*types.IdentityDistress)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", fmt.Errorf("%s is append-only: %w", types.DistressTable, types.ErrAppendOnly)
	}
	if d.Source == "" {
		return "", types.ErrInvalidData
	}

	now := time.Now().UTC()
	d.DistressID = newUUID()
	if d.RecordedAt.IsZero() {
		d.RecordedAt = now
	}
	_, err := t.backend.db.Exec(
		"INSERT INTO identity_distress ("+distressColumns+") VALUES (?, ?, ?, ?, ?)",
		d.DistressID, d.Source, d.DistressLevel, nullString(d.Context),
		d.RecordedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting distress: %w", err)
	}
	return d.DistressID, nil
}

func (t *table) fetchDistresses(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+distressColumns+" FROM identity_distress"+where+" ORDER BY recorded_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching distress records: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var d types.IdentityDistress
		var context sql.NullString
		var recordedAt string
		if err := rows.Scan(&d.DistressID, &d.Source, &d.DistressLevel,
			&context, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning distress: %w", err)
		}
		d.Context = context.String
		d.RecordedAt = parseTime(recordedAt)
		result = append(result, &d)
	}
	return result, rows.Err()
}

const echoColumns = "echo_id, belief_id, echo_strength, context, echoed_at"

func (t *table) getEcho(id string) (any, error) {
	var echo types.BeliefEcho
	var context sql.NullString
	var echoedAt string
	err := t.backend.db.QueryRow(
		"SELECT "+echoColumns+" FROM belief_echoes WHERE echo_id = ?", id,
	).Scan(&echo.EchoID, &echo.BeliefID, &echo.EchoStrength, &context, &echoedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting echo %s: %w", id, err)
	}
	echo.Context = context.String
	echo.EchoedAt = parseTime(echoedAt)
	return &echo, nil
}

func (t *table) setEcho(id string, data any) (string, error) {
	echo, ok := data.(*types.BeliefEcho)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		return "", fmt.Errorf("%s is append-only: %w", types.EchoesTable, types.ErrAppendOnly)
	}
	if err := t.requireBelief(echo.BeliefID); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	echo.EchoID = newUUID()
	if echo.EchoedAt.IsZero() {
		echo.EchoedAt = now
	}
	_, err := t.backend.db.Exec(
		"INSERT INTO belief_echoes ("+echoColumns+") VALUES (?, ?, ?, ?, ?)",
		echo.EchoID, echo.BeliefID, echo.EchoStrength, nullString(echo.Context),
		echo.EchoedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting echo: %w", err)
	}
	return echo.EchoID, nil
}

func (t *table) fetchEchoes(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+echoColumns+" FROM belief_echoes"+where+" ORDER BY echoed_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching echoes: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var echo types.BeliefEcho
		var context sql.NullString
		var echoedAt string
		if err := rows.Scan(&echo.EchoID, &echo.BeliefID, &echo.EchoStrength,
			&context, &echoedAt); err != nil {
			return nil, fmt.Errorf("scanning echo: %w", err)
		}
		echo.Context = context.String
		echo.EchoedAt = parseTime(echoedAt)
		result = append(result, &echo)
	}
	return result, rows.Err()
}

const loadColumns = "load_id, current_load, capacity, updated_at"

func (t *table) getLoad(id string) (any, error) {
	var load types.CognitiveLoad
	var updatedAt string
	err := t.backend.db.QueryRow(
		"SELECT "+loadColumns+" FROM cognitive_load WHERE load_id = ?", id,
	).Scan(&load.LoadID, &load.CurrentLoad, &load.Capacity, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting cognitive load %s: %w", id, err)
	}
	load.UpdatedAt = parseTime(updatedAt)
	return &load, nil
}

// setLoad updates the single running-state row. Creating a second row is not
// supported: the row is seeded at bootstrap.
func (t *table) setLoad(id string, data any) (string, error) {
	load, ok := data.(*types.CognitiveLoad)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id == "" {
		return "", types.ErrInvalidID
	}
	if _, err := t.snapshotByID(id); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	load.LoadID = id
	load.UpdatedAt = now
	_, err := t.backend.db.Exec(
		"UPDATE cognitive_load SET current_load = ?, capacity = ?, updated_at = ? WHERE load_id = ?",
		load.CurrentLoad, load.Capacity, now.Format(time.RFC3339), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating cognitive load: %w", err)
	}
	return id, nil
}

func (t *table) fetchLoads(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+loadColumns+" FROM cognitive_load"+where, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching cognitive load: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		var load types.CognitiveLoad
		var updatedAt string
		if err := rows.Scan(&load.LoadID, &load.CurrentLoad, &load.Capacity, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning cognitive load: %w", err)
		}
		load.UpdatedAt = parseTime(updatedAt)
		result = append(result, &load)
	}
	return result, rows.Err()
}
