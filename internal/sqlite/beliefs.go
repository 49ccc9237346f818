// This file implements the beliefs and belief_embeddings table accessors and
// the supersede operation. Beliefs are never deleted: superseding closes the
// old belief's validity interval and inserts the successor in one
// transaction.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/keelworks/keel/pkg/types"
)

const beliefColumns = "belief_id, statement, belief_type, conviction_score, valid_from, valid_to, is_active, superseded_by, created_at"

func (t *table) getBelief(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+beliefColumns+" FROM beliefs WHERE belief_id = ?", id,
	)
	belief, err := scanBelief(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting belief %s: %w", id, err)
	}
	return belief, nil
}

func (t *table) setBelief(id string, data any) (string, error) {
	belief, ok := data.(*types.Belief)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := belief.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()

	if id == "" {
		belief.BeliefID = newUUID()
		if belief.ValidFrom.IsZero() {
			belief.ValidFrom = now
		}
		belief.IsActive = true
		belief.ValidTo = nil
		belief.CreatedAt = now
		if err := insertBelief(t.backend.db, belief); err != nil {
			return "", fmt.Errorf("inserting belief: %w", err)
		}
		return belief.BeliefID, nil
	}

	old, err := t.snapshotByID(id)
	if err != nil {
		return "", err
	}
	if err := check(types.BeliefsTable, OpUpdate, old, beliefSnapshot(belief)); err != nil {
		return "", err
	}

	_, err = t.backend.db.Exec(
		"UPDATE beliefs SET statement = ?, belief_type = ?, conviction_score = ?, valid_from = ?, valid_to = ?, is_active = ?, superseded_by = ? WHERE belief_id = ?",
		belief.Statement, belief.BeliefType, belief.ConvictionScore,
		belief.ValidFrom.Format(time.RFC3339), nullTimeString(belief.ValidTo),
		boolToInt(belief.IsActive), nullString(belief.SupersededBy), id,
	)
	if err != nil {
		return "", fmt.Errorf("updating belief %s: %w", id, err)
	}
	return id, nil
}

func (t *table) fetchBeliefs(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+beliefColumns+" FROM beliefs"+where+" ORDER BY created_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching beliefs: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		belief, err := scanBelief(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning belief: %w", err)
		}
		result = append(result, belief)
	}
	return result, rows.Err()
}

// SupersedeBelief retires the belief oldID and inserts successor as its
// replacement, atomically: the old belief's validity interval is closed and
// the successor inserted in one transaction, so both happen or neither does.
// The successor's ID is generated unless already set. Returns the successor's
// ID.
func (b *Backend) SupersedeBelief(oldID string, successor *types.Belief) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return "", types.ErrStoreDetached
	}
	if oldID == "" {
		return "", types.ErrInvalidID
	}
	if err := successor.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()

	tx, err := b.db.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning supersede transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := scanBelief(tx.QueryRow(
		"SELECT "+beliefColumns+" FROM beliefs WHERE belief_id = ?", oldID,
	))
	if err != nil {
		if isNoRows(err) {
			return "", types.ErrNotFound
		}
		return "", fmt.Errorf("reading belief %s: %w", oldID, err)
	}
	if !old.IsCurrent() {
		return "", fmt.Errorf("belief %s: %w", oldID, types.ErrBeliefClosed)
	}

	if successor.BeliefID == "" {
		successor.BeliefID = newUUID()
	}
	successor.IsActive = true
	successor.ValidTo = nil
	if successor.ValidFrom.IsZero() {
		successor.ValidFrom = now
	}
	successor.CreatedAt = now

	closed := *old
	closedAt := now
	closed.ValidTo = &closedAt
	closed.IsActive = false
	closed.SupersededBy = successor.BeliefID
	if err := check(types.BeliefsTable, OpUpdate, beliefSnapshot(old), beliefSnapshot(&closed)); err != nil {
		return "", err
	}

	_, err = tx.Exec(
		"UPDATE beliefs SET valid_to = ?, is_active = 0, superseded_by = ? WHERE belief_id = ?",
		closedAt.Format(time.RFC3339), successor.BeliefID, oldID,
	)
	if err != nil {
		return "", fmt.Errorf("closing belief %s: %w", oldID, err)
	}

	_, err = tx.Exec(
		"INSERT INTO beliefs ("+beliefColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		successor.BeliefID, successor.Statement, successor.BeliefType, successor.ConvictionScore,
		successor.ValidFrom.Format(time.RFC3339), nil, 1, nil,
		successor.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("inserting successor belief: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing supersede: %w", err)
	}
	return successor.BeliefID, nil
}

func insertBelief(db *sql.DB, belief *types.Belief) error {
	_, err := db.Exec(
		"INSERT INTO beliefs ("+beliefColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		belief.BeliefID, belief.Statement, belief.BeliefType, belief.ConvictionScore,
		belief.ValidFrom.Format(time.RFC3339), nullTimeString(belief.ValidTo),
		boolToInt(belief.IsActive), nullString(belief.SupersededBy),
		belief.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// beliefSnapshot converts a belief entity to a guard row.
func beliefSnapshot(b *types.Belief) row {
	r := row{
		"belief_id":        b.BeliefID,
		"statement":        b.Statement,
		"belief_type":      b.BeliefType,
		"conviction_score": int64(b.ConvictionScore),
		"valid_from":       b.ValidFrom.Format(time.RFC3339),
		"is_active":        boolToInt(b.IsActive),
		"created_at":       b.CreatedAt.Format(time.RFC3339),
	}
	if b.ValidTo != nil {
		r["valid_to"] = b.ValidTo.Format(time.RFC3339)
	}
	if b.SupersededBy != "" {
		r["superseded_by"] = b.SupersededBy
	}
	return r
}

func scanBelief(s scanner) (*types.Belief, error) {
	var belief types.Belief
	var active int64
	var validFrom, createdAt string
	var validTo, supersededBy sql.NullString
	if err := s.Scan(&belief.BeliefID, &belief.Statement, &belief.BeliefType,
		&belief.ConvictionScore, &validFrom, &validTo, &active, &supersededBy,
		&createdAt); err != nil {
		return nil, err
	}
	belief.IsActive = active != 0
	belief.ValidFrom = parseTime(validFrom)
	belief.ValidTo = parseNullTime(validTo)
	belief.SupersededBy = supersededBy.String
	belief.CreatedAt = parseTime(createdAt)
	return &belief, nil
}

const embeddingColumns = "embedding_id, belief_id, embedding, dimensions, norm, created_at"

func (t *table) getEmbedding(id string) (any, error) {
	r := t.backend.db.QueryRow(
		"SELECT "+embeddingColumns+" FROM belief_embeddings WHERE embedding_id = ?", id,
	)
	emb, err := scanEmbedding(r)
	if err != nil {
		if isNoRows(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting embedding %s: %w", id, err)
	}
	return emb, nil
}

// setEmbedding creates or replaces the embedding for a belief. Embeddings are
// keyed one-per-belief; regenerating replaces the stored vector in place.
func (t *table) setEmbedding(id string, data any) (string, error) {
	emb, ok := data.(*types.BeliefEmbedding)
	if !ok {
		return "", types.ErrInvalidData
	}
	if emb.BeliefID == "" || len(emb.Vector) == 0 {
		return "", types.ErrInvalidData
	}

	var exists int
	err := t.backend.db.QueryRow(
		"SELECT 1 FROM beliefs WHERE belief_id = ?", emb.BeliefID,
	).Scan(&exists)
	if err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("embedding references missing belief %s: %w",
				emb.BeliefID, types.ErrReferentialIntegrity)
		}
		return "", fmt.Errorf("checking belief existence: %w", err)
	}

	now := time.Now().UTC()
	vec, err := json.Marshal(emb.Vector)
	if err != nil {
		return "", fmt.Errorf("encoding embedding vector: %w", err)
	}

	if id == "" {
		id = newUUID()
	}
	emb.EmbeddingID = id
	emb.Dimensions = len(emb.Vector)
	emb.CreatedAt = now

	_, err = t.backend.db.Exec(
		`INSERT INTO belief_embeddings (embedding_id, belief_id, embedding, dimensions, norm, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT(belief_id) DO UPDATE SET embedding = excluded.embedding,
             dimensions = excluded.dimensions, norm = excluded.norm, created_at = excluded.created_at`,
		id, emb.BeliefID, string(vec), emb.Dimensions, emb.Norm, now.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("storing embedding for belief %s: %w", emb.BeliefID, err)
	}
	return id, nil
}

func (t *table) fetchEmbeddings(where string, args []any) ([]any, error) {
	rows, err := t.backend.db.Query(
		"SELECT "+embeddingColumns+" FROM belief_embeddings"+where+" ORDER BY created_at ASC", args...,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching embeddings: %w", err)
	}
	defer rows.Close()

	var result []any
	for rows.Next() {
		emb, err := scanEmbedding(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		result = append(result, emb)
	}
	return result, rows.Err()
}

func scanEmbedding(s scanner) (*types.BeliefEmbedding, error) {
	var emb types.BeliefEmbedding
	var vec, createdAt string
	if err := s.Scan(&emb.EmbeddingID, &emb.BeliefID, &vec, &emb.Dimensions,
		&emb.Norm, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(vec), &emb.Vector); err != nil {
		return nil, fmt.Errorf("decoding embedding vector: %w", err)
	}
	emb.CreatedAt = parseTime(createdAt)
	return &emb, nil
}

// nullString returns nil for an empty string so SQLite stores NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTimeString formats an optional timestamp, returning nil for NULL.
func nullTimeString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}
