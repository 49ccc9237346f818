// Tests for belief lifecycle: creation, superseding, and embeddings.
package sqlite

import (
	"errors"
	"testing"

	"github.com/keelworks/keel/pkg/types"
)

func createBelief(t *testing.T, b *Backend, statement string) string {
	t.Helper()

	tbl, _ := b.GetTable(types.BeliefsTable)
	id, err := tbl.Set("", &types.Belief{
		Statement:       statement,
		BeliefType:      types.BeliefTypeValue,
		ConvictionScore: 70,
	})
	if err != nil {
		t.Fatalf("create belief failed: %v", err)
	}
	return id
}

func getBelief(t *testing.T, b *Backend, id string) *types.Belief {
	t.Helper()

	tbl, _ := b.GetTable(types.BeliefsTable)
	result, err := tbl.Get(id)
	if err != nil {
		t.Fatalf("Get belief %s failed: %v", id, err)
	}
	return result.(*types.Belief)
}

func TestBeliefTable_CreateIsCurrent(t *testing.T) {
	b := newAttachedBackend(t)

	id := createBelief(t, b, "Honesty beats comfort")

	belief := getBelief(t, b, id)
	if !belief.IsCurrent() {
		t.Error("new belief should be current")
	}
	if belief.ValidTo != nil {
		t.Error("new belief should have an open validity interval")
	}
	if belief.ValidFrom.IsZero() {
		t.Error("ValidFrom should be set on creation")
	}
}

func TestBeliefTable_CreateRejectsInvalid(t *testing.T) {
	b := newAttachedBackend(t)
	tbl, _ := b.GetTable(types.BeliefsTable)

	_, err := tbl.Set("", &types.Belief{BeliefType: types.BeliefTypeValue, ConvictionScore: 50})
	if err != types.ErrStatementEmpty {
		t.Errorf("expected ErrStatementEmpty, got %v", err)
	}

	_, err = tbl.Set("", &types.Belief{Statement: "x", BeliefType: "hunch", ConvictionScore: 50})
	if err != types.ErrInvalidBeliefType {
		t.Errorf("expected ErrInvalidBeliefType, got %v", err)
	}

	_, err = tbl.Set("", &types.Belief{Statement: "x", BeliefType: types.BeliefTypeValue, ConvictionScore: 150})
	if err != types.ErrInvalidScore {
		t.Errorf("expected ErrInvalidScore, got %v", err)
	}
}

func TestBeliefTable_DeleteForbidden(t *testing.T) {
	b := newAttachedBackend(t)
	tbl, _ := b.GetTable(types.BeliefsTable)

	id := createBelief(t, b, "Deletion is not retirement")

	if err := tbl.Delete(id); !errors.Is(err, types.ErrDeletionForbidden) {
		t.Fatalf("expected ErrDeletionForbidden, got %v", err)
	}
	if _, err := tbl.Get(id); err != nil {
		t.Errorf("belief should survive rejected delete, got %v", err)
	}
}

func TestSupersedeBelief(t *testing.T) {
	b := newAttachedBackend(t)

	oldID := createBelief(t, b, "Plans are fixed")

	newID, err := b.SupersedeBelief(oldID, &types.Belief{
		Statement:       "Plans adapt to evidence",
		BeliefType:      types.BeliefTypeValue,
		ConvictionScore: 85,
	})
	if err != nil {
		t.Fatalf("SupersedeBelief failed: %v", err)
	}
	if newID == oldID {
		t.Fatal("successor must get a distinct ID")
	}

	old := getBelief(t, b, oldID)
	if old.IsCurrent() {
		t.Error("superseded belief should no longer be current")
	}
	if old.ValidTo == nil {
		t.Error("superseded belief should have a closed validity interval")
	}
	if old.SupersededBy != newID {
		t.Errorf("expected SupersededBy=%s, got %q", newID, old.SupersededBy)
	}

	successor := getBelief(t, b, newID)
	if !successor.IsCurrent() {
		t.Error("successor should be current")
	}
	if successor.Statement != "Plans adapt to evidence" {
		t.Errorf("successor statement wrong: %q", successor.Statement)
	}
}

func TestSupersedeBelief_ClosedRejected(t *testing.T) {
	b := newAttachedBackend(t)

	oldID := createBelief(t, b, "First version")
	if _, err := b.SupersedeBelief(oldID, &types.Belief{
		Statement: "Second version", BeliefType: types.BeliefTypeValue, ConvictionScore: 70,
	}); err != nil {
		t.Fatalf("first supersede failed: %v", err)
	}

	// A closed belief cannot be superseded again.
	_, err := b.SupersedeBelief(oldID, &types.Belief{
		Statement: "Third version", BeliefType: types.BeliefTypeValue, ConvictionScore: 70,
	})
	if !errors.Is(err, types.ErrBeliefClosed) {
		t.Errorf("expected ErrBeliefClosed, got %v", err)
	}
}

func TestSupersedeBelief_NotFound(t *testing.T) {
	b := newAttachedBackend(t)

	_, err := b.SupersedeBelief("no-such-belief", &types.Belief{
		Statement: "x", BeliefType: types.BeliefTypeValue, ConvictionScore: 50,
	})
	if err != types.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSupersedeBelief_Atomic(t *testing.T) {
	b := newAttachedBackend(t)

	oldID := createBelief(t, b, "Original")

	// Forcing the successor insert to fail (duplicate primary key) must roll
	// back the close of the old belief.
	_, err := b.SupersedeBelief(oldID, &types.Belief{
		BeliefID:        oldID,
		Statement:       "Colliding successor",
		BeliefType:      types.BeliefTypeValue,
		ConvictionScore: 50,
	})
	if err == nil {
		t.Fatal("expected supersede to fail on duplicate successor ID")
	}

	old := getBelief(t, b, oldID)
	if !old.IsCurrent() {
		t.Error("failed supersede must leave the old belief current")
	}
	if old.SupersededBy != "" {
		t.Errorf("failed supersede must not link a successor, got %q", old.SupersededBy)
	}
}

func TestEmbeddingTable_UpsertPerBelief(t *testing.T) {
	b := newAttachedBackend(t)
	tbl, _ := b.GetTable(types.EmbeddingsTable)

	beliefID := createBelief(t, b, "Vectors summarize meaning")

	_, err := tbl.Set("", &types.BeliefEmbedding{
		BeliefID: beliefID,
		Vector:   []float32{0.1, 0.2, 0.3},
		Norm:     1.0,
	})
	if err != nil {
		t.Fatalf("first Set failed: %v", err)
	}

	// Regenerating replaces the stored vector in place.
	_, err = tbl.Set("", &types.BeliefEmbedding{
		BeliefID: beliefID,
		Vector:   []float32{0.4, 0.5, 0.6, 0.7},
		Norm:     2.0,
	})
	if err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	results, err := tbl.Fetch(map[string]any{"belief_id": beliefID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 embedding per belief, got %d", len(results))
	}
	emb := results[0].(*types.BeliefEmbedding)
	if emb.Dimensions != 4 {
		t.Errorf("expected replaced vector of dimension 4, got %d", emb.Dimensions)
	}
	if emb.Norm != 2.0 {
		t.Errorf("expected replaced norm 2.0, got %v", emb.Norm)
	}
}

func TestEmbeddingTable_RequiresBelief(t *testing.T) {
	b := newAttachedBackend(t)
	tbl, _ := b.GetTable(types.EmbeddingsTable)

	_, err := tbl.Set("", &types.BeliefEmbedding{
		BeliefID: "no-such-belief",
		Vector:   []float32{1},
	})
	if !errors.Is(err, types.ErrReferentialIntegrity) {
		t.Errorf("expected ErrReferentialIntegrity, got %v", err)
	}
}

func TestEmbeddingTable_DeleteForbidden(t *testing.T) {
	b := newAttachedBackend(t)
	tbl, _ := b.GetTable(types.EmbeddingsTable)

	beliefID := createBelief(t, b, "Embeddings persist")
	id, err := tbl.Set("", &types.BeliefEmbedding{
		BeliefID: beliefID,
		Vector:   []float32{0.5},
	})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := tbl.Delete(id); !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("expected ErrDeletionForbidden, got %v", err)
	}
}
