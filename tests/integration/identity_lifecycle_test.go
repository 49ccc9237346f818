// End-to-end tests for store lifecycle: attach, bootstrap, verification,
// the scar integration journey, and persistence across sessions.
package integration

import (
	"errors"
	"testing"

	"github.com/keelworks/keel/internal/sqlite"
	"github.com/keelworks/keel/pkg/types"
)

// TestFreshStoreVerifies validates that a newly attached store passes the
// verification report with the bootstrap seed in place.
func TestFreshStoreVerifies(t *testing.T) {
	b, _ := setupStore(t)

	report, err := b.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.OK {
		t.Errorf("fresh store should verify OK: %+v", report)
	}
	if report.ActiveEffects != 7 || report.HardBlocks != 1 || report.CapabilityCaps != 2 {
		t.Errorf("seed counts wrong: active=%d blocks=%d caps=%d",
			report.ActiveEffects, report.HardBlocks, report.CapabilityCaps)
	}
	if report.CurrentBeliefs != 0 {
		t.Errorf("fresh store should have no beliefs, got %d", report.CurrentBeliefs)
	}
}

// TestScarIntegrationJourney walks a seeded scar from raw to integrated:
// activations and acknowledgements are recorded along the way, and the
// acceptance level rises with each step.
func TestScarIntegrationJourney(t *testing.T) {
	b, _ := setupStore(t)
	scars := mustGetTable(t, b, types.ScarsTable)
	acks := mustGetTable(t, b, types.AcksTable)
	activations := mustGetTable(t, b, types.ActivationsTable)

	scar := firstScar(t, b)

	// The scar fires before it is ever acknowledged.
	activationID, err := activations.Set("", &types.ScarActivation{
		ScarID:         scar.ScarID,
		TriggerContext: "conversation touched the original wound",
	})
	if err != nil {
		t.Fatalf("record activation: %v", err)
	}
	if !isUUIDv7(activationID) {
		t.Errorf("activation ID not a UUID v7: %q", activationID)
	}

	// Acknowledge, then advance the integration status step by step.
	if _, err := acks.Set("", &types.ScarAcknowledgement{
		ScarID:  scar.ScarID,
		Context: "named the pattern out loud",
	}); err != nil {
		t.Fatalf("record acknowledgement: %v", err)
	}

	steps := []struct {
		status     string
		acceptance float64
	}{
		{types.StatusAcknowledged, 0.3},
		{types.StatusIntegrating, 0.6},
		{types.StatusIntegrated, 0.9},
	}
	for _, step := range steps {
		if err := scar.SetIntegrationStatus(step.status); err != nil {
			t.Fatalf("SetIntegrationStatus(%s): %v", step.status, err)
		}
		if err := scar.SetAcceptance(step.acceptance); err != nil {
			t.Fatalf("SetAcceptance(%v): %v", step.acceptance, err)
		}
		if _, err := scars.Set(scar.ScarID, scar); err != nil {
			t.Fatalf("persist step %s: %v", step.status, err)
		}
	}

	raw, err := scars.Get(scar.ScarID)
	if err != nil {
		t.Fatalf("Get scar: %v", err)
	}
	final := raw.(*types.IdentityScar)
	if final.IntegrationStatus != types.StatusIntegrated {
		t.Errorf("status = %q, want integrated", final.IntegrationStatus)
	}
	if final.AcceptanceLevel != 0.9 {
		t.Errorf("acceptance = %v, want 0.9", final.AcceptanceLevel)
	}

	// The journey never touches the scar's fixed fields.
	if final.ScarType != scar.ScarType {
		t.Errorf("scar type drifted: %q", final.ScarType)
	}
}

// TestGuardHoldsAcrossTables validates that the write guard rejects every
// class of forbidden mutation through the public table surface.
func TestGuardHoldsAcrossTables(t *testing.T) {
	b, _ := setupStore(t)

	scar := firstScar(t, b)
	scars := mustGetTable(t, b, types.ScarsTable)
	if err := scars.Delete(scar.ScarID); !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("scar delete: expected ErrDeletionForbidden, got %v", err)
	}

	effects := mustGetTable(t, b, types.EffectsTable)
	permanent, err := effects.Fetch(map[string]any{"is_permanent": 1, "is_active": 1})
	if err != nil || len(permanent) == 0 {
		t.Fatalf("expected a seeded permanent effect (err %v)", err)
	}
	effect := permanent[0].(*types.ScarEffect)
	effect.IsActive = false
	if _, err := effects.Set(effect.EffectID, effect); !errors.Is(err, types.ErrPermanentEffect) {
		t.Errorf("permanent deactivation: expected ErrPermanentEffect, got %v", err)
	}

	cores := mustGetTable(t, b, types.CoresTable)
	coreRows := fetchAll(t, cores)
	core := coreRows[0].(*types.IdentityCore)
	if err := cores.Delete(core.CoreID); err == nil {
		t.Error("protected core delete should be rejected")
	}
	core.AnchorStatement = "rewritten"
	if _, err := cores.Set(core.CoreID, core); !errors.Is(err, types.ErrImmutableField) {
		t.Errorf("locked anchor rewrite: expected ErrImmutableField, got %v", err)
	}

	beliefs := mustGetTable(t, b, types.BeliefsTable)
	beliefID := mustCreateBelief(t, beliefs, "Guarded belief", types.BeliefTypeValue, 60)
	if err := beliefs.Delete(beliefID); !errors.Is(err, types.ErrDeletionForbidden) {
		t.Errorf("belief delete: expected ErrDeletionForbidden, got %v", err)
	}
}

// TestStateSurvivesReattach validates that mutations persist across
// detach/attach cycles against the same data directory.
func TestStateSurvivesReattach(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := sqlite.NewBackend()
	if err := b.Attach(config); err != nil {
		t.Fatalf("first Attach: %v", err)
	}

	beliefs := mustGetTable(t, b, types.BeliefsTable)
	beliefID := mustCreateBelief(t, beliefs, "Persistence is the point", types.BeliefTypeValue, 80)

	scar := firstScar(t, b)
	if err := scar.SetIntegrationStatus(types.StatusAcknowledged); err != nil {
		t.Fatalf("SetIntegrationStatus: %v", err)
	}
	scars := mustGetTable(t, b, types.ScarsTable)
	if _, err := scars.Set(scar.ScarID, scar); err != nil {
		t.Fatalf("persist scar: %v", err)
	}

	if err := b.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}

	b2 := sqlite.NewBackend()
	if err := b2.Attach(config); err != nil {
		t.Fatalf("second Attach: %v", err)
	}
	defer b2.Detach()

	belief := mustGetBelief(t, mustGetTable(t, b2, types.BeliefsTable), beliefID)
	if belief.Statement != "Persistence is the point" {
		t.Errorf("belief statement lost: %q", belief.Statement)
	}
	if !belief.IsCurrent() {
		t.Error("belief should still be current after reattach")
	}

	raw, err := mustGetTable(t, b2, types.ScarsTable).Get(scar.ScarID)
	if err != nil {
		t.Fatalf("Get scar after reattach: %v", err)
	}
	if got := raw.(*types.IdentityScar); got.IntegrationStatus != types.StatusAcknowledged {
		t.Errorf("scar status lost: %q", got.IntegrationStatus)
	}

	report, err := b2.Verify()
	if err != nil {
		t.Fatalf("Verify after reattach: %v", err)
	}
	if !report.OK {
		t.Error("reattached store should verify OK")
	}
	if report.CurrentBeliefs != 1 {
		t.Errorf("expected 1 current belief after reattach, got %d", report.CurrentBeliefs)
	}
}
