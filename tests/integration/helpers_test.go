// Package integration provides shared test helpers for integration tests.
package integration

import (
	"testing"

	"github.com/keelworks/keel/internal/sqlite"
	"github.com/keelworks/keel/pkg/types"
)

// setupStore creates a backend attached to an isolated temp directory.
// Each test case gets its own store instance for isolation.
func setupStore(t *testing.T) (*sqlite.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := sqlite.NewBackend()
	if err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	t.Cleanup(func() { b.Detach() })
	return b, dir
}

// mustGetTable retrieves a table by name or fails the test.
func mustGetTable(t *testing.T, b *sqlite.Backend, name string) types.Table {
	t.Helper()
	tbl, err := b.GetTable(name)
	if err != nil {
		t.Fatalf("GetTable(%q): %v", name, err)
	}
	return tbl
}

// mustCreateBelief creates a belief and returns its ID.
func mustCreateBelief(t *testing.T, tbl types.Table, statement, beliefType string, conviction int) string {
	t.Helper()
	b := &types.Belief{Statement: statement, BeliefType: beliefType, ConvictionScore: conviction}
	id, err := tbl.Set("", b)
	if err != nil {
		t.Fatalf("Set belief %q: %v", statement, err)
	}
	return id
}

// mustGetBelief retrieves a belief by ID and returns it.
func mustGetBelief(t *testing.T, tbl types.Table, id string) *types.Belief {
	t.Helper()
	raw, err := tbl.Get(id)
	if err != nil {
		t.Fatalf("Get belief %q: %v", id, err)
	}
	b, ok := raw.(*types.Belief)
	if !ok {
		t.Fatalf("expected *types.Belief, got %T", raw)
	}
	return b
}

// firstScar returns the first seeded scar.
func firstScar(t *testing.T, b *sqlite.Backend) *types.IdentityScar {
	t.Helper()
	results := fetchAll(t, mustGetTable(t, b, types.ScarsTable))
	if len(results) == 0 {
		t.Fatal("expected seeded scars")
	}
	s, ok := results[0].(*types.IdentityScar)
	if !ok {
		t.Fatalf("expected *types.IdentityScar, got %T", results[0])
	}
	return s
}

// fetchAll calls Fetch with nil filter and returns the results.
func fetchAll(t *testing.T, tbl types.Table) []any {
	t.Helper()
	results, err := tbl.Fetch(nil)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	return results
}

// isUUIDv7 checks if a string looks like a UUID (basic format check).
func isUUIDv7(s string) bool {
	if len(s) != 36 {
		return false
	}
	// UUID format: 8-4-4-4-12 with hyphens at positions 8, 13, 18, 23.
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	// Version 7: character at position 14 should be '7'.
	return s[14] == '7'
}
