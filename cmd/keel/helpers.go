// Shared helpers for keel CLI commands.
package main

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/keelworks/keel/internal/sqlite"
	"github.com/keelworks/keel/pkg/types"
)

// attachBackend resolves the data directory, creates a SQLite backend, and
// attaches it (which also bootstraps an empty store). The caller must defer
// backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: dataDir,
	}); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}
	return backend, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// newLogger builds the CLI logger for batch commands (verify, export,
// belief add). JSON mode keeps stdout clean for command output by logging to
// stderr in production format.
func newLogger() (*zap.Logger, error) {
	if flagJSON {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
