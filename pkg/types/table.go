package types

import "errors"

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity
// struct. Update and Delete are checked against the table's invariant rules
// before anything is applied; a rejected mutation leaves stored state
// unchanged.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID, or a
	// violation error if the row is protected.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter map[string]any) ([]any, error)
}

// Table operation errors.
var (
	ErrNotFound    = errors.New("entity not found")
	ErrInvalidID   = errors.New("invalid entity ID")
	ErrInvalidData = errors.New("invalid entity data")
)

// Invariant violation errors. These are surfaced by the write-path guard
// before any durable change; a mutation rejected with one of these has not
// been applied, even partially, and retrying the identical request fails
// deterministically.
var (
	ErrImmutableField       = errors.New("field is immutable")
	ErrDeletionForbidden    = errors.New("deletion forbidden")
	ErrPermanentEffect      = errors.New("effect is permanent and cannot be deactivated")
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	ErrAppendOnly           = errors.New("table is append-only")
)

// Entity validation errors.
var (
	ErrInvalidBeliefType  = errors.New("invalid belief type")
	ErrInvalidScore       = errors.New("score must be between 0 and 100")
	ErrInvalidAcceptance  = errors.New("acceptance level must be between 0.0 and 1.0")
	ErrInvalidStatus      = errors.New("invalid integration status")
	ErrInvalidEffectClass = errors.New("invalid effect class")
	ErrStatementEmpty     = errors.New("statement must not be empty")
	ErrBeliefClosed       = errors.New("belief is already closed")
)
