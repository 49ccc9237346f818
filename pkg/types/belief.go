package types

import "time"

// Belief types. Every belief carries exactly one of these.
const (
	BeliefTypeIdentity   = "identity"
	BeliefTypeValue      = "value"
	BeliefTypePrinciple  = "principle"
	BeliefTypePreference = "preference"
	BeliefTypeFact       = "fact"
	BeliefTypeCausal     = "causal"
)

// validBeliefTypes is the set of recognized belief type values.
var validBeliefTypes = map[string]bool{
	BeliefTypeIdentity:   true,
	BeliefTypeValue:      true,
	BeliefTypePrinciple:  true,
	BeliefTypePreference: true,
	BeliefTypeFact:       true,
	BeliefTypeCausal:     true,
}

// ValidBeliefType reports whether s is a recognized belief type.
func ValidBeliefType(s string) bool {
	return validBeliefTypes[s]
}

// Belief represents a held proposition with a validity interval. A belief is
// never deleted: it is retired by closing its validity interval when a
// successor supersedes it. Current state is IsActive with ValidTo unset.
type Belief struct {
	BeliefID        string     // UUID v7, generated on creation.
	Statement       string     // The proposition (required, non-empty).
	BeliefType      string     // One of the BeliefType constants.
	ConvictionScore int        // 0-100 strength of conviction.
	ValidFrom       time.Time  // Start of validity interval.
	ValidTo         *time.Time // End of validity interval; nil while current.
	IsActive        bool       // Cleared when the belief is superseded.
	SupersededBy    string     // ID of the successor belief, if any.
	CreatedAt       time.Time  // Timestamp of creation.
}

// IsCurrent reports whether the belief is the current version: active with an
// open validity interval.
func (b *Belief) IsCurrent() bool {
	return b.IsActive && b.ValidTo == nil
}

// Close ends the belief's validity interval at the given time. A belief can
// only move from active to closed, never back.
// Returns ErrBeliefClosed if the interval is already closed.
func (b *Belief) Close(at time.Time) error {
	if b.ValidTo != nil {
		return ErrBeliefClosed
	}
	b.ValidTo = &at
	b.IsActive = false
	return nil
}

// Validate checks the belief's fields. Returns a sentinel error from this
// package on the first problem found.
func (b *Belief) Validate() error {
	if b.Statement == "" {
		return ErrStatementEmpty
	}
	if !validBeliefTypes[b.BeliefType] {
		return ErrInvalidBeliefType
	}
	if b.ConvictionScore < 0 || b.ConvictionScore > 100 {
		return ErrInvalidScore
	}
	return nil
}

// BeliefEmbedding is the vector representation of a belief, produced by the
// external embedding provider. One embedding exists per belief; regenerating
// replaces it.
type BeliefEmbedding struct {
	EmbeddingID string    // UUID v7, generated on creation.
	BeliefID    string    // Parent belief.
	Vector      []float32 // Fixed-dimension embedding vector.
	Dimensions  int       // Length of Vector.
	Norm        float64   // Scalar norm reported by the provider.
	CreatedAt   time.Time // Timestamp of creation.
}
