package types

import "time"

// FormativeEvent is a concrete historical event in the identity's past.
// An event may anchor a scar, a belief, or both. Append-only.
type FormativeEvent struct {
	EventID         string    // UUID v7, generated on creation.
	ScarID          string    // Scar this event gave rise to, if any.
	BeliefID        string    // Belief this event gave rise to, if any.
	Description     string    // What happened.
	EmotionalWeight float64   // 0.0-1.0 salience of the event.
	OccurredAt      time.Time // When the event happened.
	CreatedAt       time.Time // When the record was written.
}

// BeliefCausality is a directed edge recording that one belief gave rise to
// another. Append-only.
type BeliefCausality struct {
	CausalityID    string    // UUID v7, generated on creation.
	CauseBeliefID  string    // The upstream belief.
	EffectBeliefID string    // The downstream belief.
	Strength       float64   // 0.0-1.0 strength of the causal link.
	CreatedAt      time.Time // Timestamp of creation.
}

// CognitiveTension records a detected conflict between two beliefs. The row
// is append-only except for ResolvedAt, which may be set once.
type CognitiveTension struct {
	TensionID   string     // UUID v7, generated on creation.
	BeliefA     string     // First belief in tension.
	BeliefB     string     // Second belief in tension.
	TensionType string     // Kind of conflict (contradiction, dissonance...).
	Magnitude   float64    // 0.0-1.0 severity.
	DetectedAt  time.Time  // When the tension was detected.
	ResolvedAt  *time.Time // When resolved; nil while open.
}

// IdentityDistress records an episode of identity-level distress.
// Append-only.
type IdentityDistress struct {
	DistressID    string    // UUID v7, generated on creation.
	Source        string    // What caused the distress.
	DistressLevel float64   // 0.0-1.0 intensity.
	Context       string    // Free-form context.
	RecordedAt    time.Time // When it was recorded.
}

// BeliefEcho records a moment a belief resurfaced and was reinforced.
// Append-only.
type BeliefEcho struct {
	EchoID       string    // UUID v7, generated on creation.
	BeliefID     string    // The echoed belief.
	EchoStrength float64   // 0.0-1.0 reinforcement strength.
	Context      string    // Free-form context.
	EchoedAt     time.Time // When the echo happened.
}

// CognitiveLoad is the single running-state row tracking current load against
// capacity. It is initialized at bootstrap and only ever updated, never
// deleted or duplicated.
type CognitiveLoad struct {
	LoadID      string    // UUID v7, generated at bootstrap.
	CurrentLoad float64   // Current load.
	Capacity    float64   // Capacity ceiling.
	UpdatedAt   time.Time // Timestamp of last update.
}
