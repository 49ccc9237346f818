package types

import "time"

// Integration statuses for a scar. The status tracks how far the scar has
// been worked into the identity; it is freely updatable, unlike the scar's
// core fields.
const (
	StatusRaw          = "raw"
	StatusAcknowledged = "acknowledged"
	StatusIntegrating  = "integrating"
	StatusIntegrated   = "integrated"
)

// validStatuses is the set of recognized integration status values.
var validStatuses = map[string]bool{
	StatusRaw:          true,
	StatusAcknowledged: true,
	StatusIntegrating:  true,
	StatusIntegrated:   true,
}

// IdentityScar is a permanent formative psychological record. ScarType and
// BehavioralImpact are fixed at creation; the row itself can never be
// deleted. IntegrationStatus and AcceptanceLevel remain updatable for the
// life of the store.
type IdentityScar struct {
	ScarID            string    // UUID v7, generated on creation.
	ScarType          string    // Immutable after creation.
	BehavioralImpact  string    // Immutable after creation.
	IntegrationStatus string    // One of the Status constants.
	AcceptanceLevel   float64   // 0.0-1.0, updatable.
	CreatedAt         time.Time // Timestamp of creation.
	UpdatedAt         time.Time // Timestamp of last mutable-field change.
}

// SetIntegrationStatus sets the integration status.
// Returns ErrInvalidStatus if the status is not recognized.
func (s *IdentityScar) SetIntegrationStatus(status string) error {
	if !validStatuses[status] {
		return ErrInvalidStatus
	}
	s.IntegrationStatus = status
	s.UpdatedAt = time.Now()
	return nil
}

// SetAcceptance sets the acceptance level.
// Returns ErrInvalidAcceptance if the level is outside 0.0-1.0.
func (s *IdentityScar) SetAcceptance(level float64) error {
	if level < 0.0 || level > 1.0 {
		return ErrInvalidAcceptance
	}
	s.AcceptanceLevel = level
	s.UpdatedAt = time.Now()
	return nil
}

// Effect classes. The class is an explicit discriminant stored on the row:
// hard blocks refuse a capability outright, capability caps bound it, and
// behavioral effects merely color behavior.
const (
	EffectClassHardBlock     = "hard_block"
	EffectClassCapabilityCap = "capability_cap"
	EffectClassBehavioral    = "behavioral"
)

// validEffectClasses is the set of recognized effect class values.
var validEffectClasses = map[string]bool{
	EffectClassHardBlock:     true,
	EffectClassCapabilityCap: true,
	EffectClassBehavioral:    true,
}

// ValidEffectClass reports whether s is a recognized effect class.
func ValidEffectClass(s string) bool {
	return validEffectClasses[s]
}

// ScarEffect is a concrete behavioral consequence tied to a scar. Effects are
// never deleted; a permanent effect additionally can never be deactivated.
type ScarEffect struct {
	EffectID    string    // UUID v7, generated on creation.
	ScarID      string    // Parent scar (required, must exist).
	Description string    // What the effect does.
	EffectClass string    // One of the EffectClass constants.
	Capability  string    // Capability constrained; set for caps and blocks.
	CapValue    float64   // Ceiling for capability_cap effects.
	IsPermanent bool      // Permanent effects cannot be deactivated.
	IsActive    bool      // Whether the effect currently applies.
	CreatedAt   time.Time // Timestamp of creation.
}

// IsBlocking reports whether the effect refuses its capability outright.
func (e *ScarEffect) IsBlocking() bool {
	return e.EffectClass == EffectClassHardBlock
}

// ScarAcknowledgement records a moment the scar was consciously recognized.
// Append-only.
type ScarAcknowledgement struct {
	AckID          string    // UUID v7, generated on creation.
	ScarID         string    // Parent scar.
	Context        string    // What prompted the acknowledgement.
	AcknowledgedAt time.Time // When it happened.
}

// ScarActivation records a moment the scar was triggered. Append-only.
type ScarActivation struct {
	ActivationID   string    // UUID v7, generated on creation.
	ScarID         string    // Parent scar.
	TriggerContext string    // What triggered the scar.
	ActivatedAt    time.Time // When it happened.
}
