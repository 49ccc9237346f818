package types

import "time"

// StabilityThreshold is the stability score above which a core anchor can no
// longer be deleted.
const StabilityThreshold = 90

// IdentityCore represents a foundational self-description anchor. Once
// locked, the anchor statement is immutable; once the stability score exceeds
// StabilityThreshold, the row can no longer be deleted.
type IdentityCore struct {
	CoreID          string    // UUID v7, generated on creation.
	AnchorStatement string    // The foundational self-description (required).
	StabilityScore  int       // 0-100; >90 makes the row undeletable.
	IsLocked        bool      // Locked anchors have immutable statements.
	CreatedAt       time.Time // Timestamp of creation.
	UpdatedAt       time.Time // Timestamp of last modification.
}

// Lock marks the anchor as locked. Locking is one-way: there is no Unlock.
func (c *IdentityCore) Lock() {
	c.IsLocked = true
	c.UpdatedAt = time.Now()
}

// IsProtected reports whether the anchor is protected from deletion.
func (c *IdentityCore) IsProtected() bool {
	return c.StabilityScore > StabilityThreshold
}

// SetStability sets the stability score.
// Returns ErrInvalidScore if the score is outside 0-100.
func (c *IdentityCore) SetStability(score int) error {
	if score < 0 || score > 100 {
		return ErrInvalidScore
	}
	c.StabilityScore = score
	c.UpdatedAt = time.Now()
	return nil
}
