package types

import "time"

// View row types. Views are recomputed from raw tables on every read; none of
// these are persisted.

// EffectView is one row of the active-effects view: an active effect joined
// to its parent scar.
type EffectView struct {
	EffectID    string
	ScarID      string
	ScarType    string
	Description string
	EffectClass string
	Capability  string
	CapValue    float64
	IsPermanent bool
}

// CapabilityCap is one row of the capability-caps view: the ceiling an active
// capability_cap effect imposes on a capability.
type CapabilityCap struct {
	Capability string
	CapValue   float64
	EffectID   string
	ScarID     string
}

// FormativeScarView is one row of the formative-scars view: a scar whose
// origin is traceable to at least one recorded formative event.
type FormativeScarView struct {
	ScarID     string
	ScarType   string
	EventCount int
	EarliestAt time.Time
}
