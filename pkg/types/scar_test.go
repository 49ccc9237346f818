package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScarSetIntegrationStatus(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		target  string
		wantErr error
	}{
		{name: "raw to acknowledged", initial: StatusRaw, target: StatusAcknowledged},
		{name: "acknowledged to integrating", initial: StatusAcknowledged, target: StatusIntegrating},
		{name: "integrating to integrated", initial: StatusIntegrating, target: StatusIntegrated},
		{name: "idempotent same status", initial: StatusRaw, target: StatusRaw},
		{name: "unknown status rejected", initial: StatusRaw, target: "healed", wantErr: ErrInvalidStatus},
		{name: "empty status rejected", initial: StatusRaw, target: "", wantErr: ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &IdentityScar{
				ScarID:            "scar-1",
				ScarType:          "abandonment",
				IntegrationStatus: tt.initial,
				UpdatedAt:         time.Now().Add(-time.Hour),
			}
			before := s.UpdatedAt

			err := s.SetIntegrationStatus(tt.target)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.initial, s.IntegrationStatus, "status should not change on error")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.target, s.IntegrationStatus)
				assert.True(t, s.UpdatedAt.After(before), "UpdatedAt should advance")
			}
		})
	}
}

func TestScarSetAcceptance(t *testing.T) {
	tests := []struct {
		name    string
		level   float64
		wantErr error
	}{
		{name: "zero", level: 0.0},
		{name: "midrange", level: 0.7},
		{name: "full", level: 1.0},
		{name: "negative rejected", level: -0.1, wantErr: ErrInvalidAcceptance},
		{name: "above one rejected", level: 1.1, wantErr: ErrInvalidAcceptance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &IdentityScar{ScarID: "scar-1", AcceptanceLevel: 0.5}

			err := s.SetAcceptance(tt.level)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0.5, s.AcceptanceLevel, "level should not change on error")
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.level, s.AcceptanceLevel)
			}
		})
	}
}

func TestEffectIsBlocking(t *testing.T) {
	e := &ScarEffect{EffectClass: EffectClassHardBlock}
	assert.True(t, e.IsBlocking())

	e = &ScarEffect{EffectClass: EffectClassCapabilityCap}
	assert.False(t, e.IsBlocking())

	e = &ScarEffect{EffectClass: EffectClassBehavioral}
	assert.False(t, e.IsBlocking())
}

func TestValidEffectClass(t *testing.T) {
	assert.True(t, ValidEffectClass(EffectClassHardBlock))
	assert.True(t, ValidEffectClass(EffectClassCapabilityCap))
	assert.True(t, ValidEffectClass(EffectClassBehavioral))
	assert.False(t, ValidEffectClass("soft_block"))
	assert.False(t, ValidEffectClass(""))
}
