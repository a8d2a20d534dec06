package cooldown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Phase(t *testing.T) {
	rec := Record{LastTrigger: 100, CooldownStart: 110, CooldownEnd: 115}

	tests := []struct {
		now  int64
		want Phase
	}{
		{now: 100, want: PhaseArmed},
		{now: 109, want: PhaseArmed},
		{now: 110, want: PhaseCooling},
		{now: 114, want: PhaseCooling},
		{now: 115, want: PhaseExpired},
		{now: 500, want: PhaseExpired},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rec.Phase(tt.now), "now=%d", tt.now)
	}
}

func TestRecord_PhaseZeroCooldown(t *testing.T) {
	rec := Record{CooldownStart: 110, CooldownEnd: 110}
	assert.Equal(t, PhaseArmed, rec.Phase(109))
	assert.Equal(t, PhaseExpired, rec.Phase(110))
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "armed", PhaseArmed.String())
	assert.Equal(t, "cooling", PhaseCooling.String())
	assert.Equal(t, "expired", PhaseExpired.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
