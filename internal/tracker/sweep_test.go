package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaveShape(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0},
		{0.1, 0},
		{0.3, 0},
		{0.5, 0.5},
		{0.6, 0.8},
		{0.7, 1},
		{0.95, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Wave(tt.x), 1e-9, "Wave(%v)", tt.x)
	}
}

func TestWaveIsUnitPeriodic(t *testing.T) {
	for i := 0; i < 1000; i++ {
		x := float64(i)*0.0137 - 3
		assert.InDelta(t, Wave(x), Wave(x+1), 1e-9, "x=%v", x)
	}
}

func TestClockAdvancesOncePerFrame(t *testing.T) {
	c := NewClock(0.01)

	assert.True(t, c.Advance(1, 2))
	assert.False(t, c.Advance(1, 2), "second device on the same frame")
	assert.True(t, c.Advance(2, 3))
	assert.Equal(t, 5.0, c.Time)

	// Negative deltas never rewind
	c.Advance(3, -10)
	assert.Equal(t, 5.0, c.Time)
}

func TestLabelRefreshThirds(t *testing.T) {
	c := NewClock(0.01)
	tests := []struct {
		time float64
		want bool
	}{
		{0, false},
		{20, false},
		{33, false},
		{34, true},
		{66, true},
		{99, true},
		{100, false},
		{150, true},
	}
	for _, tt := range tests {
		c.Time = tt.time
		assert.Equal(t, tt.want, c.LabelRefresh(), "time=%v", tt.time)
	}
}

func TestPingRing(t *testing.T) {
	assert.Zero(t, PingRing(0.3, 0.05), "quiet below threshold")
	assert.InDelta(t, 1.0, PingRing(0.4, 0.4), 1e-9)
	assert.Zero(t, PingRing(0.1, 0.4), "outside the ring band")
	assert.Less(t, PingRing(0.45, 0.4), 1.0)
}

func TestRevealed(t *testing.T) {
	assert.False(t, Revealed(10, 100, 0))
	assert.True(t, Revealed(10, 100, 0.1))
	assert.False(t, Revealed(150, 100, 0.5))
	assert.True(t, Revealed(150, 100, 1))
}
