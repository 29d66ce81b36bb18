package tracker

import "math"

// Clock is the shared sweep animation clock. Devices sharing a clock pulse
// in lock-step. Time only moves forward, by the host frame delta.
type Clock struct {
	Time  float64 // Accumulated time units
	Speed float64 // Sweep cycles per time unit

	lastFrame uint64
	advanced  bool
}

// NewClock creates a clock at time zero.
func NewClock(speed float64) *Clock {
	return &Clock{Speed: speed}
}

// Advance adds delta once per host frame. Repeated calls with the same
// frame number are ignored so several devices can share the clock.
func (c *Clock) Advance(frame uint64, delta float64) bool {
	if c.advanced && frame == c.lastFrame {
		return false
	}
	c.lastFrame = frame
	c.advanced = true
	if delta > 0 {
		c.Time += delta
	}
	return true
}

// Cycles returns time*speed, the sweep position in cycles.
func (c *Clock) Cycles() float64 {
	return c.Time * c.Speed
}

// Phase returns the position within the current sweep, in [0, 1).
func (c *Clock) Phase() float64 {
	return fract(c.Cycles())
}

// Wave returns the sweep waveform for the current time.
func (c *Clock) Wave() float64 {
	return Wave(c.Cycles())
}

// LabelRefresh reports whether the distance label may be rewritten this
// frame. It holds for the last two thirds of each sweep.
func (c *Clock) LabelRefresh() bool {
	return math.Ceil(3*c.Phase())-1 > 0
}

// Wave is the unit-periodic sweep pulse: silent for the first third of a
// period, a linear ramp 0→1 in the second, held at 1 in the third.
func Wave(x float64) float64 {
	x = fract(x)
	return math.Max(
		fract(3*x)*math.Min(1, math.Floor(3*fract(x))),
		math.Floor(0.5*(math.Ceil(3*x)-1)),
	)
}

// PingRing is the intensity of the expanding background ring at normalized
// radius r (0 center, 0.5 scope edge) for wave value s.
func PingRing(r, s float64) float64 {
	if s <= 0.05 {
		return 0
	}
	v := clamp((0.25-math.Abs(r-s))*4, 0, 1)
	return math.Pow(v, 16)
}

// Revealed reports whether a blip dist pixels from a scope center at
// centerX has been passed by the ping for wave value s.
func Revealed(dist, centerX, s float64) bool {
	return 2*s*centerX > dist
}

func fract(x float64) float64 {
	return x - math.Floor(x)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
