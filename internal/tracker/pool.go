package tracker

import "math"

// Slot is one reusable blip visual.
type Slot struct {
	Visible bool
	Pos     Vec2
	Size    float64
}

// Pool is a fixed set of blip slots allocated once per device.
type Pool struct {
	slots []Slot
}

// NewPool allocates capacity hidden slots.
func NewPool(capacity int) *Pool {
	return &Pool{slots: make([]Slot, capacity)}
}

// Cap returns the number of slots.
func (p *Pool) Cap() int {
	return len(p.slots)
}

// Slots exposes the slots for drawing. Callers must not retain the slice
// across frames.
func (p *Pool) Slots() []Slot {
	return p.slots
}

// Sync shows one slot per signal at its projected position and hides the
// rest. Signals past the pool capacity are ignored.
func (p *Pool) Sync(signals []Signal, proj Projector, center Vec2) {
	for i := range p.slots {
		if i < len(signals) {
			p.slots[i].Visible = true
			p.slots[i].Pos = proj.Project(signals[i], center)
		} else {
			p.slots[i].Visible = false
		}
	}
}

// Visible counts the visible slots.
func (p *Pool) Visible() int {
	n := 0
	for _, s := range p.slots {
		if s.Visible {
			n++
		}
	}
	return n
}

// Resize sets every slot's size for a viewport edge of size pixels.
func (p *Pool) Resize(size, distUnitPerPx float64) {
	edge := math.Max(32, size/32*distUnitPerPx)
	for i := range p.slots {
		p.slots[i].Size = edge
	}
}

// Reset hides every slot.
func (p *Pool) Reset() {
	for i := range p.slots {
		p.slots[i] = Slot{Size: p.slots[i].Size}
	}
}
