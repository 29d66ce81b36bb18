package tracker

import (
	"math"

	"motion-tracker.klederson.com/internal/scene"
)

// Vec2 is a 2D vector in scene units or surface pixels.
type Vec2 struct {
	X, Y float64
}

// Len returns the vector length.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Signal is one eligible token's reading for the current frame.
type Signal struct {
	Distance float64 // Scene distance units, >= 0
	Dir      Vec2    // Unit vector, or zero for a colocated token
	Token    string  // Source token id
}

// ImmobileStatuses are the statuses that keep a token off the tracker,
// in addition to the configured defeated status.
var ImmobileStatuses = []string{"unconscious", "asleep", "stunned", "paralysis", "paralyzed"}

// Scanner turns a scene into signals relative to a tracked token.
type Scanner struct {
	Capacity int
	immobile map[string]struct{}
}

// NewScanner creates a scanner emitting at most capacity signals per scan.
func NewScanner(capacity int, defeatedStatus string) *Scanner {
	immobile := make(map[string]struct{}, len(ImmobileStatuses)+1)
	for _, s := range ImmobileStatuses {
		immobile[s] = struct{}{}
	}
	if defeatedStatus != "" {
		immobile[defeatedStatus] = struct{}{}
	}
	return &Scanner{Capacity: capacity, immobile: immobile}
}

// Eligible reports whether a token registers on the tracker at all.
func (s *Scanner) Eligible(tracked, tok scene.Token) bool {
	return tok.ID != tracked.ID && !tok.Hidden && !tok.HasStatus(s.immobile)
}

// Scan rebuilds dst with one signal per eligible token closer than
// maxDistance, in scene order. nearest is the minimum distance over every
// eligible token, starting from maxDistance. Tokens in range past Capacity
// are counted in dropped.
func (s *Scanner) Scan(dst []Signal, tracked scene.Token, sc *scene.Scene, maxDistance float64) (signals []Signal, nearest float64, dropped int) {
	signals = dst[:0]
	nearest = maxDistance

	grid := sc.Grid
	if grid <= 0 {
		grid = 1
	}
	ox, oy := tracked.Center()

	for _, tok := range sc.Tokens {
		if !s.Eligible(tracked, tok) {
			continue
		}

		cx, cy := tok.Center()
		off := Vec2{(cx - ox) / grid, (cy - oy) / grid}
		norm := off.Len()

		sig := Signal{Distance: sc.GridDistance * norm, Token: tok.ID}
		// Colocated tokens keep a zero direction and sit on the scope center
		if norm > 0 {
			sig.Dir = Vec2{off.X / norm, off.Y / norm}
		}

		nearest = math.Min(nearest, sig.Distance)
		if sig.Distance >= maxDistance {
			continue
		}
		if len(signals) >= s.Capacity {
			dropped++
			continue
		}
		signals = append(signals, sig)
	}
	return signals, nearest, dropped
}
