package tracker

import "motion-tracker.klederson.com/internal/config"

// Projector maps signals into a circular viewport.
type Projector struct {
	DistUnitPerPx      float64 // Surface pixels per scene distance unit
	VerticalCorrection float64 // Scale applied to the vertical offset
}

// DistUnitPerPx derives the distance scale so that maxDistance lands on
// config.ScopeFill of the viewport half-edge.
func DistUnitPerPx(size, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 0
	}
	return config.ScopeFill * size * 0.5 / maxDistance
}

// Project returns the surface position of a signal.
func (p Projector) Project(s Signal, center Vec2) Vec2 {
	return Vec2{
		X: center.X + p.DistUnitPerPx*s.Dir.X*s.Distance,
		Y: center.Y + p.VerticalCorrection*p.DistUnitPerPx*s.Dir.Y*s.Distance,
	}
}
