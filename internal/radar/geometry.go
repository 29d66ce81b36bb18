package radar

import (
	"math"

	"motion-tracker.klederson.com/internal/config"
)

// CellDistance computes the distance from a cell to the radar center,
// accounting for terminal aspect ratio.
func CellDistance(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / config.AspectRatio
	return math.Sqrt(dx*dx + dy*dy)
}

// CellAngle computes the angle from center to a cell.
// Returns radians in [0, 2π), where 0=north, increasing clockwise.
func CellAngle(col, row, centerX, centerY int) float64 {
	dx := float64(col - centerX)
	dy := float64(row-centerY) / config.AspectRatio
	angle := math.Atan2(dx, -dy) // 0=north, clockwise
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle
}

// RingChar returns the appropriate character for a ring at the given angle.
func RingChar(angle float64) rune {
	// Normalize angle to [0, 2π)
	for angle < 0 {
		angle += 2 * math.Pi
	}
	for angle >= 2*math.Pi {
		angle -= 2 * math.Pi
	}

	// 8 sectors for character selection
	sector := int(math.Round(angle/(math.Pi/4))) % 8

	switch sector {
	case 0: // North
		return '-'
	case 1: // NE
		return '/'
	case 2: // East
		return '|'
	case 3: // SE
		return '\\'
	case 4: // South
		return '-'
	case 5: // SW
		return '/'
	case 6: // West
		return '|'
	case 7: // NW
		return '\\'
	default:
		return '.'
	}
}

// NormalizeAngle wraps an angle to [0, 2π).
func NormalizeAngle(a float64) float64 {
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Bearing returns the compass bearing of an offset in scene space
// (x right, y down). Radians in [0, 2π), 0=north, clockwise.
func Bearing(dx, dy float64) float64 {
	return NormalizeAngle(math.Atan2(dx, -dy))
}

// ScopeRadius returns the largest ring radius, in columns, that fits a
// width x height cell box.
func ScopeRadius(width, height int) float64 {
	centerX := width / 2
	centerY := height / 2
	r := math.Min(float64(centerX-1), float64(centerY-1)/config.AspectRatio)
	if r < 3 {
		r = 3
	}
	return r
}
