package tracker

import (
	"fmt"
	"math"
)

// FormatDistance renders the nearest-distance label text.
func FormatDistance(d float64, units string) string {
	return fmt.Sprintf("%.2f%s", d, units)
}

// LabelLayout scales the distance label between the min and max viewport
// sizes. fontSize never drops below 12; offset is how far the label sits
// above the bottom of the canvas.
func LabelLayout(size, minSize, maxSize float64) (fontSize, offset float64) {
	t := 0.0
	if maxSize > minSize {
		t = (size - minSize) / (maxSize - minSize)
	}
	return math.Max(12, 32*t), 5 + 32*t
}
