package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"motion-tracker.klederson.com/internal/radar"
)

// rangeBands splits the dial the same way the ping sound splits the scan
// range: close, medium, far.
const rangeBands = 3

type dialCell uint8

const (
	cellEmpty dialCell = iota
	cellBand
	cellRing
	cellMark
	cellTrace
	cellContact
)

// dial is a cell canvas for a small range scope. rx/ry are the outer ring
// radii in columns and rows.
type dial struct {
	w, h   int
	fcx    float64
	fcy    float64
	rx, ry float64
	runes  [][]rune
	kinds  [][]dialCell
}

func newDial(width, height int) *dial {
	d := &dial{
		w:   width,
		h:   height,
		fcx: float64(width) / 2,
		fcy: float64(height) / 2,
	}
	d.rx = math.Max(d.fcx-2, 3)
	d.ry = math.Max(d.fcy-2, 2)
	d.runes = make([][]rune, height)
	d.kinds = make([][]dialCell, height)
	for row := range d.runes {
		d.runes[row] = []rune(strings.Repeat(" ", width))
		d.kinds[row] = make([]dialCell, width)
	}
	return d
}

// at maps a bearing and a fraction of the outer radius to a cell.
func (d *dial) at(bearing, frac float64) (int, int) {
	col := int(math.Round(d.fcx + frac*d.rx*math.Sin(bearing)))
	row := int(math.Round(d.fcy - frac*d.ry*math.Cos(bearing)))
	return col, row
}

func (d *dial) set(col, row int, ch rune, kind dialCell) {
	if col < 0 || col >= d.w || row < 0 || row >= d.h {
		return
	}
	d.runes[row][col] = ch
	d.kinds[row][col] = kind
}

// ring traces a range ring at frac of the outer radius. The outer ring is
// drawn solid, inner bands dotted.
func (d *dial) ring(frac float64) {
	steps := int(4*math.Pi*d.rx*frac) + 8
	for i := 0; i < steps; i++ {
		a := float64(i) * 2 * math.Pi / float64(steps)
		col, row := d.at(a, frac)
		if frac >= 1 {
			d.set(col, row, radar.RingChar(a), cellRing)
		} else if i%2 == 0 {
			d.set(col, row, '.', cellBand)
		}
	}
}

func (d *dial) cardinals() {
	for i, ch := range "NESW" {
		a := float64(i) * math.Pi / 2
		col := int(math.Round(d.fcx + (d.rx+1)*math.Sin(a)))
		row := int(math.Round(d.fcy - (d.ry+1)*math.Cos(a)))
		d.set(col, row, ch, cellMark)
	}
}

// trace draws a dotted bearing line from the center out to frac.
func (d *dial) trace(bearing, frac float64) {
	steps := int(math.Max(d.rx, d.ry)*frac) + 1
	ch := headingChar(bearing)
	for s := 1; s < steps; s++ {
		col, row := d.at(bearing, frac*float64(s)/float64(steps))
		d.set(col, row, ch, cellTrace)
	}
}

func (d *dial) render(contact lipgloss.Color) string {
	styles := map[dialCell]lipgloss.Style{
		cellBand:    lipgloss.NewStyle().Foreground(lipgloss.Color("#003300")),
		cellRing:    lipgloss.NewStyle().Foreground(ColorDimGreen),
		cellMark:    lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true),
		cellTrace:   lipgloss.NewStyle().Foreground(contact),
		cellContact: lipgloss.NewStyle().Foreground(contact).Bold(true),
	}

	var sb strings.Builder
	for row := range d.runes {
		for col, ch := range d.runes[row] {
			if k := d.kinds[row][col]; k != cellEmpty {
				sb.WriteString(styles[k].Render(string(ch)))
			} else {
				sb.WriteRune(ch)
			}
		}
		if row < d.h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RenderCompass draws a range dial with the nearest contact plotted at its
// bearing (radians, 0=north, clockwise) and distance. Dotted rings mark the
// range bands; contacts beyond maxDistance sit on the outer ring.
func RenderCompass(width, height int, bearing, distance, maxDistance float64) string {
	if width < 9 || height < 5 {
		return ""
	}

	frac := 1.0
	if maxDistance > 0 {
		frac = math.Min(distance/maxDistance, 1)
	}

	d := newDial(width, height)
	for band := 1; band <= rangeBands; band++ {
		d.ring(float64(band) / rangeBands)
	}
	d.cardinals()
	d.trace(bearing, frac)
	d.set(int(math.Round(d.fcx)), int(math.Round(d.fcy)), '+', cellMark)

	col, row := d.at(bearing, frac)
	d.set(col, row, '@', cellContact)

	return d.render(proximityColor(frac))
}

// headingChar returns the line character closest to a bearing.
func headingChar(bearing float64) rune {
	switch int(math.Round(radar.NormalizeAngle(bearing)/(math.Pi/4))) % 4 {
	case 0:
		return '|'
	case 1:
		return '/'
	case 2:
		return '-'
	}
	return '\\'
}

// proximityColor maps a fraction of the scan range to a green shade,
// brighter when closer.
func proximityColor(frac float64) lipgloss.Color {
	switch {
	case frac < 0.2:
		return ColorMatrixGreen
	case frac < 0.4:
		return ColorGreen
	case frac < 0.6:
		return ColorBorderNorm
	case frac < 0.8:
		return ColorMidGreen
	}
	return "#005511"
}
