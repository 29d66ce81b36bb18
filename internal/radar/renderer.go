package radar

import (
	"image"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"motion-tracker.klederson.com/internal/assets"
	"motion-tracker.klederson.com/internal/config"
	"motion-tracker.klederson.com/internal/tracker"
)

var (
	styleCenter  = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleRing    = lipgloss.NewStyle().Foreground(colorMid)
	styleDot     = lipgloss.NewStyle().Foreground(colorDim)
	styleBlip    = lipgloss.NewStyle().Foreground(colorBlip).Bold(true)
	styleLabel   = lipgloss.NewStyle().Foreground(colorBright).Bold(true)
	styleLabelBg = lipgloss.NewStyle().Foreground(colorMid)
)

// maskThreshold is the background luminance above which an interior cell
// gets a dot.
const maskThreshold = 0.35

// Scope draws tracker frames as terminal cells. It keeps the background
// texture scaled to the last cell box it drew.
type Scope struct {
	mask     *image.RGBA
	maskFrom *assets.Texture
	maskW    int
	maskH    int
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// blipCell is a visible slot mapped to the cell grid.
type blipCell struct {
	col, row int
	revealed bool
}

// Render produces the radar display for f in a width x height cell box.
func (s *Scope) Render(f tracker.Frame, width, height int) string {
	if width < 10 || height < 5 {
		return ""
	}

	centerX := width / 2
	centerY := height / 2
	radius := ScopeRadius(width, height)

	ringRadii := make([]float64, config.RingCount)
	for i := range ringRadii {
		ringRadii[i] = radius * float64(i+1) / float64(config.RingCount)
	}

	s.fitMask(f.Background, width, height)
	blips := blipCells(f, centerX, centerY, radius)

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			sb.WriteString(s.renderCell(f, col, row, centerX, centerY, radius, ringRadii, blips))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// fitMask rescales the background texture when the texture or box changed.
func (s *Scope) fitMask(bg *assets.Texture, width, height int) {
	if bg == nil {
		s.mask, s.maskFrom = nil, nil
		return
	}
	if s.mask != nil && s.maskFrom == bg && s.maskW == width && s.maskH == height {
		return
	}
	s.mask = bg.Scaled(width, height)
	s.maskFrom = bg
	s.maskW = width
	s.maskH = height
}

// blipCells maps visible slots from frame pixels to cells. The frame
// already carries the vertical correction, so only a uniform scale is
// applied.
func blipCells(f tracker.Frame, centerX, centerY int, radius float64) []blipCell {
	if f.Size <= 0 {
		return nil
	}
	k := radius / (0.5 * f.Size)

	cells := make([]blipCell, 0, len(f.Slots))
	for _, sl := range f.Slots {
		if !sl.Visible {
			continue
		}
		dx := sl.Pos.X - f.Center.X
		dy := sl.Pos.Y - f.Center.Y
		col := centerX + int(math.Round(dx*k))
		row := centerY + int(math.Round(dy*k))

		dist := CellDistance(col, row, centerX, centerY) / k
		cells = append(cells, blipCell{
			col:      col,
			row:      row,
			revealed: tracker.Revealed(dist, f.Center.X, f.Wave),
		})
	}
	return cells
}

func (s *Scope) renderCell(f tracker.Frame, col, row, centerX, centerY int, radius float64, ringRadii []float64, blips []blipCell) string {
	for _, b := range blips {
		if b.revealed && b.col == col && b.row == row {
			return styleBlip.Render("*")
		}
	}

	dist := CellDistance(col, row, centerX, centerY)
	if dist > radius+0.5 {
		return " "
	}

	glow := tracker.PingRing(0.5*dist/radius, f.Wave)

	if col == centerX && row == centerY {
		return styleCenter.Render("+")
	}
	if col == centerX {
		return glowChar('|', glow, styleRing)
	}
	if row == centerY {
		return glowChar('-', glow, styleRing)
	}
	for _, ringR := range ringRadii {
		if math.Abs(dist-ringR) < 0.8 {
			return glowChar(RingChar(CellAngle(col, row, centerX, centerY)), glow, styleRing)
		}
	}

	if s.mask != nil {
		c := assets.Sample(s.mask, (float64(col)+0.5)/float64(s.maskW), (float64(row)+0.5)/float64(s.maskH))
		if luminance(c.R, c.G, c.B) < maskThreshold && glow < glowFloor {
			return " "
		}
	}
	return glowChar('.', glow, styleDot)
}

func luminance(r, g, b uint8) float64 {
	return (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 255
}

// RenderLabel produces the nearest-distance line under the scope.
func RenderLabel(f tracker.Frame, width int) string {
	var line string
	switch {
	case f.Err != nil:
		line = styleLabel.Foreground(colorError).Render("SIGNAL LOST")
	case f.State != tracker.Running:
		line = styleLabelBg.Render(strings.ToUpper(f.State.String()))
	case f.Label == "":
		line = styleLabelBg.Render("SCANNING")
	default:
		line = styleLabelBg.Render("NEAREST ") + styleLabel.Render(f.Label)
	}

	pad := (width - lipgloss.Width(line)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + line
}
