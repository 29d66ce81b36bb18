package radar

import "github.com/charmbracelet/lipgloss"

var (
	colorBright = lipgloss.Color("#00FF41")
	colorMid    = lipgloss.Color("#008F11")
	colorDim    = lipgloss.Color("#004A0A")
	colorBlip   = lipgloss.Color("#00FFAA")
	colorError  = lipgloss.Color("#FF3300")
)

// glowFloor is the ping intensity below which a cell keeps its base style.
const glowFloor = 0.05

// glowColor maps a ping intensity in [0, 1] to a green shade.
// Returns "" when the cell is not lit.
func glowColor(intensity float64) lipgloss.Color {
	switch {
	case intensity < glowFloor:
		return ""
	case intensity > 0.8:
		return "#00FF41"
	case intensity > 0.5:
		return "#00CC33"
	case intensity > 0.3:
		return "#00AA22"
	}
	return "#005511"
}

// glowChar renders ch lit by the ping, or in base when it is dark.
func glowChar(ch rune, intensity float64, base lipgloss.Style) string {
	c := glowColor(intensity)
	if c == "" {
		return base.Render(string(ch))
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(ch))
}
