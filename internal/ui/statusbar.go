package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	State       string
	Contacts    int
	Nearest     string
	MaxDistance float64
	Units       string
	Err         error
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	var state string
	switch {
	case s.Err != nil:
		state = StyleStatusError.Render("[" + strings.ToUpper(s.State) + "]")
	case s.State == "running":
		state = StyleStatusRunning.Render("[RUNNING]")
	default:
		state = StyleStatusIdle.Render("[" + strings.ToUpper(s.State) + "]")
	}

	nearest := s.Nearest
	if nearest == "" {
		nearest = "--"
	}
	info := fmt.Sprintf(" Contacts: %d  Nearest: %s  Range: 0-%.0f%s",
		s.Contacts, nearest, s.MaxDistance, s.Units)
	if s.Err != nil {
		info += "  " + s.Err.Error()
	}

	content := state + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}

	return StyleStatusBar.Width(width).Render(content + strings.Repeat(" ", gap))
}
