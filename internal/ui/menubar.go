package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"motion-tracker.klederson.com/internal/config"
)

// RenderMenuBar renders the top menu bar. source names where the scene
// comes from (file, demo, ble).
func RenderMenuBar(width int, source string, running bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	keys := []struct{ key, label string }{
		{"R", "eset"},
		{"+/-", "range"},
		{"Tab", "track"},
		{"D", "etail"},
		{"Q", "uit"},
	}

	var menu strings.Builder
	for _, k := range keys {
		menu.WriteString("  " + StyleMenuKey.Render("["+k.key+"]") + StyleMenuLabel.Render(k.label))
	}

	status := StyleStatusIdle.Render("IDLE")
	if running {
		status = StyleStatusRunning.Render("TRACKING")
	}

	sourceInfo := StyleMenuLabel.Render(fmt.Sprintf("Source: %s", source))

	left := StyleMenuKey.Render(title) + menu.String()
	right := status + "  " + sourceInfo + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return StyleMenuBar.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
