package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Contact is one token registering on the tracker.
type Contact struct {
	ID       string
	Name     string
	Distance float64
	Bearing  float64 // Radians, 0=north, clockwise
}

// Cursor row style: black text on bright green = unmissable highlight
var cursorRowSty = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")).
	Background(ColorMatrixGreen).
	Bold(true)

// RenderContactList renders the scrollable contact panel. The header stays
// fixed at the top; only the entries scroll.
func RenderContactList(contacts []Contact, units string, width, height int, cursorIndex int) string {
	innerW := width - 4
	if innerW < 10 {
		innerW = 10
	}

	title := StylePanelTitle.Render(fmt.Sprintf("CONTACTS [%d]", len(contacts)))
	separator := StyleRule.Render(strings.Repeat("-", innerW))
	headerLines := []string{title, separator}
	headerCount := len(headerLines)

	// Total inner height (excluding border top+bottom)
	innerH := height - 2
	if innerH < headerCount+1 {
		innerH = headerCount + 1
	}
	space := innerH - headerCount

	var lines []string
	if len(contacts) == 0 {
		lines = append(lines, "", StyleHelp.Render(" No movement..."))
	} else {
		const linesPerContact = 2
		maxVisible := space / linesPerContact
		if maxVisible < 1 {
			maxVisible = 1
		}

		// Keep the cursor in view
		viewStart := 0
		if cursorIndex >= maxVisible {
			viewStart = cursorIndex - maxVisible + 1
		}

		for i := viewStart; i < len(contacts) && len(lines) < space; i++ {
			lines = append(lines, renderContactEntry(contacts[i], units, innerW, i == cursorIndex)...)
		}
	}

	if len(lines) > space {
		lines = lines[:space]
	}
	for len(lines) < space {
		lines = append(lines, "")
	}

	all := make([]string, 0, innerH)
	all = append(all, headerLines...)
	all = append(all, lines...)

	rendered := StylePanelBorder.Width(width - 2).Height(innerH).Render(strings.Join(all, "\n"))

	// lipgloss Height() only sets a minimum; it won't truncate overflow.
	outLines := strings.Split(rendered, "\n")
	if len(outLines) > height {
		outLines = outLines[:height]
	}
	for len(outLines) < height {
		outLines = append(outLines, "")
	}
	return strings.Join(outLines, "\n")
}

func renderContactEntry(c Contact, units string, maxW int, isCursor bool) []string {
	name := c.Name
	if name == "" {
		name = c.ID
	}
	nameMax := maxW - 6
	if nameMax < 4 {
		nameMax = 4
	}
	if len(name) > nameMax {
		name = name[:nameMax]
	}

	cursor := "  "
	if isCursor {
		cursor = ">>"
	}

	dist := fmt.Sprintf("%.1f%s", c.Distance, units)
	dir := angleToDir(c.Bearing)

	if isCursor {
		return []string{
			cursorRowSty.Render(truncRaw(fmt.Sprintf("%s * %s", cursor, name), maxW)),
			cursorRowSty.Render(truncRaw(fmt.Sprintf("     %s  %s", dist, dir), maxW)),
		}
	}
	return []string{
		fmt.Sprintf("%s %s %s", cursor, StyleContactMark.Render("*"), StyleContactName.Render(name)),
		fmt.Sprintf("     %s  %s", StyleContactDist.Render(dist), StyleContactDir.Render(dir)),
	}
}

// truncRaw pads or truncates a raw string to exactly w characters.
func truncRaw(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	if len(s) < w {
		return s + strings.Repeat(" ", w-len(s))
	}
	return s
}
