package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Detail describes the tracked token for the detail overlay.
type Detail struct {
	User        string
	Token       string
	Scene       string
	State       string
	Units       string
	MaxDistance float64
	Speed       float64
	Nearest     *Contact  // nil when nothing is in range
	History     []float64 // Nearest distance, oldest first
}

// RenderDetailPanel renders the tracker detail overlay that replaces the radar area.
func RenderDetailPanel(d Detail, width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}

	title := StylePanelTitle.Render("TRACKER DETAIL")
	escHint := StyleHelp.Render("[ESC]")
	titleLine := title + strings.Repeat(" ", max(0, innerW-lipgloss.Width(title)-lipgloss.Width(escHint))) + escHint

	sep := StyleRule.Render(strings.Repeat("-", innerW))

	lines := []string{titleLine, sep, ""}

	labelSty := lipgloss.NewStyle().Foreground(ColorMidGreen)
	valSty := lipgloss.NewStyle().Foreground(ColorMatrixGreen).Bold(true)

	nearest := "--"
	if d.Nearest != nil {
		nearest = fmt.Sprintf("%.2f%s", d.Nearest.Distance, d.Units)
	}
	fields := []struct{ label, value string }{
		{"User", d.User},
		{"Token", d.Token},
		{"Scene", d.Scene},
		{"State", d.State},
		{"Range", fmt.Sprintf("%.0f%s", d.MaxDistance, d.Units)},
		{"Sweep", fmt.Sprintf("%.0f frames", sweepFrames(d.Speed))},
		{"Nearest", nearest},
	}
	for _, f := range fields {
		label := labelSty.Render(fmt.Sprintf("  %-10s", f.label))
		lines = append(lines, label+valSty.Render(f.value))
	}

	lines = append(lines, "")

	// Proximity bar
	barWidth := innerW - 22
	if barWidth < 10 {
		barWidth = 10
	}
	frac := 1.0
	if d.Nearest != nil && d.MaxDistance > 0 {
		frac = math.Min(d.Nearest.Distance/d.MaxDistance, 1)
	}
	lines = append(lines, labelSty.Render("  Signal ")+renderSignalBar(frac, barWidth))

	lines = append(lines, "")

	if len(d.History) > 0 {
		sparkW := innerW - 4
		if sparkW < 10 {
			sparkW = 10
		}
		lines = append(lines, labelSty.Render("  Nearest History:"))
		spark := renderSparkline(d.History, sparkW)
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(ColorGreen).Render(spark))
	}

	lines = append(lines, "")

	if d.Nearest != nil {
		usedLines := len(lines)
		compassH := height - usedLines - 5 // leave room for label + border
		if compassH < 5 {
			compassH = 5
		}
		compassW := innerW
		if compassW > compassH*3 {
			compassW = compassH * 3 // keep roughly proportional
		}

		compass := RenderCompass(compassW, compassH, d.Nearest.Bearing, d.Nearest.Distance, d.MaxDistance)
		if compass != "" {
			pad := (innerW - compassW) / 2
			if pad < 0 {
				pad = 0
			}
			prefix := strings.Repeat(" ", pad)
			for _, cl := range strings.Split(compass, "\n") {
				lines = append(lines, prefix+cl)
			}
		}

		name := d.Nearest.Name
		if name == "" {
			name = d.Nearest.ID
		}
		label := fmt.Sprintf("%s  %.1f%s  %s", name, d.Nearest.Distance, d.Units, angleToDir(d.Nearest.Bearing))
		pad := (innerW - len(label)) / 2
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+valSty.Render(label))
	} else {
		lines = append(lines, StyleHelp.Render("  No movement in range"))
	}

	for len(lines) < height-2 {
		lines = append(lines, "")
	}

	content := strings.Join(lines, "\n")
	return StylePanelActive.Width(width - 2).Height(height - 2).Render(content)
}

// sweepFrames returns the length of one sweep in 60 Hz frames.
func sweepFrames(speed float64) float64 {
	if speed <= 0 {
		return math.Inf(1)
	}
	return 1 / speed
}

// renderSignalBar fills more of the bar the closer the contact is. frac is
// the contact distance as a fraction of the scan range.
func renderSignalBar(frac float64, width int) string {
	ratio := 1 - frac
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(math.Round(ratio * float64(width)))

	bar := strings.Repeat("|", filled) + strings.Repeat("-", width-filled)
	filledPart := lipgloss.NewStyle().Foreground(proximityColor(frac)).Render(bar[:filled])
	emptyPart := lipgloss.NewStyle().Foreground(ColorDimGreen).Render(bar[filled:])
	return StyleHelp.Render("[") + filledPart + emptyPart + StyleHelp.Render("]")
}

func renderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}

	chars := []byte{'_', '.', '-', '~', '^'}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	rng := maxV - minV
	if rng < 1 {
		rng = 1
	}

	// Take last `width` values
	start := 0
	if len(values) > width {
		start = len(values) - width
	}

	var sb strings.Builder
	for i := start; i < len(values); i++ {
		idx := int((values[i] - minV) / rng * float64(len(chars)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(chars) {
			idx = len(chars) - 1
		}
		sb.WriteByte(chars[idx])
	}

	return sb.String()
}

func angleToDir(a float64) string {
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	dirs := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	idx := int(math.Round(a/(math.Pi/4))) % 8
	return dirs[idx]
}
