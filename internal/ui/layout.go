package ui

import "github.com/charmbracelet/lipgloss"

// ComposeLayout joins the radar panel and contact list horizontally,
// with menu bar on top and status bar on bottom.
func ComposeLayout(menuBar, radarPanel, contactList, statusBar string) string {
	middle := lipgloss.JoinHorizontal(lipgloss.Top, radarPanel, contactList)
	return lipgloss.JoinVertical(lipgloss.Left, menuBar, middle, statusBar)
}
