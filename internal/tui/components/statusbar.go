package components

import (
	"fmt"
	"strings"

	"constructerp/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	User       string
	Role       string
	DataAge    string // e.g. "12s ago"; empty hides it
	Refreshing bool
	Flash      string // transient message, shown in the middle
	FlashErr   bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	userStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	flashStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	if s.FlashErr {
		flashStyle = flashStyle.Foreground(t.Red)
	}

	left := base.Render(" [?]help  [r]efresh  [L]ogout  [q]uit")

	var right string
	if s.User != "" {
		right = userStyle.Render(s.User)
		if s.Role != "" {
			right += base.Render(" (" + s.Role + ")")
		}
	}
	switch {
	case s.Refreshing:
		right += base.Render("  refreshing…")
	case s.DataAge != "":
		right += base.Render(fmt.Sprintf("  data %s", s.DataAge))
	}
	right += base.Render(" ")

	mid := ""
	if s.Flash != "" {
		mid = flashStyle.Render(s.Flash)
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(mid) - lipgloss.Width(right)
	if gap < 0 {
		// Drop the flash before the essentials.
		mid = ""
		gap = width - lipgloss.Width(left) - lipgloss.Width(right)
	}
	if gap < 0 {
		gap = 0
	}
	lpad := gap / 2
	rpad := gap - lpad

	return left +
		base.Render(strings.Repeat(" ", lpad)) +
		mid +
		base.Render(strings.Repeat(" ", rpad)) +
		right
}
