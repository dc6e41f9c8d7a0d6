package tui

import (
	"fmt"
	"strings"

	"constructerp/internal/model"
	"constructerp/internal/tui/components"
	"constructerp/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// adminState tracks the audit log selection.
type adminState struct {
	cursor int
}

func (s *adminState) move(delta, rows int) {
	s.cursor += delta
	if s.cursor >= rows {
		s.cursor = rows - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (a App) updateAdminKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.admin.move(1, len(a.audit))
	case "k", "up":
		a.admin.move(-1, len(a.audit))
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderAdminTab(cw, h int) string {
	var b strings.Builder

	b.WriteString(components.ContentCard(fmt.Sprintf("Users (%d)", len(a.users)), a.renderUsers(cw), cw))
	b.WriteString("\n")

	rows := h - lipgloss.Height(b.String()) - 6
	if rows < 3 {
		rows = 3
	}
	b.WriteString(components.FocusedCard("Audit Log", a.renderAudit(cw, rows), cw))
	return b.String()
}

func (a App) renderUsers(cw int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	roleStyle := lipgloss.NewStyle().Foreground(t.Magenta).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	youStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)

	const idW, nameW, roleW = 4, 16, 18
	avatarW := innerW - idW - nameW - roleW - 3
	if avatarW < 10 {
		avatarW = 10
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%*s %-*s %-*s %-*s", idW, "ID", nameW, "Username", roleW, "Role", avatarW, "Avatar")))
	b.WriteString("\n")
	for _, u := range a.users {
		b.WriteString(nameStyle.Render(fmt.Sprintf("%*d %-*s ", idW, u.ID, nameW, truncStr(u.Username, nameW))))
		b.WriteString(roleStyle.Render(fmt.Sprintf("%-*s ", roleW, u.Role)))
		b.WriteString(mutedStyle.Render(truncStr(u.AvatarURL, avatarW)))
		if a.user != nil && a.user.ID == u.ID {
			b.WriteString(youStyle.Render("  ● you"))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func actionColor(action string) lipgloss.Color {
	t := theme.Active
	switch action {
	case model.ActionLogin:
		return t.Green
	case model.ActionLogout:
		return t.TextMuted
	case model.ActionInvoiceCreated:
		return t.Blue
	default:
		return t.TextPrimary
	}
}

func (a App) renderAudit(cw, rows int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	const timeW, actorW, actionW, targetW = 19, 10, 16, 18
	detailW := innerW - timeW - actorW - actionW - targetW - 4
	if detailW < 10 {
		detailW = 10
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		timeW, "Time", actorW, "User", actionW, "Action", targetW, "Target", detailW, "Detail")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")

	if len(a.audit) == 0 {
		b.WriteString(mutedStyle.Render("No activity yet"))
		b.WriteString("\n")
	}

	start, end := visibleWindow(a.admin.cursor, len(a.audit), rows)
	for i := start; i < end; i++ {
		e := a.audit[i]
		bg := t.Surface
		if i == a.admin.cursor {
			bg = t.SurfaceHover
		}
		base := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
		action := lipgloss.NewStyle().Foreground(actionColor(e.Action)).Background(bg)

		b.WriteString(base.Render(fmt.Sprintf("%-*s %-*s ",
			timeW, e.At.Local().Format("2006-01-02 15:04:05"),
			actorW, truncStr(e.Actor, actorW))))
		b.WriteString(action.Render(fmt.Sprintf("%-*s ", actionW, e.Action)))
		b.WriteString(base.Render(fmt.Sprintf("%-*s %-*s",
			targetW, truncStr(e.Target, targetW),
			detailW, truncStr(e.Detail, detailW))))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("[j/k] select   newest first, last %d", auditLimit)))
	return b.String()
}
