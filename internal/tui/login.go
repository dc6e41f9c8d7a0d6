package tui

import (
	"errors"
	"strings"

	"constructerp/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// loginState tracks the sign-in form. Form values live behind a pointer so
// the bindings survive App being copied on every Update.
type loginState struct {
	form *huh.Form
	vals *loginValues
	err  string
	busy bool
}

type loginValues struct {
	Username string
}

func newLoginForm(vals *loginValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Description("Demo accounts: admin, finance, pm").
				Placeholder("admin").
				Value(&vals.Username).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("username is required")
					}
					return nil
				}),
		),
	).WithTheme(formTheme()).WithShowHelp(false)
}

func loginFormWidth(termWidth int) int {
	return min(48, max(20, termWidth-20))
}

// startLogin shows a fresh login form, with errText above it if set.
func (a App) startLogin(errText string) (tea.Model, tea.Cmd) {
	prev := ""
	if a.login.vals != nil {
		prev = a.login.vals.Username
	}
	vals := &loginValues{Username: prev}

	form := newLoginForm(vals)
	if a.width > 0 {
		form = form.WithWidth(loginFormWidth(a.width))
	}

	a.phase = phaseLogin
	a.login = loginState{form: form, vals: vals, err: errText}
	return a, form.Init()
}

func (a App) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.login.form == nil || a.login.busy {
		return a, nil
	}

	form, cmd := a.login.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.login.form = f
	}

	switch a.login.form.State {
	case huh.StateCompleted:
		a.login.busy = true
		a.login.err = ""
		return a, tea.Batch(a.spinner.Tick, loginCmd(a.svc, a.login.vals.Username))
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) viewLogin() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("▦ ConstructERP"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Sign in to your account"))
	b.WriteString("\n\n")

	if a.login.err != "" {
		b.WriteString(errStyle.Render(a.login.err))
		b.WriteString("\n\n")
	}

	if a.login.busy {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Signing in..."))
	} else if a.login.form != nil {
		b.WriteString(a.login.form.View())
		b.WriteString("\n")
		b.WriteString(hintStyle.Render("enter sign in · ctrl+c quit"))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}
