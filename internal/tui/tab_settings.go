package tui

import (
	"fmt"
	"strconv"
	"strings"

	"constructerp/internal/config"
	"constructerp/internal/tui/components"
	"constructerp/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldTheme = iota
	settingsFieldLatency
	settingsFieldLatencyScale
	settingsFieldSeedFile
	settingsFieldLogLevel
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
	// restart is set once a change needs a restart to take effect.
	restart bool
}

func (s *settingsState) move(delta int) {
	s.cursor += delta
	if s.cursor >= settingsFieldCount {
		s.cursor = settingsFieldCount - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.move(1)
	case "k", "up":
		a.settings.move(-1)
	case "enter", " ":
		m, cmd := a.settingsActivate()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

// settingsActivate cycles choice fields in place and opens a text input
// for free-form ones.
func (a App) settingsActivate() (tea.Model, tea.Cmd) {
	a.settings.saved = false

	switch a.settings.cursor {
	case settingsFieldTheme:
		names := theme.Names()
		next := 0
		for i, n := range names {
			if n == a.cfg.Appearance.Theme {
				next = (i + 1) % len(names)
				break
			}
		}
		a.cfg.Appearance.Theme = names[next]
		theme.SetActive(names[next])
		a.spinner.Style = a.spinner.Style.Foreground(theme.Active.Accent).Background(theme.Active.Surface)
		a.settingsPersist()
		return a, nil

	case settingsFieldLatency:
		a.cfg.Service.SimulateLatency = !a.cfg.Service.SimulateLatency
		a.settings.restart = true
		a.settingsPersist()
		return a, nil
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40
	switch a.settings.cursor {
	case settingsFieldLatencyScale:
		ti.Placeholder = "1.0 (0 disables, 0.5 halves delays)"
		ti.SetValue(strconv.FormatFloat(a.cfg.Service.LatencyScale, 'f', -1, 64))
	case settingsFieldSeedFile:
		ti.Placeholder = "path to a YAML dataset (blank for built-in)"
		ti.SetValue(a.cfg.General.SeedFile)
	case settingsFieldLogLevel:
		ti.Placeholder = "debug, info, warn, error"
		ti.SetValue(a.cfg.General.LogLevel)
	}
	ti.Focus()

	a.settings.input = ti
	a.settings.editing = true
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsApplyInput()
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) settingsApplyInput() {
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldLatencyScale:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			a.settings.saveErr = fmt.Errorf("latency scale must be a number >= 0")
			a.settings.saved = false
			return
		}
		a.cfg.Service.LatencyScale = f
	case settingsFieldSeedFile:
		a.cfg.General.SeedFile = val
	case settingsFieldLogLevel:
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			a.cfg.General.LogLevel = strings.ToLower(val)
		default:
			a.settings.saveErr = fmt.Errorf("unknown log level %q", val)
			a.settings.saved = false
			return
		}
	}
	a.settings.restart = true
	a.settingsPersist()
}

func (a *App) settingsPersist() {
	a.settings.saveErr = config.Save(a.cfg)
	a.settings.saved = a.settings.saveErr == nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.cfg

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	space := lipgloss.NewStyle().Background(t.Surface)

	seed := cfg.General.SeedFile
	if seed == "" {
		seed = "(built-in demo data)"
	}
	latency := "off"
	if cfg.Service.SimulateLatency {
		latency = "on"
	}

	fields := []struct{ label, value string }{
		{"Theme", cfg.Appearance.Theme},
		{"Simulated latency", latency},
		{"Latency scale", strconv.FormatFloat(cfg.Service.LatencyScale, 'f', -1, 64) + "x"},
		{"Seed file", seed},
		{"Log level", cfg.General.LogLevel},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-20s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-20s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			form.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(space.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-20s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Save failed: " + a.settings.saveErr.Error()))
	case a.settings.saved && a.settings.restart:
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved. Service changes apply on next start."))
	case a.settings.saved:
		form.WriteString("\n")
		form.WriteString(greenStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] change  [Esc] cancel"))

	var info strings.Builder
	if a.user != nil {
		info.WriteString(labelStyle.Render("Signed in as:  ") + valueStyle.Render(fmt.Sprintf("%s (%s)", a.user.Username, a.user.Role)) + "\n")
	}
	info.WriteString(labelStyle.Render("Last load:     ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())) + "\n")
	info.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()) + "\n")
	info.WriteString(labelStyle.Render("Session file:  ") + valueStyle.Render(config.SessionPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", info.String(), cw))
	return b.String()
}
