// Package theme defines color themes for the ConstructERP terminal dashboard.
package theme

import (
	"constructerp/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Selected row
	SurfaceBright lipgloss.Color
	Border        lipgloss.Color
	BorderBright  lipgloss.Color
	BorderAccent  lipgloss.Color // Focused card
	TextDim       lipgloss.Color // Hints, disabled
	TextMuted     lipgloss.Color // Labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color
	AccentDim     lipgloss.Color
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = Slate

// Slate is the default theme: cool grey surfaces with a sky-blue accent.
var Slate = Theme{
	Name:          "slate",
	Background:    lipgloss.Color("#0F172A"),
	Surface:       lipgloss.Color("#1E293B"),
	SurfaceHover:  lipgloss.Color("#273449"),
	SurfaceBright: lipgloss.Color("#334155"),
	Border:        lipgloss.Color("#334155"),
	BorderBright:  lipgloss.Color("#475569"),
	BorderAccent:  lipgloss.Color("#38BDF8"),
	TextDim:       lipgloss.Color("#475569"),
	TextMuted:     lipgloss.Color("#94A3B8"),
	TextPrimary:   lipgloss.Color("#F1F5F9"),
	Accent:        lipgloss.Color("#38BDF8"),
	AccentBright:  lipgloss.Color("#7DD3FC"),
	AccentDim:     lipgloss.Color("#0C4A6E"),
	Green:         lipgloss.Color("#22C55E"),
	GreenBright:   lipgloss.Color("#4ADE80"),
	Orange:        lipgloss.Color("#F97316"),
	Red:           lipgloss.Color("#EF4444"),
	Blue:          lipgloss.Color("#3B82F6"),
	BlueBright:    lipgloss.Color("#60A5FA"),
	Yellow:        lipgloss.Color("#EAB308"),
	Magenta:       lipgloss.Color("#A855F7"),
	Cyan:          lipgloss.Color("#06B6D4"),
}

// FlexokiDark is a warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// Daylight is a light theme for bright terminals.
var Daylight = Theme{
	Name:          "daylight",
	Background:    lipgloss.Color("#F8FAFC"),
	Surface:       lipgloss.Color("#FFFFFF"),
	SurfaceHover:  lipgloss.Color("#E2E8F0"),
	SurfaceBright: lipgloss.Color("#CBD5E1"),
	Border:        lipgloss.Color("#CBD5E1"),
	BorderBright:  lipgloss.Color("#94A3B8"),
	BorderAccent:  lipgloss.Color("#0284C7"),
	TextDim:       lipgloss.Color("#94A3B8"),
	TextMuted:     lipgloss.Color("#64748B"),
	TextPrimary:   lipgloss.Color("#0F172A"),
	Accent:        lipgloss.Color("#0284C7"),
	AccentBright:  lipgloss.Color("#0369A1"),
	AccentDim:     lipgloss.Color("#E0F2FE"),
	Green:         lipgloss.Color("#16A34A"),
	GreenBright:   lipgloss.Color("#15803D"),
	Orange:        lipgloss.Color("#EA580C"),
	Red:           lipgloss.Color("#DC2626"),
	Blue:          lipgloss.Color("#2563EB"),
	BlueBright:    lipgloss.Color("#1D4ED8"),
	Yellow:        lipgloss.Color("#CA8A04"),
	Magenta:       lipgloss.Color("#9333EA"),
	Cyan:          lipgloss.Color("#0891B2"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{Slate, FlexokiDark, Daylight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to Slate.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Slate
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// Risk maps a risk level to its severity color.
func (t Theme) Risk(level model.RiskLevel) lipgloss.Color {
	switch level {
	case model.RiskCritical:
		return t.Red
	case model.RiskHigh:
		return t.Orange
	case model.RiskMedium:
		return t.Yellow
	default:
		return t.Green
	}
}

// InvoiceStatus maps an invoice status to its color.
func (t Theme) InvoiceStatus(s model.InvoiceStatus) lipgloss.Color {
	switch s {
	case model.InvoicePaid:
		return t.Green
	case model.InvoiceOverdue:
		return t.Red
	default:
		return t.Yellow
	}
}
