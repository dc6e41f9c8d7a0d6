package components

import (
	"fmt"
	"math"
	"strings"

	"constructerp/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders values as one row of block glyphs scaled between the
// series minimum and maximum, so signed series keep their shape.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	blocks := []rune("▁▂▃▄▅▆▇█")

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo

	out := make([]rune, len(values))
	for i, v := range values {
		idx := len(blocks) / 2
		if span > 0 {
			idx = int(math.Round((v - lo) / span * float64(len(blocks)-1)))
		}
		out[i] = blocks[idx]
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(string(out))
}

// Column is one bar of a ColumnChart.
type Column struct {
	Label  string
	Value  float64
	Dimmed bool // shaded glyph, e.g. an estimate
}

// ColumnChart renders vertical bars around a zero baseline. Positive values
// rise above it in pos, negative values hang below it in neg. Dimmed columns
// are drawn shaded and listed with their full label under the axis. When the
// columns cannot fit in width it falls back to a Sparkline.
func ColumnChart(cols []Column, pos, neg lipgloss.Color, width, height int) string {
	if len(cols) == 0 {
		return ""
	}
	t := theme.Active

	hi, lo := 0.0, 0.0
	for _, c := range cols {
		hi = math.Max(hi, c.Value)
		lo = math.Min(lo, c.Value)
	}
	if hi == 0 && lo == 0 {
		hi = 1
	}

	// Grow the tick step until every interval gets at least two rows.
	step := chartTickStep(math.Max(hi, -lo))
	maxTicks := max(height/2, 2)
	up, down := 0, 0
	for {
		up = int(math.Ceil(hi / step))
		down = int(math.Ceil(-lo / step))
		if up+down <= maxTicks {
			break
		}
		step *= 2
	}
	rowsPer := max((height-1)/(up+down), 1)
	unit := step / float64(rowsPer)

	ticks := make(map[int]string)
	labelW := 1
	for i := 1; i <= up; i++ {
		ticks[i*rowsPer] = formatChartLabel(step * float64(i))
	}
	for i := 1; i <= down; i++ {
		ticks[-i*rowsPer] = formatChartLabel(-step * float64(i))
	}
	for _, l := range ticks {
		labelW = max(labelW, len(l))
	}

	n := len(cols)
	barW := min((width-labelW-1-(n-1))/n, 6)
	if barW < 1 {
		vals := make([]float64, n)
		for i, c := range cols {
			vals[i] = c.Value
		}
		return Sparkline(vals, pos)
	}
	axisLen := n*barW + n - 1

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)
	rising := []rune(" ▁▂▃▄▅▆▇█")

	// cell draws column c in the band (bottom, top] measured away from zero.
	cell := func(c Column, r int) string {
		m := c.Value
		color := pos
		if r < 0 {
			m, color = -m, neg
		}
		depth := float64(abs(r))
		full := "█"
		if c.Dimmed {
			full = "▒"
		}
		style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
		switch {
		case (r > 0) != (c.Value > 0) || m <= (depth-1)*unit:
			return blank.Render(strings.Repeat(" ", barW))
		case m >= depth*unit || c.Dimmed:
			return style.Render(strings.Repeat(full, barW))
		}
		frac := (m - (depth-1)*unit) / unit
		if r < 0 {
			// Only half and eighth top blocks exist for hanging bars.
			glyph := "▔"
			if frac >= 0.5 {
				glyph = "▀"
			}
			return style.Render(strings.Repeat(glyph, barW))
		}
		idx := min(max(int(frac*8), 1), 8)
		return style.Render(strings.Repeat(string(rising[idx]), barW))
	}

	var b strings.Builder
	row := func(r int) {
		b.WriteString(axis.Render(fmt.Sprintf("%*s│", labelW, ticks[r])))
		for i, c := range cols {
			if i > 0 {
				b.WriteString(blank.Render(" "))
			}
			b.WriteString(cell(c, r))
		}
		b.WriteString("\n")
	}

	for r := up * rowsPer; r >= 1; r-- {
		row(r)
	}
	b.WriteString(axis.Render(fmt.Sprintf("%*s┼%s", labelW, "0", strings.Repeat("─", axisLen))))
	b.WriteString("\n")
	for r := -1; r >= -down*rowsPer; r-- {
		row(r)
	}

	// Month labels, one slot per column.
	b.WriteString(blank.Render(strings.Repeat(" ", labelW+1)))
	var dimmed []string
	for i, c := range cols {
		if i > 0 {
			b.WriteString(blank.Render(" "))
		}
		lbl := c.Label
		if lipgloss.Width(lbl) > barW {
			lbl, _, _ = strings.Cut(lbl, " ")
		}
		style := axis
		if c.Dimmed {
			style = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Italic(true)
			dimmed = append(dimmed, c.Label)
		}
		b.WriteString(style.Render(fmt.Sprintf("%-*s", barW, truncate(lbl, barW))))
	}
	if len(dimmed) > 0 {
		b.WriteString("\n")
		b.WriteString(axis.Render("▒ " + strings.Join(dimmed, ", ")))
	}

	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// chartTickStep picks a 1/2/5 tick interval giving about five ticks up to maxVal.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel renders an axis value compactly: 1.5M, 250K, -40K.
func formatChartLabel(v float64) string {
	if v < 0 {
		return "-" + formatChartLabel(-v)
	}
	for _, u := range []struct {
		div    float64
		suffix string
	}{{1e9, "B"}, {1e6, "M"}, {1e3, "K"}} {
		if v >= u.div {
			return strings.TrimSuffix(fmt.Sprintf("%.1f", v/u.div), ".0") + u.suffix
		}
	}
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// PairRow is one labeled pair of values for PairedBars.
type PairRow struct {
	Label  string
	A, B   float64
	Dimmed bool // drawn in muted colors, e.g. an estimate
}

// PairedBars renders two horizontal bars per row sharing one scale: A in
// colorA on the first line, B in colorB on the second. format renders the
// trailing figures.
func PairedBars(rows []PairRow, colorA, colorB lipgloss.Color, width int, format func(float64) string) string {
	if len(rows) == 0 {
		return ""
	}
	t := theme.Active

	peak := 0.0
	labelW := 0
	numW := 0
	for _, r := range rows {
		peak = math.Max(peak, math.Max(r.A, r.B))
		labelW = max(labelW, lipgloss.Width(r.Label))
		numW = max(numW, len(format(r.A)), len(format(r.B)))
	}
	if peak <= 0 {
		peak = 1
	}

	barMax := width - labelW - numW - 3
	if barMax < 1 {
		barMax = 1
	}

	space := lipgloss.NewStyle().Background(t.Surface)
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	line := func(label string, v float64, c lipgloss.Color, dim bool) string {
		n := int(math.Round(v / peak * float64(barMax)))
		if n < 0 {
			n = 0
		}
		glyph := "█"
		if dim {
			glyph = "▒"
		}
		bar := lipgloss.NewStyle().Foreground(c).Background(t.Surface).Render(strings.Repeat(glyph, n))
		return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
			space.Render(" ") + bar +
			space.Render(strings.Repeat(" ", barMax-n+1)) +
			numStyle.Render(fmt.Sprintf("%*s", numW, format(v)))
	}

	out := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		out = append(out,
			line(r.Label, r.A, colorA, r.Dimmed),
			line("", r.B, colorB, r.Dimmed))
	}
	return strings.Join(out, "\n")
}
