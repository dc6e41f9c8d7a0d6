package components

import (
	"strings"
	"testing"

	"constructerp/internal/model"
	"constructerp/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, total := range []int{80, 81, 119, 180} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Errorf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(80, 0) != nil {
		t.Error("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowPadsShorterCards(t *testing.T) {
	theme.SetActive("slate")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)
	shortLines := lipgloss.Height(short)
	tallLines := lipgloss.Height(tall)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}

	want := lipgloss.Width(tall) + lipgloss.Width(short)
	for i, line := range lines {
		if w := lipgloss.Width(line); w != want {
			t.Errorf("line %d width = %d, want %d", i, w, want)
		}
		if i >= shortLines && !strings.Contains(line, "\x1b[") {
			t.Errorf("padding line %d carries no background styling", i)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	theme.SetActive("slate")
	row := MetricCardRow([]KPI{
		{Label: "Revenue", Value: "$8.5M"},
		{Label: "Active", Value: "3", Note: "projects"},
		{Label: "Pending", Value: "2"},
		{Label: "High risk", Value: "0", Color: theme.Active.Green},
	}, 100)

	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 100 {
			t.Errorf("line %d width = %d, want 100", i, w)
		}
	}
	if !strings.Contains(row, "$8.5M") {
		t.Error("row is missing a KPI value")
	}
}

func TestTabAtXMatchesRenderedBar(t *testing.T) {
	for active := range Tabs {
		bar := RenderTabBar(active, 0)

		want := 1
		for i, tab := range Tabs {
			want += TabVisualWidth(tab, i == active)
		}
		want += tabGap * (len(Tabs) - 1)
		if got := lipgloss.Width(bar); got != want {
			t.Fatalf("active=%d: bar width %d, TabVisualWidth total %d", active, got, want)
		}

		pos := 1
		for i, tab := range Tabs {
			w := TabVisualWidth(tab, i == active)
			if got := TabAtX(pos+w/2, active); got != i {
				t.Errorf("active=%d x=%d -> tab %d, want %d", active, pos+w/2, got, i)
			}
			pos += w + tabGap
		}
		if got := TabAtX(0, active); got != -1 {
			t.Errorf("leading margin hit tab %d", got)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('f'); got != 1 {
		t.Errorf("TabIdxByKey('f') = %d, want 1", got)
	}
	if got := TabIdxByKey('x'); got != len(Tabs)-1 {
		t.Errorf("TabIdxByKey('x') = %d, want settings", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Errorf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestBudgetBarShowsOverrun(t *testing.T) {
	theme.SetActive("slate")
	out := stripANSI(BudgetBar("Downtown Mall", 120, 12, 20))
	if !strings.Contains(out, "120%") {
		t.Errorf("overrun percentage missing: %q", out)
	}
	if !strings.Contains(out, "Downtown Ma…") {
		t.Errorf("label not truncated to width: %q", out)
	}
	if ColorForUsage(1.2) != theme.Active.Red {
		t.Error("overrun should be red")
	}
	if ColorForUsage(0.5) != theme.Active.Green {
		t.Error("half spent should be green")
	}
}

func TestRiskBadgeUsesLevelName(t *testing.T) {
	for _, lvl := range model.RiskLevels() {
		if got := stripANSI(RiskBadge(lvl)); strings.TrimSpace(got) != string(lvl) {
			t.Errorf("RiskBadge(%s) = %q", lvl, got)
		}
	}
}

func TestPairedBarsScale(t *testing.T) {
	theme.SetActive("slate")
	out := PairedBars([]PairRow{
		{Label: "May", A: 100, B: 50},
		{Label: "Jun", A: 200, B: 0, Dimmed: true},
	}, theme.Active.Green, theme.Active.Red, 40, formatChartLabel)

	lines := strings.Split(stripANSI(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	full := strings.Count(lines[2], "▒")
	half := strings.Count(lines[0], "█")
	if full == 0 || half*2 != full {
		t.Errorf("bars not on a shared scale: peak=%d half=%d", full, half)
	}
	for i, l := range lines {
		if lipgloss.Width(l) > 40 {
			t.Errorf("line %d overflows: %d", i, lipgloss.Width(l))
		}
	}
}

func TestColumnChartDrawsNegativeBelowBaseline(t *testing.T) {
	theme.SetActive("slate")
	cols := []Column{
		{Label: "Jun", Value: -150000},
		{Label: "Jul", Value: 50000},
		{Label: "Nov (Est)", Value: 60000, Dimmed: true},
	}
	out := stripANSI(ColumnChart(cols, theme.Active.Green, theme.Active.Red, 40, 10))

	flat := stripANSI(ColumnChart([]Column{{Label: "Jun"}, {Label: "Jul", Value: 50000}, {Label: "Nov (Est)", Value: 60000, Dimmed: true}},
		theme.Active.Green, theme.Active.Red, 40, 10))
	if out == flat {
		t.Fatal("a negative month renders the same as a zero month")
	}

	lines := strings.Split(out, "\n")
	base := -1
	for i, l := range lines {
		if strings.Contains(l, "┼") {
			base = i
			break
		}
	}
	if base < 1 {
		t.Fatalf("no zero baseline below a positive row:\n%s", out)
	}
	if !strings.Contains(strings.Join(lines[:base], "\n"), "█") {
		t.Error("positive month not drawn above the baseline")
	}
	below := strings.Join(lines[base+1:], "\n")
	if !strings.Contains(below, "█") {
		t.Errorf("negative month not drawn below the baseline:\n%s", out)
	}
	if !strings.Contains(below, "-160K") {
		t.Errorf("negative axis ticks missing:\n%s", out)
	}
	if !strings.Contains(out, "▒") || !strings.Contains(lines[len(lines)-1], "Nov (Est)") {
		t.Errorf("estimate column not shaded and listed:\n%s", out)
	}
	for i, l := range lines {
		if lipgloss.Width(l) > 40 {
			t.Errorf("line %d overflows: %d", i, lipgloss.Width(l))
		}
	}
}

func TestColumnChartFallsBackWhenNarrow(t *testing.T) {
	cols := make([]Column, 30)
	for i := range cols {
		cols[i] = Column{Label: "M", Value: float64(i - 10)}
	}
	out := stripANSI(ColumnChart(cols, theme.Active.Green, theme.Active.Red, 20, 10))
	if strings.Contains(out, "\n") || lipgloss.Width(out) != 30 {
		t.Errorf("want a one-line sparkline, got %q", out)
	}
}

func TestFormatChartLabel(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		250000:  "250K",
		-150000: "-150K",
		1500000: "1.5M",
		2e9:     "2B",
		0.25:    "0.25",
	}
	for v, want := range tests {
		if got := formatChartLabel(v); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", v, got, want)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
