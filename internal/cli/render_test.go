package cli

import (
	"strings"
	"testing"

	"constructerp/internal/model"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderTable_Alignment(t *testing.T) {
	out := RenderTable(Table{
		Headers:  []string{"Vendor", "Status", "Amount"},
		Rows:     [][]string{{"Steel Corp", "Paid", "$50,000.00"}, {"---"}, {"Total", "", "$1.00"}},
		LeftCols: 2,
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("lines = %d, want 7:\n%s", len(lines), out)
	}
	w := lipgloss.Width(lines[0])
	for i, l := range lines {
		if lipgloss.Width(l) != w {
			t.Errorf("line %d width = %d, want %d", i, lipgloss.Width(l), w)
		}
	}
	if !strings.Contains(out, "Paid  ") {
		t.Errorf("status column not left-aligned:\n%s", out)
	}
	if !strings.Contains(out, "     $1.00") {
		t.Errorf("amount column not right-aligned:\n%s", out)
	}
}

func TestRenderTable_Empty(t *testing.T) {
	if got := RenderTable(Table{}); got != "" {
		t.Errorf("RenderTable(empty) = %q", got)
	}
}

func TestRiskColor(t *testing.T) {
	if RiskColor(model.RiskCritical) != ColorRed || RiskColor(model.RiskLow) != ColorGreen {
		t.Error("unexpected risk colors")
	}
}

func TestRenderSparkline(t *testing.T) {
	got := RenderSparkline([]float64{0, 50, 100})
	if got != "▁▄█" {
		t.Errorf("RenderSparkline = %q, want ▁▄█", got)
	}
}
