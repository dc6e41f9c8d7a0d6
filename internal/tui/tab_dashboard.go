package tui

import (
	"fmt"
	"strings"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/tui/components"
	"constructerp/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	if a.dash == nil {
		return a.renderEmpty("No dashboard data", cw)
	}
	d := a.dash
	var b strings.Builder

	// Row 1: KPI cards
	highRiskColor := t.Green
	if d.Stats.HighRiskProjects > 0 {
		highRiskColor = t.Red
	}
	budget, spent := pipeline.PortfolioTotals(a.projects)
	spentNote := ""
	if budget > 0 {
		spentNote = fmt.Sprintf("%s of %s spent", cli.FormatCompactCurrency(spent), cli.FormatCompactCurrency(budget))
	}

	kpis := []components.KPI{
		{Label: "Total Revenue", Value: cli.FormatCompactCurrency(d.Stats.TotalRevenue), Note: "revenue accounts"},
		{Label: "Active Projects", Value: cli.FormatNumber(int64(d.Stats.ActiveProjects)), Note: spentNote},
		{Label: "Pending Invoices", Value: cli.FormatNumber(int64(d.Stats.PendingInvoices)), Color: t.Yellow},
		{Label: "High Risk Projects", Value: cli.FormatNumber(int64(d.Stats.HighRiskProjects)), Note: "High or Critical", Color: highRiskColor},
	}
	b.WriteString(components.MetricCardRow(kpis, cw))
	b.WriteString("\n")

	// Row 2: cash flow bars + net chart
	halves := components.LayoutRow(cw, 2)
	cashCard := components.ContentCard("Cash Flow  income / expenses", a.cashFlowBody(components.CardInnerWidth(halves[0])), halves[0])
	netCard := components.ContentCard("Net Cash Flow", a.netChartBody(components.CardInnerWidth(halves[1])), halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Cash Flow  income / expenses", a.cashFlowBody(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
	} else {
		b.WriteString(components.CardRow([]string{cashCard, netCard}))
		b.WriteString("\n")
	}

	// Row 3: risk analysis + budget usage
	risks := pipeline.SortRisks(d.Risks)
	riskCard := components.ContentCard("Risk Analysis", renderRiskPanel(risks, components.CardInnerWidth(halves[0])), halves[0])
	budgetCard := components.ContentCard("Budget Usage", renderBudgetPanel(risks, components.CardInnerWidth(halves[1])), halves[1])
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Risk Analysis", renderRiskPanel(risks, components.CardInnerWidth(cw)), cw))
	} else {
		b.WriteString(components.CardRow([]string{riskCard, budgetCard}))
	}

	return b.String()
}

func (a App) cashFlowBody(innerW int) string {
	t := theme.Active
	rows := make([]components.PairRow, len(a.dash.CashFlow))
	for i, p := range a.dash.CashFlow {
		rows[i] = components.PairRow{Label: p.Month, A: p.Income, B: p.Expenses, Dimmed: p.Forecast}
	}
	if len(rows) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No cash flow data")
	}

	legend := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render("█ income") +
		lipgloss.NewStyle().Background(t.Surface).Render("  ") +
		lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("█ expenses") +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("  ▒ forecast")

	return components.PairedBars(rows, t.Green, t.Red, innerW, cli.FormatCompactCurrency) + "\n\n" + legend
}

func (a App) netChartBody(innerW int) string {
	t := theme.Active
	series := a.dash.CashFlow
	if len(series) == 0 {
		return ""
	}
	cols := make([]components.Column, len(series))
	for i, p := range series {
		cols[i] = components.Column{Label: p.Month, Value: p.Net(), Dimmed: p.Forecast}
	}
	return components.ColumnChart(cols, t.Green, t.Red, innerW, 10)
}

func renderRiskPanel(risks []model.RiskAssessment, innerW int) string {
	t := theme.Active
	if len(risks) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No projects to assess")
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	scoreStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	factorStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, r := range risks {
		if i > 0 {
			b.WriteString("\n")
		}
		badge := components.RiskBadge(r.RiskLevel)
		score := scoreStyle.Render(fmt.Sprintf("score %d", r.RiskScore))
		nameW := innerW - lipgloss.Width(badge) - lipgloss.Width(score) - 2
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", max(nameW, 1), truncStr(r.ProjectName, nameW))))
		b.WriteString(space.Render(" "))
		b.WriteString(score)
		b.WriteString(space.Render(" "))
		b.WriteString(badge)
		b.WriteString("\n")

		if len(r.Factors) == 0 {
			b.WriteString(okStyle.Render("  ✓ on track"))
			b.WriteString("\n")
			continue
		}
		for _, f := range r.Factors {
			b.WriteString(factorStyle.Render("  ! " + truncStr(f, innerW-4)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderBudgetPanel(risks []model.RiskAssessment, innerW int) string {
	labelW := 16
	barW := innerW - labelW - 7
	if barW < 8 {
		barW = 8
	}
	lines := make([]string, len(risks))
	for i, r := range risks {
		lines[i] = components.BudgetBar(r.ProjectName, r.BudgetUsedPercent, labelW, barW)
	}
	return strings.Join(lines, "\n")
}

func (a App) renderEmpty(text string, cw int) string {
	t := theme.Active
	body := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(text + " · press r to reload")
	if a.loadErr != nil {
		body += "\n" + lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render(a.loadErr.Error())
	}
	return components.ContentCard("", body, cw)
}
