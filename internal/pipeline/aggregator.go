// Package pipeline computes dashboard aggregates from store snapshots.
package pipeline

import (
	"slices"
	"sort"
	"strings"
	"time"

	"constructerp/internal/model"
)

// ComputeStats builds the KPI card values.
// Revenue is the balance of the first Revenue account, not a sum.
func ComputeStats(accounts []model.Account, projects []model.Project, invoices []model.Invoice, risks []model.RiskAssessment) model.DashboardStats {
	var stats model.DashboardStats

	for _, a := range accounts {
		if a.Type == model.AccountRevenue {
			stats.TotalRevenue = a.Balance
			break
		}
	}

	for _, p := range projects {
		if p.Status == model.StatusActive {
			stats.ActiveProjects++
		}
	}

	for _, inv := range invoices {
		if inv.Status == model.InvoicePending {
			stats.PendingInvoices++
		}
	}

	stats.HighRiskProjects = CountAtLeast(risks, model.RiskHigh)

	return stats
}

// CountAtLeast counts assessments at or above the given level.
func CountAtLeast(risks []model.RiskAssessment, level model.RiskLevel) int {
	n := 0
	for _, r := range risks {
		if r.RiskLevel.AtLeast(level) {
			n++
		}
	}
	return n
}

// CountByLevel tallies assessments per level. Every level is present.
func CountByLevel(risks []model.RiskAssessment) map[model.RiskLevel]int {
	out := make(map[model.RiskLevel]int, 4)
	for _, l := range model.RiskLevels() {
		out[l] = 0
	}
	for _, r := range risks {
		out[r.RiskLevel]++
	}
	return out
}

// SortRisks returns a copy ordered by descending score, then project id.
func SortRisks(risks []model.RiskAssessment) []model.RiskAssessment {
	out := make([]model.RiskAssessment, len(risks))
	copy(out, risks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RiskScore != out[j].RiskScore {
			return out[i].RiskScore > out[j].RiskScore
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// Forecast growth factors for the projected month.
const (
	forecastIncomeFactor   = 1.05
	forecastExpensesFactor = 0.95
)

// Forecast returns series with one projected month appended. The projection
// scales the last month's income up 5% and expenses down 5%.
func Forecast(series []model.CashFlowPoint) []model.CashFlowPoint {
	if len(series) == 0 {
		return nil
	}

	out := make([]model.CashFlowPoint, len(series), len(series)+1)
	copy(out, series)

	last := series[len(series)-1]
	out = append(out, model.CashFlowPoint{
		Month:    NextMonthLabel(last.Month) + " (Est)",
		Income:   last.Income * forecastIncomeFactor,
		Expenses: last.Expenses * forecastExpensesFactor,
		Forecast: true,
	})
	return out
}

// NextMonthLabel returns the three-letter month after label.
// Labels that are not month names yield "Next".
func NextMonthLabel(label string) string {
	label = strings.TrimSpace(label)
	for _, layout := range []string{"Jan", "January"} {
		if t, err := time.Parse(layout, label); err == nil {
			return t.AddDate(0, 1, 0).Format("Jan")
		}
	}
	return "Next"
}

// FilterInvoicesByStatus returns invoices with the given status.
// An empty status returns a copy of all invoices. The result never
// shares a backing array with the input.
func FilterInvoicesByStatus(invoices []model.Invoice, status model.InvoiceStatus) []model.Invoice {
	if status == "" {
		return slices.Clone(invoices)
	}
	var out []model.Invoice
	for _, inv := range invoices {
		if strings.EqualFold(string(inv.Status), string(status)) {
			out = append(out, inv)
		}
	}
	return out
}

// InvoiceTotal is the count and amount of invoices in one status.
type InvoiceTotal struct {
	Status model.InvoiceStatus
	Count  int
	Amount float64
}

// InvoiceTotals sums invoices per status in display order.
func InvoiceTotals(invoices []model.Invoice) []InvoiceTotal {
	idx := make(map[model.InvoiceStatus]int)
	var out []InvoiceTotal
	for _, s := range model.InvoiceStatuses() {
		idx[s] = len(out)
		out = append(out, InvoiceTotal{Status: s})
	}
	for _, inv := range invoices {
		i, ok := idx[inv.Status]
		if !ok {
			idx[inv.Status] = len(out)
			i = len(out)
			out = append(out, InvoiceTotal{Status: inv.Status})
		}
		out[i].Count++
		out[i].Amount += inv.Amount
	}
	return out
}

// PortfolioTotals sums budget and spend across projects.
func PortfolioTotals(projects []model.Project) (budget, spent float64) {
	for _, p := range projects {
		budget += p.Budget
		spent += p.Spent
	}
	return budget, spent
}
