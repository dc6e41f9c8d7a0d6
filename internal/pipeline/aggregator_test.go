package pipeline

import (
	"math"
	"testing"

	"constructerp/internal/model"
	"constructerp/internal/risk"
	"constructerp/internal/source"
)

func TestComputeStats_DefaultDataset(t *testing.T) {
	ds := source.Default()
	risks, err := risk.AssessAll(ds.Projects)
	if err != nil {
		t.Fatal(err)
	}

	got := ComputeStats(ds.Accounts, ds.Projects, ds.Invoices, risks)
	want := model.DashboardStats{
		TotalRevenue:     8_500_000,
		ActiveProjects:   3,
		PendingInvoices:  2,
		HighRiskProjects: 0,
	}
	if got != want {
		t.Errorf("ComputeStats = %+v, want %+v", got, want)
	}
}

func TestComputeStats_FirstRevenueAccountOnly(t *testing.T) {
	accounts := []model.Account{
		{ID: 1, Type: model.AccountAsset, Balance: 10},
		{ID: 2, Type: model.AccountRevenue, Balance: 200},
		{ID: 3, Type: model.AccountRevenue, Balance: 300},
	}
	got := ComputeStats(accounts, nil, nil, nil)
	if got.TotalRevenue != 200 {
		t.Errorf("TotalRevenue = %.0f, want 200", got.TotalRevenue)
	}

	if got := ComputeStats(nil, nil, nil, nil); got.TotalRevenue != 0 {
		t.Errorf("TotalRevenue with no accounts = %.0f, want 0", got.TotalRevenue)
	}
}

func TestComputeStats_HighRiskIncludesCritical(t *testing.T) {
	risks := []model.RiskAssessment{
		{RiskLevel: model.RiskLow},
		{RiskLevel: model.RiskMedium},
		{RiskLevel: model.RiskHigh},
		{RiskLevel: model.RiskCritical},
	}
	got := ComputeStats(nil, nil, nil, risks)
	if got.HighRiskProjects != 2 {
		t.Errorf("HighRiskProjects = %d, want 2", got.HighRiskProjects)
	}
}

func TestForecast_AppendsProjectedMonth(t *testing.T) {
	series := source.Default().CashFlow
	got := Forecast(series)

	if len(got) != len(series)+1 {
		t.Fatalf("len = %d, want %d", len(got), len(series)+1)
	}
	est := got[len(got)-1]
	if est.Month != "Nov (Est)" {
		t.Errorf("Month = %q, want Nov (Est)", est.Month)
	}
	if math.Abs(est.Income-735_000) > 1e-6 {
		t.Errorf("Income = %.2f, want 735000", est.Income)
	}
	if math.Abs(est.Expenses-399_000) > 1e-6 {
		t.Errorf("Expenses = %.2f, want 399000", est.Expenses)
	}
	if !est.Forecast {
		t.Error("projected point not flagged as forecast")
	}
	if got[0].Forecast {
		t.Error("historical point flagged as forecast")
	}
}

func TestForecast_DoesNotAliasInput(t *testing.T) {
	series := make([]model.CashFlowPoint, 2, 8)
	series[0] = model.CashFlowPoint{Month: "Jan", Income: 1}
	series[1] = model.CashFlowPoint{Month: "Feb", Income: 2}

	got := Forecast(series)
	got[0].Income = 99
	if series[0].Income != 1 {
		t.Error("Forecast result aliases its input")
	}
	if extended := series[:3]; extended[2].Month != "" {
		t.Error("Forecast wrote into the input's spare capacity")
	}
}

func TestForecast_Empty(t *testing.T) {
	if got := Forecast(nil); len(got) != 0 {
		t.Errorf("Forecast(nil) = %+v, want empty", got)
	}
}

func TestNextMonthLabel(t *testing.T) {
	tests := map[string]string{
		"Oct":      "Nov",
		"Dec":      "Jan",
		"February": "Mar",
		" May ":    "Jun",
		"Q3":       "Next",
	}
	for in, want := range tests {
		if got := NextMonthLabel(in); got != want {
			t.Errorf("NextMonthLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilterInvoicesByStatus(t *testing.T) {
	invoices := source.Default().Invoices

	pending := FilterInvoicesByStatus(invoices, model.InvoicePending)
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	for _, inv := range pending {
		if inv.Status != model.InvoicePending {
			t.Errorf("got %s in pending filter", inv.Status)
		}
	}

	if got := FilterInvoicesByStatus(invoices, "overdue"); len(got) != 1 {
		t.Errorf("case-insensitive overdue = %d, want 1", len(got))
	}
	if got := FilterInvoicesByStatus(invoices, ""); len(got) != 4 {
		t.Errorf("unfiltered = %d, want 4", len(got))
	}
}

func TestFilterInvoicesByStatus_ResultIsIndependent(t *testing.T) {
	invoices := source.Default().Invoices
	first := invoices[0].InvoiceNumber

	all := FilterInvoicesByStatus(invoices, "")
	all[0].InvoiceNumber = "EDITED"
	_ = append(all[:1], all[2:]...)
	if invoices[0].InvoiceNumber != first {
		t.Errorf("editing the unfiltered result changed the input: %q", invoices[0].InvoiceNumber)
	}
	if len(invoices) != 4 || invoices[1].InvoiceNumber == invoices[2].InvoiceNumber {
		t.Errorf("input reshuffled after deleting from the result: %+v", invoices)
	}

	if got := FilterInvoicesByStatus(nil, ""); len(got) != 0 {
		t.Errorf("nil input = %v", got)
	}
}

func TestInvoiceTotals(t *testing.T) {
	totals := InvoiceTotals(source.Default().Invoices)
	if len(totals) != 3 {
		t.Fatalf("len = %d, want 3", len(totals))
	}
	want := []InvoiceTotal{
		{Status: model.InvoicePaid, Count: 1, Amount: 50_000},
		{Status: model.InvoicePending, Count: 2, Amount: 20_000},
		{Status: model.InvoiceOverdue, Count: 1, Amount: 35_000},
	}
	for i := range want {
		if totals[i] != want[i] {
			t.Errorf("totals[%d] = %+v, want %+v", i, totals[i], want[i])
		}
	}
}

func TestSortRisks(t *testing.T) {
	in := []model.RiskAssessment{
		{ProjectID: 1, RiskScore: 30},
		{ProjectID: 2, RiskScore: 0},
		{ProjectID: 3, RiskScore: 40},
		{ProjectID: 4, RiskScore: 30},
	}
	got := SortRisks(in)
	order := []int{3, 1, 4, 2}
	for i, id := range order {
		if got[i].ProjectID != id {
			t.Fatalf("order = %v, want %v", ids(got), order)
		}
	}
	if in[0].ProjectID != 1 {
		t.Error("SortRisks reordered its input")
	}
}

func TestCountByLevel(t *testing.T) {
	ds := source.Default()
	risks, _ := risk.AssessAll(ds.Projects)
	got := CountByLevel(risks)
	if got[model.RiskLow] != 2 || got[model.RiskMedium] != 2 || got[model.RiskHigh] != 0 {
		t.Errorf("CountByLevel = %v", got)
	}
	if _, ok := got[model.RiskCritical]; !ok {
		t.Error("Critical level missing from tally")
	}
}

func ids(risks []model.RiskAssessment) []int {
	out := make([]int, len(risks))
	for i, r := range risks {
		out[i] = r.ProjectID
	}
	return out
}
