package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Executive summary: KPIs, cash flow, and project risk",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, svc *service.Service, u model.User) error {
		start := time.Now()
		d, err := pipeline.LoadDashboard(ctx, svc)
		if err != nil {
			return fmt.Errorf("loading dashboard: %w", err)
		}
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Loaded dashboard in %.1fs\n", time.Since(start).Seconds())
		}

		printTitle(fmt.Sprintf("CONSTRUCTERP  %s (%s)", u.Username, u.Role))

		fmt.Print(cli.RenderTable(cli.Table{
			Title: "Key Figures",
			Rows: [][]string{
				{"Total Revenue", cli.FormatCurrency(d.Stats.TotalRevenue)},
				{"Active Projects", cli.FormatNumber(int64(d.Stats.ActiveProjects))},
				{"Pending Invoices", cli.FormatNumber(int64(d.Stats.PendingInvoices))},
				{"High Risk Projects", cli.FormatNumber(int64(d.Stats.HighRiskProjects))},
			},
		}))
		fmt.Println()

		printCashFlow(d.CashFlow)
		fmt.Println()
		printRiskTable(pipeline.SortRisks(d.Risks))
		return nil
	})
}

func printCashFlow(series []model.CashFlowPoint) {
	if len(series) == 0 {
		fmt.Println("  No cash flow data.")
		return
	}

	var peak float64
	for _, p := range series {
		peak = max(peak, p.Income, p.Expenses)
	}

	const barWidth = 20
	rows := make([][]string, 0, len(series))
	for _, p := range series {
		month := p.Month
		if p.Forecast {
			month = cli.Muted(month)
		}
		rows = append(rows, []string{
			month,
			cli.FormatCompactCurrency(p.Income),
			cli.RenderHorizontalBar(p.Income, peak, barWidth, cli.ColorGreen),
			cli.FormatCompactCurrency(p.Expenses),
			cli.RenderHorizontalBar(p.Expenses, peak, barWidth, cli.ColorRed),
			cli.FormatDelta(p.Income, p.Expenses),
		})
	}

	nets := make([]float64, len(series))
	for i, p := range series {
		nets[i] = p.Net()
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Cash Flow",
		Headers:  []string{"Month", "Income", "", "Expenses", "", "Net"},
		Rows:     rows,
		LeftCols: 1,
	}))
	fmt.Printf("  Net trend  %s\n", cli.RenderSparkline(nets))
}

func printRiskTable(risks []model.RiskAssessment) {
	if len(risks) == 0 {
		fmt.Println("  No projects to assess.")
		return
	}

	rows := make([][]string, 0, len(risks))
	for _, r := range risks {
		factors := "on track"
		if len(r.Factors) > 0 {
			factors = r.Factors[0]
			if len(r.Factors) > 1 {
				factors += fmt.Sprintf(" (+%d)", len(r.Factors)-1)
			}
		}
		rows = append(rows, []string{
			truncate(r.ProjectName, 22),
			factors,
			cli.RenderRiskBadge(r.RiskLevel),
			fmt.Sprintf("%d", r.RiskScore),
			cli.RenderProgressBar(r.BudgetUsedPercent, 12),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:    "Risk Analysis",
		Headers:  []string{"Project", "Factors", "Level", "Score", "Budget Used"},
		Rows:     rows,
		LeftCols: 2,
	}))
}
