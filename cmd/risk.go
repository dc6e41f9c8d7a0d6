package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/risk"
	"constructerp/internal/service"

	"github.com/spf13/cobra"
)

var (
	flagRiskBudget   float64
	flagRiskSpent    float64
	flagRiskProgress int
)

var riskCmd = &cobra.Command{
	Use:   "risk [project-id]",
	Short: "Risk analysis for all projects, one project, or ad-hoc figures",
	Long: `Risk analysis for every project, or for one project by id.

With --budget and --spent, scores the given figures directly instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRisk,
}

func init() {
	riskCmd.Flags().Float64Var(&flagRiskBudget, "budget", 0, "Budget to score (ad-hoc mode)")
	riskCmd.Flags().Float64Var(&flagRiskSpent, "spent", 0, "Amount spent to score (ad-hoc mode)")
	riskCmd.Flags().IntVar(&flagRiskProgress, "progress", 0, "Progress percent to score (ad-hoc mode)")
	riskCmd.MarkFlagsRequiredTogether("budget", "spent")
	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) error {
	adhoc := cmd.Flags().Changed("budget")
	if adhoc && len(args) > 0 {
		return errors.New("give either a project id or --budget/--spent, not both")
	}

	return withSession(func(ctx context.Context, svc *service.Service, _ model.User) error {
		switch {
		case adhoc:
			return scoreFigures()
		case len(args) == 1:
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			a, err := svc.ProjectRisk(ctx, id)
			if errors.Is(err, service.ErrNotFound) {
				return fmt.Errorf("project %d not found", id)
			}
			if err != nil {
				return err
			}
			printAssessment(a)
			return nil
		}

		risks, err := svc.RiskAnalysis(ctx)
		if err != nil {
			return fmt.Errorf("risk analysis: %w", err)
		}
		printTitle("RISK ANALYSIS")
		printRiskTable(pipeline.SortRisks(risks))

		counts := pipeline.CountByLevel(risks)
		fmt.Println()
		for _, lvl := range model.RiskLevels() {
			fmt.Printf("  %-18s %d\n", cli.RenderRiskBadge(lvl), counts[lvl])
		}
		return nil
	})
}

func scoreFigures() error {
	a, err := risk.Assess(model.Project{
		Name:     "Ad-hoc",
		Budget:   flagRiskBudget,
		Spent:    flagRiskSpent,
		Progress: flagRiskProgress,
	})
	if err != nil {
		return err
	}
	printAssessment(a)
	return nil
}

func printAssessment(a model.RiskAssessment) {
	printTitle("RISK  " + a.ProjectName)

	rows := [][]string{
		{"Level", cli.RenderRiskBadge(a.RiskLevel)},
		{"Score", strconv.Itoa(a.RiskScore)},
		{"Budget Used", cli.FormatPercent(a.BudgetUsedPercent)},
	}
	if len(a.Factors) == 0 {
		rows = append(rows, []string{"Factors", "none"})
	}
	for i, f := range a.Factors {
		label := ""
		if i == 0 {
			label = "Factors"
		}
		rows = append(rows, []string{label, f})
	}

	fmt.Print(cli.RenderTable(cli.Table{Rows: rows, LeftCols: 2}))
}
