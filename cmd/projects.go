package cmd

import (
	"context"
	"fmt"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Project budgets, spend, and progress",
	RunE:  runProjects,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, svc *service.Service, _ model.User) error {
		projects, err := svc.Projects(ctx)
		if err != nil {
			return fmt.Errorf("loading projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("\n  No projects found.")
			return nil
		}

		printTitle(fmt.Sprintf("PROJECTS  %d total", len(projects)))

		rows := make([][]string, 0, len(projects)+2)
		for _, p := range projects {
			rows = append(rows, []string{
				fmt.Sprintf("%d", p.ID),
				truncate(p.Name, 22),
				string(p.Status),
				cli.FormatCurrency(p.Budget),
				cli.FormatCurrency(p.Spent),
				cli.RenderProgressBar(float64(p.Progress), 10),
				p.EndDate,
			})
		}

		budget, spent := pipeline.PortfolioTotals(projects)
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"", "Portfolio", "", cli.FormatCurrency(budget), cli.FormatCurrency(spent), "", ""})

		fmt.Print(cli.RenderTable(cli.Table{
			Headers:  []string{"ID", "Project", "Status", "Budget", "Spent", "Progress", "Due"},
			Rows:     rows,
			LeftCols: 3,
		}))
		return nil
	})
}
