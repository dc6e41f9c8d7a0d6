package cmd

import (
	"context"
	"fmt"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/service"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Chart of accounts with balances",
	RunE:  runAccounts,
}

var cashflowCmd = &cobra.Command{
	Use:   "cashflow",
	Short: "Monthly income and expenses with next-month forecast",
	RunE:  runCashFlow,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	rootCmd.AddCommand(cashflowCmd)
}

func runAccounts(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, svc *service.Service, _ model.User) error {
		accounts, err := svc.Accounts(ctx)
		if err != nil {
			return fmt.Errorf("loading accounts: %w", err)
		}

		printTitle("CHART OF ACCOUNTS")
		if len(accounts) == 0 {
			fmt.Println("  No accounts.")
			return nil
		}

		byType := make(map[model.AccountType]float64)
		rows := make([][]string, 0, len(accounts))
		for _, a := range accounts {
			byType[a.Type] += a.Balance
			rows = append(rows, []string{
				a.Code,
				truncate(a.Name, 28),
				string(a.Type),
				cli.FormatCurrency(a.Balance),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers:  []string{"Code", "Account", "Type", "Balance"},
			Rows:     rows,
			LeftCols: 3,
		}))
		fmt.Println()

		types := []model.AccountType{
			model.AccountAsset, model.AccountLiability, model.AccountEquity,
			model.AccountRevenue, model.AccountExpense,
		}
		trows := make([][]string, 0, len(types))
		for _, t := range types {
			if v, ok := byType[t]; ok {
				trows = append(trows, []string{string(t), cli.FormatCurrency(v)})
			}
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By Type",
			Headers: []string{"Type", "Balance"},
			Rows:    trows,
		}))
		return nil
	})
}

func runCashFlow(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, svc *service.Service, _ model.User) error {
		series, err := svc.CashFlow(ctx)
		if err != nil {
			return fmt.Errorf("loading cash flow: %w", err)
		}
		printTitle("CASH FLOW")
		printCashFlow(series)
		return nil
	})
}
