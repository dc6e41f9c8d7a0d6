package cmd

import (
	"context"
	"fmt"
	"net/http"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/service"

	"github.com/spf13/cobra"
)

var (
	flagAuditLimit int
	flagAuditAPI   string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Demo user accounts and roles",
	RunE:  runUsers,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Recent user activity, newest first",
	Long: `Recent user activity, newest first.

The log lives in the serving process; pass --api to read it from a
running "erp serve".`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().IntVarP(&flagAuditLimit, "limit", "l", 50, "Maximum entries to show")
	auditCmd.Flags().StringVar(&flagAuditAPI, "api", "", "Address of a running erp serve (host:port)")
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(auditCmd)
}

func runUsers(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, svc *service.Service, me model.User) error {
		users, err := svc.Users(ctx)
		if err != nil {
			return fmt.Errorf("loading users: %w", err)
		}

		printTitle(fmt.Sprintf("USERS  %d accounts", len(users)))

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			marker := ""
			if u.ID == me.ID {
				marker = cli.Colored("● you", cli.ColorGreen)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", u.ID),
				u.Username,
				string(u.Role),
				marker,
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers:  []string{"ID", "Username", "Role", ""},
			Rows:     rows,
			LeftCols: 4,
		}))
		return nil
	})
}

func runAudit(_ *cobra.Command, _ []string) error {
	if flagAuditLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	if flagAuditAPI != "" {
		user, err := sessionUsername()
		if err != nil {
			return err
		}
		var entries []model.AuditEntry
		path := fmt.Sprintf("/v1/audit?limit=%d", flagAuditLimit)
		if err := newAPIClient(flagAuditAPI, user).do(context.Background(), http.MethodGet, path, nil, &entries); err != nil {
			return err
		}
		printAudit(entries)
		return nil
	}

	return withSession(func(ctx context.Context, svc *service.Service, _ model.User) error {
		entries, err := svc.AuditLog(ctx, flagAuditLimit)
		if err != nil {
			return fmt.Errorf("loading audit log: %w", err)
		}
		printAudit(entries)
		return nil
	})
}

func printAudit(entries []model.AuditEntry) {
	printTitle("AUDIT LOG")
	if len(entries) == 0 {
		fmt.Println("  No activity recorded.")
		return
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.At.Local().Format("2006-01-02 15:04:05"),
			e.Actor,
			e.Action,
			truncate(e.Target, 16),
			truncate(e.Detail, 40),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Time", "User", "Action", "Target", "Detail"},
		Rows:     rows,
		LeftCols: 5,
	}))
}
