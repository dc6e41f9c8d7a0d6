package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"

	"github.com/spf13/cobra"
)

var (
	flagInvoiceStatus string
	flagInvoiceAPI    string

	flagNewVendor   string
	flagNewAmount   float64
	flagNewProject  int
	flagNewNumber   string
	flagNewStatus   string
	flagNewDue      string
	flagNewCurrency string
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Vendor invoices with status totals",
	RunE:  runInvoices,
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a new vendor invoice",
	Long: `Record a new vendor invoice.

Without --api the invoice lives only as long as this command; pass the
address of a running "erp serve" to keep it.`,
	RunE: runInvoicesCreate,
}

func init() {
	invoicesCmd.Flags().StringVarP(&flagInvoiceStatus, "status", "s", "", "Filter by status: Paid, Pending, Overdue")
	invoicesCmd.PersistentFlags().StringVar(&flagInvoiceAPI, "api", "", "Address of a running erp serve (host:port)")

	f := invoicesCreateCmd.Flags()
	f.StringVar(&flagNewVendor, "vendor", "", "Vendor name")
	f.Float64Var(&flagNewAmount, "amount", 0, "Invoice amount")
	f.IntVar(&flagNewProject, "project", 0, "Project id")
	f.StringVar(&flagNewNumber, "number", "", "Invoice number (generated when empty)")
	f.StringVar(&flagNewStatus, "status", "", "Status (default Pending)")
	f.StringVar(&flagNewDue, "due", "", "Due date YYYY-MM-DD (default 30 days out)")
	f.StringVar(&flagNewCurrency, "currency", "", "ISO 4217 currency code (default USD)")
	_ = invoicesCreateCmd.MarkFlagRequired("vendor")
	_ = invoicesCreateCmd.MarkFlagRequired("amount")
	_ = invoicesCreateCmd.MarkFlagRequired("project")

	invoicesCmd.AddCommand(invoicesCreateCmd)
	rootCmd.AddCommand(invoicesCmd)
}

// parseStatus matches s case-insensitively against the known statuses.
func parseStatus(s string) (model.InvoiceStatus, error) {
	if s == "" {
		return "", nil
	}
	for _, st := range model.InvoiceStatuses() {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q (want Paid, Pending, or Overdue)", s)
}

func runInvoices(_ *cobra.Command, _ []string) error {
	status, err := parseStatus(flagInvoiceStatus)
	if err != nil {
		return err
	}

	if flagInvoiceAPI != "" {
		user, err := sessionUsername()
		if err != nil {
			return err
		}
		var invoices []model.Invoice
		if err := newAPIClient(flagInvoiceAPI, user).do(context.Background(), http.MethodGet, "/v1/invoices", nil, &invoices); err != nil {
			return err
		}
		printInvoices(invoices, status)
		return nil
	}

	return withSession(func(ctx context.Context, svc *service.Service, _ model.User) error {
		invoices, err := svc.Invoices(ctx)
		if err != nil {
			return fmt.Errorf("loading invoices: %w", err)
		}
		printInvoices(invoices, status)
		return nil
	})
}

func printInvoices(invoices []model.Invoice, status model.InvoiceStatus) {
	shown := invoices
	if status != "" {
		shown = pipeline.FilterInvoicesByStatus(invoices, status)
	}

	title := "INVOICES"
	if status != "" {
		title += "  " + strings.ToUpper(string(status))
	}
	printTitle(title)

	if len(shown) == 0 {
		fmt.Println("  No invoices.")
		return
	}

	rows := make([][]string, 0, len(shown))
	for _, inv := range shown {
		rows = append(rows, []string{
			inv.InvoiceNumber,
			truncate(inv.VendorName, 24),
			fmt.Sprintf("%d", inv.ProjectID),
			statusText(inv.Status),
			inv.DueDate,
			cli.FormatMoney(inv.Amount, inv.Currency),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Number", "Vendor", "Project", "Status", "Due", "Amount"},
		Rows:     rows,
		LeftCols: 5,
	}))
	fmt.Println()

	totals := pipeline.InvoiceTotals(invoices)
	trows := make([][]string, 0, len(totals))
	for _, t := range totals {
		trows = append(trows, []string{statusText(t.Status), cli.FormatNumber(int64(t.Count)), cli.FormatCurrency(t.Amount)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Status",
		Headers: []string{"Status", "Count", "Amount"},
		Rows:    trows,
	}))
}

func statusText(s model.InvoiceStatus) string {
	switch s {
	case model.InvoicePaid:
		return cli.Colored(string(s), cli.ColorGreen)
	case model.InvoiceOverdue:
		return cli.Colored(string(s), cli.ColorRed)
	default:
		return cli.Colored(string(s), cli.ColorYellow)
	}
}

func runInvoicesCreate(_ *cobra.Command, _ []string) error {
	status, err := parseStatus(flagNewStatus)
	if err != nil {
		return err
	}
	req := service.NewInvoice{
		InvoiceNumber: flagNewNumber,
		ProjectID:     flagNewProject,
		VendorName:    flagNewVendor,
		Amount:        flagNewAmount,
		Status:        status,
		DueDate:       flagNewDue,
		Currency:      strings.ToUpper(flagNewCurrency),
	}

	if flagInvoiceAPI != "" {
		user, err := sessionUsername()
		if err != nil {
			return err
		}
		var inv model.Invoice
		if err := newAPIClient(flagInvoiceAPI, user).do(context.Background(), http.MethodPost, "/v1/invoices", req, &inv); err != nil {
			return err
		}
		printCreated(inv)
		return nil
	}

	return withSession(func(ctx context.Context, svc *service.Service, u model.User) error {
		inv, err := svc.CreateInvoice(ctx, u.Username, req)
		if err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return fmt.Errorf("rejected: %w", err)
			}
			return err
		}
		printCreated(inv)
		if !flagQuiet {
			fmt.Fprintf(os.Stderr, "  Note: data is in-memory; use --api with a running `erp serve` to keep it\n")
		}
		return nil
	})
}

func printCreated(inv model.Invoice) {
	fmt.Printf("  Created invoice %s (id %d)\n", inv.InvoiceNumber, inv.ID)
	fmt.Printf("  %s  %s  due %s  %s\n",
		inv.VendorName, cli.FormatMoney(inv.Amount, inv.Currency), inv.DueDate, statusText(inv.Status))
}
