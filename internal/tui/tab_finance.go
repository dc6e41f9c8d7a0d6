package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"constructerp/internal/cli"
	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"
	"constructerp/internal/tui/components"
	"constructerp/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type financeView int

const (
	viewInvoices financeView = iota
	viewAccounts
)

// statusFilters is the cycle order for the invoice status filter. The
// empty status means all invoices.
var statusFilters = append([]model.InvoiceStatus{""}, model.InvoiceStatuses()...)

// financeState tracks the finance tab.
type financeState struct {
	view       financeView
	filter     int // index into statusFilters
	cursor     int
	form       *huh.Form
	vals       *invoiceValues
	submitting bool
}

// invoiceValues backs the new-invoice form.
type invoiceValues struct {
	ProjectID     int
	VendorName    string
	Amount        string
	InvoiceNumber string
	Status        model.InvoiceStatus
	DueDate       string
	Currency      string
}

func (f *financeState) move(delta, rows int) {
	f.cursor += delta
	f.clampCursor(rows)
}

func (f *financeState) clampCursor(rows int) {
	if f.cursor >= rows {
		f.cursor = rows - 1
	}
	if f.cursor < 0 {
		f.cursor = 0
	}
}

func (f financeState) status() model.InvoiceStatus {
	return statusFilters[f.filter%len(statusFilters)]
}

func (a App) filteredInvoices() []model.Invoice {
	return pipeline.FilterInvoicesByStatus(a.invoices, a.finance.status())
}

func (a App) financeRowCount() int {
	if a.finance.view == viewAccounts {
		return len(a.accounts)
	}
	return len(a.filteredInvoices())
}

func (a App) updateFinanceKeys(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.finance.move(1, a.financeRowCount())
	case "k", "up":
		a.finance.move(-1, a.financeRowCount())
	case "g":
		a.finance.cursor = 0
	case "G":
		a.finance.cursor = a.financeRowCount() - 1
		a.finance.clampCursor(a.financeRowCount())
	case "v":
		if a.finance.view == viewInvoices {
			a.finance.view = viewAccounts
		} else {
			a.finance.view = viewInvoices
		}
		a.finance.cursor = 0
	case "s":
		if a.finance.view != viewInvoices {
			return a, nil, false
		}
		a.finance.filter = (a.finance.filter + 1) % len(statusFilters)
		a.finance.cursor = 0
	case "n":
		if a.finance.submitting {
			return a, nil, true
		}
		if len(a.projects) == 0 {
			a.setFlash("No projects loaded", true)
			return a, nil, true
		}
		m, cmd := a.openInvoiceForm()
		return m, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

// ─── New invoice form ───────────────────────────────────────────

func newInvoiceForm(projects []model.Project, vals *invoiceValues) *huh.Form {
	opts := make([]huh.Option[int], len(projects))
	for i, p := range projects {
		opts[i] = huh.NewOption(fmt.Sprintf("%s (#%d)", p.Name, p.ID), p.ID)
	}

	statusOpts := []huh.Option[model.InvoiceStatus]{
		huh.NewOption("Pending", model.InvoicePending),
		huh.NewOption("Paid", model.InvoicePaid),
		huh.NewOption("Overdue", model.InvoiceOverdue),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Project").
				Options(opts...).
				Value(&vals.ProjectID),
			huh.NewInput().
				Title("Vendor").
				Placeholder("Acme Supplies").
				Value(&vals.VendorName).
				Validate(requireText("vendor")),
			huh.NewInput().
				Title("Amount").
				Placeholder("12500.00").
				Value(&vals.Amount).
				Validate(func(s string) error {
					_, err := parseAmount(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Invoice number").
				Description("Leave blank to generate one").
				Value(&vals.InvoiceNumber),
			huh.NewSelect[model.InvoiceStatus]().
				Title("Status").
				Options(statusOpts...).
				Value(&vals.Status),
			huh.NewInput().
				Title("Due date").
				Description(fmt.Sprintf("YYYY-MM-DD, blank for %d days from today", service.DefaultDueInDays)).
				Value(&vals.DueDate).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("Currency").
				Value(&vals.Currency).
				CharLimit(3),
		),
	).WithTheme(formTheme()).WithShowHelp(true)
}

func requireText(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// parseAmount accepts plain or comma-grouped positive numbers.
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, errors.New("amount is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("amount must be a number")
	}
	if v <= 0 {
		return 0, errors.New("amount must be greater than 0")
	}
	return v, nil
}

// request converts the form values into a create request.
func (v invoiceValues) request() (service.NewInvoice, error) {
	amount, err := parseAmount(v.Amount)
	if err != nil {
		return service.NewInvoice{}, err
	}
	return service.NewInvoice{
		InvoiceNumber: strings.TrimSpace(v.InvoiceNumber),
		ProjectID:     v.ProjectID,
		VendorName:    strings.TrimSpace(v.VendorName),
		Amount:        amount,
		Status:        v.Status,
		DueDate:       strings.TrimSpace(v.DueDate),
		Currency:      strings.TrimSpace(v.Currency),
	}, nil
}

func invoiceFormWidth(termWidth int) int {
	return min(64, max(30, termWidth-16))
}

func (a App) openInvoiceForm() (tea.Model, tea.Cmd) {
	vals := &invoiceValues{
		ProjectID: a.projects[0].ID,
		Status:    model.InvoicePending,
		Currency:  service.DefaultCurrency,
	}
	form := newInvoiceForm(a.projects, vals)
	if a.width > 0 {
		form = form.WithWidth(invoiceFormWidth(a.width))
	}
	a.finance.form = form
	a.finance.vals = vals
	return a, form.Init()
}

func (a App) updateInvoiceForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		a.finance.form, a.finance.vals = nil, nil
		return a, nil
	}

	form, cmd := a.finance.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.finance.form = f
	}

	switch a.finance.form.State {
	case huh.StateCompleted:
		vals := *a.finance.vals
		a.finance.form, a.finance.vals = nil, nil
		req, err := vals.request()
		if err != nil {
			a.setFlash(err.Error(), true)
			return a, nil
		}
		actor := ""
		if a.user != nil {
			actor = a.user.Username
		}
		a.finance.submitting = true
		a.setFlash("Saving invoice...", false)
		return a, tea.Batch(a.spinner.Tick, createInvoiceCmd(a.svc, actor, req))
	case huh.StateAborted:
		a.finance.form, a.finance.vals = nil, nil
		return a, nil
	}
	return a, cmd
}

func (a App) viewInvoiceForm() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	body := titleStyle.Render("New Invoice") + "\n\n" +
		a.finance.form.View() + "\n" +
		hintStyle.Render("esc cancel")

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(body),
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Rendering ──────────────────────────────────────────────────

func (a App) renderFinanceTab(cw, h int) string {
	t := theme.Active
	var b strings.Builder

	// Row 1: totals per status
	totals := pipeline.InvoiceTotals(a.invoices)
	kpis := make([]components.KPI, 0, len(totals)+1)
	for _, tot := range totals {
		kpis = append(kpis, components.KPI{
			Label: string(tot.Status),
			Value: cli.FormatCompactCurrency(tot.Amount),
			Note:  fmt.Sprintf("%d invoices", tot.Count),
			Color: t.InvoiceStatus(tot.Status),
		})
	}
	kpis = append(kpis, components.KPI{Label: "Accounts", Value: cli.FormatNumber(int64(len(a.accounts))), Note: "in chart"})
	b.WriteString(components.MetricCardRow(kpis, cw))
	b.WriteString("\n")

	// Remaining height for the table card: border, title, header, rule, hint.
	rows := h - lipgloss.Height(b.String()) - 6
	if rows < 3 {
		rows = 3
	}

	if a.finance.view == viewAccounts {
		b.WriteString(components.FocusedCard("Chart of Accounts", a.renderAccountsTable(cw, rows), cw))
	} else {
		title := "Invoices"
		if s := a.finance.status(); s != "" {
			title += " · " + string(s)
		}
		b.WriteString(components.FocusedCard(title, a.renderInvoicesTable(cw, rows), cw))
	}
	return b.String()
}

func (a App) projectName(id int) string {
	for _, p := range a.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

// visibleWindow returns the [start, end) rows to show so the cursor stays
// on screen.
func visibleWindow(cursor, total, rows int) (int, int) {
	offset := 0
	if cursor >= rows {
		offset = cursor - rows + 1
	}
	end := offset + rows
	if end > total {
		end = total
	}
	return offset, end
}

func (a App) renderInvoicesTable(cw, rows int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)
	invoices := a.filteredInvoices()

	const numW, amtW, dueW, statusW = 16, 14, 10, 8
	fixed := numW + amtW + dueW + statusW + 5
	rest := innerW - fixed
	if rest < 20 {
		rest = 20
	}
	projW := rest / 2
	vendorW := rest - projW

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %*s %-*s %-*s",
		numW, "Number", projW, "Project", vendorW, "Vendor", amtW, "Amount", dueW, "Due", statusW, "Status")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")

	if len(invoices) == 0 {
		b.WriteString(mutedStyle.Render("No invoices"))
	}

	start, end := visibleWindow(a.finance.cursor, len(invoices), rows)
	for i := start; i < end; i++ {
		inv := invoices[i]
		style := rowStyle
		if i == a.finance.cursor {
			style = selStyle
		}
		line := fmt.Sprintf("%-*s %-*s %-*s %*s %-*s ",
			numW, truncStr(inv.InvoiceNumber, numW),
			projW, truncStr(a.projectName(inv.ProjectID), projW),
			vendorW, truncStr(inv.VendorName, vendorW),
			amtW, cli.FormatMoney(inv.Amount, inv.Currency),
			dueW, inv.DueDate)
		status := lipgloss.NewStyle().Foreground(t.InvoiceStatus(inv.Status)).Background(style.GetBackground()).
			Render(fmt.Sprintf("%-*s", statusW, inv.Status))
		b.WriteString(style.Render(line) + status)
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("[j/k] select  [s] status filter  [v] accounts  [n] new invoice   %d of %d",
		min(a.finance.cursor+1, len(invoices)), len(invoices))))
	return b.String()
}

func (a App) renderAccountsTable(cw, rows int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	const codeW, typeW, balW = 6, 10, 16
	nameW := innerW - codeW - typeW - balW - 3
	if nameW < 12 {
		nameW = 12
	}

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %-*s %-*s %*s", codeW, "Code", nameW, "Name", typeW, "Type", balW, "Balance")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", innerW)))
	b.WriteString("\n")

	start, end := visibleWindow(a.finance.cursor, len(a.accounts), rows)
	for i := start; i < end; i++ {
		acc := a.accounts[i]
		style := rowStyle
		if i == a.finance.cursor {
			style = selStyle
		}
		b.WriteString(style.Render(fmt.Sprintf("%-*s %-*s %-*s %*s",
			codeW, acc.Code,
			nameW, truncStr(acc.Name, nameW),
			typeW, acc.Type,
			balW, cli.FormatCurrency(acc.Balance))))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("[j/k] select  [v] invoices"))
	return b.String()
}
