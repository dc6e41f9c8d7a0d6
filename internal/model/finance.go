package model

// InvoiceStatus is the payment state of an invoice.
type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "Paid"
	InvoicePending InvoiceStatus = "Pending"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

// InvoiceStatuses lists every invoice status in display order.
func InvoiceStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoicePaid, InvoicePending, InvoiceOverdue}
}

// Invoice is a vendor bill raised against a project.
type Invoice struct {
	ID            int           `json:"id" yaml:"id" validate:"gt=0"`
	InvoiceNumber string        `json:"invoiceNumber" yaml:"invoice_number" validate:"required"`
	ProjectID     int           `json:"projectId" yaml:"project_id" validate:"gt=0"`
	VendorName    string        `json:"vendorName" yaml:"vendor_name" validate:"required"`
	Amount        float64       `json:"amount" yaml:"amount" validate:"gt=0"`
	Status        InvoiceStatus `json:"status" yaml:"status" validate:"oneof=Paid Pending Overdue"`
	DueDate       string        `json:"dueDate" yaml:"due_date" validate:"datetime=2006-01-02"`
	Currency      string        `json:"currency" yaml:"currency" validate:"iso4217"`
}

// AccountType classifies a ledger account.
type AccountType string

const (
	AccountAsset     AccountType = "Asset"
	AccountLiability AccountType = "Liability"
	AccountEquity    AccountType = "Equity"
	AccountRevenue   AccountType = "Revenue"
	AccountExpense   AccountType = "Expense"
)

// Account is one row of the chart of accounts.
type Account struct {
	ID      int         `json:"id" yaml:"id" validate:"gt=0"`
	Code    string      `json:"code" yaml:"code" validate:"required,numeric"`
	Name    string      `json:"name" yaml:"name" validate:"required"`
	Type    AccountType `json:"type" yaml:"type" validate:"oneof=Asset Liability Equity Revenue Expense"`
	Balance float64     `json:"balance" yaml:"balance"`
}

// CashFlowPoint is one month of income and expenses.
type CashFlowPoint struct {
	Month    string  `json:"month" yaml:"month" validate:"required"`
	Income   float64 `json:"income" yaml:"income" validate:"gte=0"`
	Expenses float64 `json:"expenses" yaml:"expenses" validate:"gte=0"`
	Forecast bool    `json:"forecast,omitempty" yaml:"-"`
}

// Net returns income minus expenses.
func (p CashFlowPoint) Net() float64 {
	return p.Income - p.Expenses
}

// DashboardStats holds the executive KPI card values.
type DashboardStats struct {
	TotalRevenue     float64 `json:"totalRevenue"`
	ActiveProjects   int     `json:"activeProjects"`
	PendingInvoices  int     `json:"pendingInvoices"`
	HighRiskProjects int     `json:"highRiskProjects"`
}
