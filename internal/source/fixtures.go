// Package source provides the seed dataset: the built-in demo records or a
// YAML fixture file with the same shape.
package source

import (
	"errors"
	"fmt"
	"os"

	"constructerp/internal/model"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Dataset is everything the store is seeded with.
type Dataset struct {
	Users    []model.User          `yaml:"users" validate:"dive"`
	Projects []model.Project       `yaml:"projects" validate:"dive"`
	Invoices []model.Invoice       `yaml:"invoices" validate:"dive"`
	Accounts []model.Account       `yaml:"accounts" validate:"dive"`
	CashFlow []model.CashFlowPoint `yaml:"cash_flow" validate:"dive"`
}

// Default returns the demo dataset. Each call returns fresh slices.
func Default() Dataset {
	return Dataset{
		Users: []model.User{
			{ID: 1, Username: "admin", Role: model.RoleAdmin, AvatarURL: "https://picsum.photos/200/200"},
			{ID: 2, Username: "finance", Role: model.RoleFinanceManager, AvatarURL: "https://picsum.photos/201/201"},
			{ID: 3, Username: "pm", Role: model.RoleProjectManager, AvatarURL: "https://picsum.photos/202/202"},
		},
		Projects: []model.Project{
			{ID: 1, Name: "Skyline Tower", Budget: 5_000_000, Spent: 4_200_000, Progress: 60, Status: model.StatusActive, StartDate: "2023-01-01", EndDate: "2024-12-31"},
			{ID: 2, Name: "River Bridge", Budget: 1_200_000, Spent: 300_000, Progress: 25, Status: model.StatusActive, StartDate: "2023-06-01", EndDate: "2024-06-01"},
			{ID: 3, Name: "Downtown Mall", Budget: 8_500_000, Spent: 8_600_000, Progress: 95, Status: model.StatusActive, StartDate: "2022-01-01", EndDate: "2023-12-31"},
			{ID: 4, Name: "Suburb Housing", Budget: 2_000_000, Spent: 150_000, Progress: 10, Status: model.StatusOnHold, StartDate: "2024-01-01", EndDate: "2025-06-30"},
		},
		Invoices: []model.Invoice{
			{ID: 101, InvoiceNumber: "INV-001", ProjectID: 1, VendorName: "Steel Corp", Amount: 50_000, Status: model.InvoicePaid, DueDate: "2023-10-01", Currency: "USD"},
			{ID: 102, InvoiceNumber: "INV-002", ProjectID: 1, VendorName: "Cement Bros", Amount: 12_000, Status: model.InvoicePending, DueDate: "2023-11-15", Currency: "USD"},
			{ID: 103, InvoiceNumber: "INV-003", ProjectID: 3, VendorName: "Glass Works", Amount: 35_000, Status: model.InvoiceOverdue, DueDate: "2023-09-30", Currency: "USD"},
			{ID: 104, InvoiceNumber: "INV-004", ProjectID: 2, VendorName: "Earth Movers", Amount: 8_000, Status: model.InvoicePending, DueDate: "2023-11-20", Currency: "USD"},
		},
		Accounts: []model.Account{
			{ID: 1, Code: "1000", Name: "Cash", Type: model.AccountAsset, Balance: 1_500_000},
			{ID: 2, Code: "1200", Name: "Accounts Receivable", Type: model.AccountAsset, Balance: 340_000},
			{ID: 3, Code: "2000", Name: "Accounts Payable", Type: model.AccountLiability, Balance: 120_000},
			{ID: 4, Code: "4000", Name: "Construction Revenue", Type: model.AccountRevenue, Balance: 8_500_000},
			{ID: 5, Code: "5000", Name: "Material Expenses", Type: model.AccountExpense, Balance: 4_200_000},
		},
		CashFlow: []model.CashFlowPoint{
			{Month: "May", Income: 400_000, Expenses: 320_000},
			{Month: "Jun", Income: 300_000, Expenses: 450_000},
			{Month: "Jul", Income: 550_000, Expenses: 300_000},
			{Month: "Aug", Income: 450_000, Expenses: 380_000},
			{Month: "Sep", Income: 600_000, Expenses: 400_000},
			{Month: "Oct", Income: 700_000, Expenses: 420_000},
		},
	}
}

// LoadFile reads and validates a YAML fixture.
func LoadFile(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("reading fixture: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML fixture content.
func Parse(data []byte) (Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return Dataset{}, fmt.Errorf("parsing fixture: %w", err)
	}
	if err := Validate(ds); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and cross-record references.
func Validate(ds Dataset) error {
	if err := validate.Struct(ds); err != nil {
		return fmt.Errorf("invalid fixture: %w", err)
	}

	var errs []error
	dup := func(kind string, seen map[int]bool, id int) {
		if seen[id] {
			errs = append(errs, fmt.Errorf("duplicate %s id %d", kind, id))
		}
		seen[id] = true
	}

	users := map[int]bool{}
	names := map[string]bool{}
	for _, u := range ds.Users {
		dup("user", users, u.ID)
		if names[u.Username] {
			errs = append(errs, fmt.Errorf("duplicate username %q", u.Username))
		}
		names[u.Username] = true
	}

	projects := map[int]bool{}
	for _, p := range ds.Projects {
		dup("project", projects, p.ID)
		if p.EndDate < p.StartDate {
			errs = append(errs, fmt.Errorf("project %d ends before it starts", p.ID))
		}
	}

	invoices := map[int]bool{}
	for _, inv := range ds.Invoices {
		dup("invoice", invoices, inv.ID)
		if !projects[inv.ProjectID] {
			errs = append(errs, fmt.Errorf("invoice %s references unknown project %d", inv.InvoiceNumber, inv.ProjectID))
		}
	}

	accounts := map[int]bool{}
	for _, a := range ds.Accounts {
		dup("account", accounts, a.ID)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid fixture: %w", err)
	}
	return nil
}
