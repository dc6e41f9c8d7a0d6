package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	ds := Default()
	if err := Validate(ds); err != nil {
		t.Fatalf("Validate(Default()): %v", err)
	}
	if len(ds.Users) != 3 {
		t.Errorf("users = %d, want 3", len(ds.Users))
	}
	if len(ds.Projects) != 4 {
		t.Errorf("projects = %d, want 4", len(ds.Projects))
	}
	if len(ds.Invoices) != 4 {
		t.Errorf("invoices = %d, want 4", len(ds.Invoices))
	}
	if len(ds.Accounts) != 5 {
		t.Errorf("accounts = %d, want 5", len(ds.Accounts))
	}
	if len(ds.CashFlow) != 6 {
		t.Errorf("cash flow months = %d, want 6", len(ds.CashFlow))
	}
}

func TestDefault_ReturnsFreshSlices(t *testing.T) {
	a := Default()
	a.Projects[0].Spent = 0
	b := Default()
	if b.Projects[0].Spent != 4_200_000 {
		t.Errorf("Default() shares state: Spent = %.0f", b.Projects[0].Spent)
	}
}

const fixtureYAML = `
users:
  - id: 1
    username: boss
    role: Admin
projects:
  - id: 7
    name: Harbor Pier
    budget: 900000
    spent: 450000
    progress: 40
    status: Active
    start_date: "2024-02-01"
    end_date: "2025-02-01"
invoices:
  - id: 1
    invoice_number: INV-100
    project_id: 7
    vendor_name: Pile Drivers
    amount: 12500
    status: Pending
    due_date: "2024-05-01"
    currency: EUR
accounts:
  - id: 1
    code: "4000"
    name: Revenue
    type: Revenue
    balance: 100000
cash_flow:
  - month: Jan
    income: 10
    expenses: 5
`

func TestLoadFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	if err := os.WriteFile(path, []byte(fixtureYAML), 0o600); err != nil {
		t.Fatal(err)
	}

	ds, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(ds.Projects) != 1 || ds.Projects[0].Name != "Harbor Pier" {
		t.Fatalf("projects = %+v", ds.Projects)
	}
	if ds.Projects[0].StartDate != "2024-02-01" {
		t.Errorf("StartDate = %q, want 2024-02-01", ds.Projects[0].StartDate)
	}
	if ds.Invoices[0].Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", ds.Invoices[0].Currency)
	}
}

func TestParse_RejectsOutOfRangeProgress(t *testing.T) {
	bad := strings.Replace(fixtureYAML, "progress: 40", "progress: 140", 1)
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected error for progress 140")
	}
}

func TestParse_RejectsZeroBudget(t *testing.T) {
	bad := strings.Replace(fixtureYAML, "budget: 900000", "budget: 0", 1)
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected error for zero budget")
	}
}

func TestParse_RejectsDanglingInvoice(t *testing.T) {
	bad := strings.Replace(fixtureYAML, "project_id: 7", "project_id: 8", 1)
	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected error for unknown project reference")
	}
	if !strings.Contains(err.Error(), "unknown project 8") {
		t.Errorf("error = %v, want mention of unknown project 8", err)
	}
}

func TestParse_RejectsBadStatus(t *testing.T) {
	bad := strings.Replace(fixtureYAML, "status: Active", "status: Paused", 1)
	if _, err := Parse([]byte(bad)); err == nil {
		t.Fatal("expected error for unknown project status")
	}
}
