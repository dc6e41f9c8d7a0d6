package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/source"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSeeded(context.Background(), source.Default())
	if err != nil {
		t.Fatalf("OpenSeeded: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSeed_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ds := source.Default()

	projects, err := s.Projects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != len(ds.Projects) {
		t.Fatalf("projects = %d, want %d", len(projects), len(ds.Projects))
	}
	for i, p := range projects {
		if p != ds.Projects[i] {
			t.Errorf("project %d = %+v, want %+v", i, p, ds.Projects[i])
		}
	}

	invoices, err := s.Invoices(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 4 || invoices[2] != ds.Invoices[2] {
		t.Errorf("invoices = %+v", invoices)
	}

	accounts, err := s.Accounts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 5 || accounts[3].Type != model.AccountRevenue {
		t.Errorf("accounts = %+v", accounts)
	}

	users, err := s.Users(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 3 || users[1].Role != model.RoleFinanceManager {
		t.Errorf("users = %+v", users)
	}

	cf, err := s.CashFlow(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cf) != 6 || cf[0].Month != "May" || cf[5].Month != "Oct" {
		t.Errorf("cash flow = %+v", cf)
	}
}

func TestProject_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Project(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserByUsername_ExactMatch(t *testing.T) {
	s := openTestStore(t)
	u, err := s.UserByUsername(context.Background(), "finance")
	if err != nil {
		t.Fatalf("UserByUsername: %v", err)
	}
	if u.Username != "finance" {
		t.Errorf("Username = %q, want finance", u.Username)
	}

	for _, name := range []string{"FINANCE", "Finance", " finance", "nobody"} {
		if _, err := s.UserByUsername(context.Background(), name); !errors.Is(err, ErrNotFound) {
			t.Errorf("UserByUsername(%q): err = %v, want ErrNotFound", name, err)
		}
	}
}

func TestCreateInvoice_AssignsNextID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	created, err := s.CreateInvoice(ctx, model.Invoice{
		ID:            1, // ignored
		InvoiceNumber: "INV-005",
		ProjectID:     2,
		VendorName:    "Rebar Inc",
		Amount:        4200,
		Status:        model.InvoicePending,
		DueDate:       "2023-12-01",
		Currency:      "USD",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if created.ID != 105 {
		t.Errorf("ID = %d, want 105", created.ID)
	}

	invoices, err := s.Invoices(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 5 {
		t.Fatalf("invoices = %d, want 5", len(invoices))
	}
	if invoices[4] != created {
		t.Errorf("last invoice = %+v, want %+v", invoices[4], created)
	}
}

func TestCreateInvoice_UnknownProject(t *testing.T) {
	s := openTestStore(t)
	_, err := s.CreateInvoice(context.Background(), model.Invoice{
		InvoiceNumber: "INV-X", ProjectID: 42, VendorName: "x", Amount: 1,
		Status: model.InvoicePending, DueDate: "2024-01-01", Currency: "USD",
	})
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

func TestReads_AreSnapshots(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, err := s.Projects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	first[0].Spent = 1

	second, err := s.Projects(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second[0].Spent != 4_200_000 {
		t.Errorf("Spent = %.0f after mutating an earlier read", second[0].Spent)
	}
}

func TestAudit_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, action := range []string{model.ActionLogin, model.ActionInvoiceCreated, model.ActionLogout} {
		err := s.AppendAudit(ctx, model.AuditEntry{
			ID:     action,
			At:     base.Add(time.Duration(i) * time.Minute),
			Actor:  "admin",
			Action: action,
		})
		if err != nil {
			t.Fatalf("AppendAudit: %v", err)
		}
	}

	got, err := s.RecentAudit(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Action != model.ActionLogout || got[1].Action != model.ActionInvoiceCreated {
		t.Errorf("order = %s,%s", got[0].Action, got[1].Action)
	}
	if !got[0].At.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("At = %v", got[0].At)
	}

	all, err := s.RecentAudit(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d, want 3", len(all))
	}
}
