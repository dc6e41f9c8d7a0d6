// Package store provides an in-memory SQLite repository for ERP records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Store is the repository behind the mock service. All reads return copies;
// nothing handed out aliases store state.
type Store struct {
	db *sql.DB
}

// Open creates an empty in-memory database with the schema applied.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenSeeded opens a store and loads ds into it.
func OpenSeeded(ctx context.Context, ds source.Dataset) (*Store, error) {
	s, err := Open()
	if err != nil {
		return nil, err
	}
	if err := s.Seed(ctx, ds); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts every record of ds in a single transaction.
func (s *Store) Seed(ctx context.Context, ds source.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range ds.Users {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (id, username, role, avatar_url) VALUES (?, ?, ?, ?)`,
			u.ID, u.Username, string(u.Role), u.AvatarURL); err != nil {
			return fmt.Errorf("seeding user %s: %w", u.Username, err)
		}
	}

	for _, p := range ds.Projects {
		if _, err := tx.ExecContext(ctx, `INSERT INTO projects
			(id, name, budget, spent, progress, status, start_date, end_date)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Budget, p.Spent, p.Progress, string(p.Status), p.StartDate, p.EndDate); err != nil {
			return fmt.Errorf("seeding project %d: %w", p.ID, err)
		}
	}

	for _, inv := range ds.Invoices {
		if _, err := tx.ExecContext(ctx, `INSERT INTO invoices
			(id, invoice_number, project_id, vendor_name, amount, status, due_date, currency)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.InvoiceNumber, inv.ProjectID, inv.VendorName, inv.Amount,
			string(inv.Status), inv.DueDate, inv.Currency); err != nil {
			return fmt.Errorf("seeding invoice %s: %w", inv.InvoiceNumber, err)
		}
	}

	for _, a := range ds.Accounts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO accounts (id, code, name, type, balance) VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Code, a.Name, string(a.Type), a.Balance); err != nil {
			return fmt.Errorf("seeding account %s: %w", a.Code, err)
		}
	}

	for i, cf := range ds.CashFlow {
		if _, err := tx.ExecContext(ctx, `INSERT INTO cash_flow (seq, month, income, expenses) VALUES (?, ?, ?, ?)`,
			i, cf.Month, cf.Income, cf.Expenses); err != nil {
			return fmt.Errorf("seeding cash flow %s: %w", cf.Month, err)
		}
	}

	return tx.Commit()
}

const projectColumns = `id, name, budget, spent, progress, status, start_date, end_date`

func scanProject(sc interface{ Scan(...any) error }) (model.Project, error) {
	var p model.Project
	var status string
	err := sc.Scan(&p.ID, &p.Name, &p.Budget, &p.Spent, &p.Progress, &status, &p.StartDate, &p.EndDate)
	p.Status = model.ProjectStatus(status)
	return p, err
}

// Projects returns all projects ordered by id.
func (s *Store) Projects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Project returns a single project.
func (s *Store) Project(ctx context.Context, id int) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return p, err
}

const invoiceColumns = `id, invoice_number, project_id, vendor_name, amount, status, due_date, currency`

func scanInvoice(sc interface{ Scan(...any) error }) (model.Invoice, error) {
	var inv model.Invoice
	var status string
	err := sc.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ProjectID, &inv.VendorName,
		&inv.Amount, &status, &inv.DueDate, &inv.Currency)
	inv.Status = model.InvoiceStatus(status)
	return inv, err
}

// Invoices returns all invoices in insertion order.
func (s *Store) Invoices(ctx context.Context) ([]model.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// CreateInvoice stores inv with a database-assigned id and returns the
// stored row. inv.ID is ignored.
func (s *Store) CreateInvoice(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO invoices
		(invoice_number, project_id, vendor_name, amount, status, due_date, currency)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.InvoiceNumber, inv.ProjectID, inv.VendorName, inv.Amount,
		string(inv.Status), inv.DueDate, inv.Currency)
	if err != nil {
		return model.Invoice{}, fmt.Errorf("inserting invoice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Invoice{}, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	return scanInvoice(row)
}

// Accounts returns the chart of accounts ordered by code.
func (s *Store) Accounts(ctx context.Context) ([]model.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, type, balance FROM accounts ORDER BY code, id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &typ, &a.Balance); err != nil {
			return nil, err
		}
		a.Type = model.AccountType(typ)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Users returns all users ordered by id.
func (s *Store) Users(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, role, avatar_url FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.User
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &role, &u.AvatarURL); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserByUsername looks a user up by exact username.
func (s *Store) UserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	var role string
	err := s.db.QueryRowContext(ctx, `SELECT id, username, role, avatar_url FROM users WHERE username = ?`, username).
		Scan(&u.ID, &u.Username, &role, &u.AvatarURL)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	u.Role = model.Role(role)
	return u, err
}

// CashFlow returns the monthly series in seed order.
func (s *Store) CashFlow(ctx context.Context) ([]model.CashFlowPoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT month, income, expenses FROM cash_flow ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.CashFlowPoint
	for rows.Next() {
		var p model.CashFlowPoint
		if err := rows.Scan(&p.Month, &p.Income, &p.Expenses); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AppendAudit records an audit entry.
func (s *Store) AppendAudit(ctx context.Context, e model.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO audit_log (id, at, actor, action, target, detail)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.At.UTC().Format(time.RFC3339Nano), e.Actor, e.Action, e.Target, e.Detail)
	return err
}

// RecentAudit returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) RecentAudit(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, at, actor, action, target, detail
		FROM audit_log ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.AuditEntry
	for rows.Next() {
		var e model.AuditEntry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Actor, &e.Action, &e.Target, &e.Detail); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		out = append(out, e)
	}
	return out, rows.Err()
}
