// Package service is the mock ERP API: fixed demo accounts, simulated
// network latency, and reads and writes against the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/risk"
	"constructerp/internal/store"

	"github.com/google/uuid"
)

var (
	// ErrInvalidCredentials is returned by Login for unknown users.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput wraps request validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned for missing records.
	ErrNotFound = store.ErrNotFound
)

// Repository is the storage the service reads and writes.
type Repository interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Project(ctx context.Context, id int) (model.Project, error)
	Invoices(ctx context.Context) ([]model.Invoice, error)
	CreateInvoice(ctx context.Context, inv model.Invoice) (model.Invoice, error)
	Accounts(ctx context.Context) ([]model.Account, error)
	Users(ctx context.Context) ([]model.User, error)
	UserByUsername(ctx context.Context, username string) (model.User, error)
	CashFlow(ctx context.Context) ([]model.CashFlowPoint, error)
	AppendAudit(ctx context.Context, e model.AuditEntry) error
	RecentAudit(ctx context.Context, limit int) ([]model.AuditEntry, error)
}

// Options configures a Service. Zero values pick defaults.
type Options struct {
	Latency Latency
	Logger  *slog.Logger
	Now     func() time.Time
}

// Service implements the ERP operations.
type Service struct {
	repo    Repository
	latency Latency
	log     *slog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	observers map[int]func(model.AuditEntry)
	riskObs   map[int]func([]model.RiskAssessment)
	nextObs   int
}

// New creates a Service over repo.
func New(repo Repository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:      repo,
		latency:   opts.Latency,
		log:       opts.Logger,
		now:       opts.Now,
		observers: make(map[int]func(model.AuditEntry)),
		riskObs:   make(map[int]func([]model.RiskAssessment)),
	}
}

// Subscribe registers fn to receive every new audit entry. The returned
// func removes the subscription. fn must not block.
func (s *Service) Subscribe(fn func(model.AuditEntry)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// SubscribeRisk registers fn to receive the result of every full risk
// analysis, including the one behind DashboardStats. fn must not block or
// keep the slice.
func (s *Service) SubscribeRisk(fn func([]model.RiskAssessment)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.riskObs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.riskObs, id)
		s.mu.Unlock()
	}
}

// Login authenticates username against the demo accounts.
func (s *Service) Login(ctx context.Context, username string) (model.User, error) {
	if err := wait(ctx, s.latency.Login); err != nil {
		return model.User{}, err
	}

	u, err := s.LookupUser(ctx, username)
	if err != nil {
		return model.User{}, err
	}

	s.audit(ctx, model.AuditEntry{Actor: u.Username, Action: model.ActionLogin, Detail: string(u.Role)})
	s.log.Info("user logged in", "user", u.Username, "role", u.Role)
	return u, nil
}

// LookupUser resolves a username without delay or auditing.
func (s *Service) LookupUser(ctx context.Context, username string) (model.User, error) {
	if username == "" {
		return model.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.UserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("looking up user: %w", err)
	}
	return u, nil
}

// Logout records the end of a session.
func (s *Service) Logout(ctx context.Context, username string) {
	s.audit(ctx, model.AuditEntry{Actor: username, Action: model.ActionLogout})
	s.log.Info("user logged out", "user", username)
}

// DashboardStats computes the KPI card values. It runs a full risk
// analysis to count high-risk projects.
func (s *Service) DashboardStats(ctx context.Context) (model.DashboardStats, error) {
	if err := wait(ctx, s.latency.Stats); err != nil {
		return model.DashboardStats{}, err
	}

	accounts, err := s.repo.Accounts(ctx)
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("loading accounts: %w", err)
	}
	projects, err := s.repo.Projects(ctx)
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("loading projects: %w", err)
	}
	invoices, err := s.repo.Invoices(ctx)
	if err != nil {
		return model.DashboardStats{}, fmt.Errorf("loading invoices: %w", err)
	}
	risks, err := s.RiskAnalysis(ctx)
	if err != nil {
		return model.DashboardStats{}, err
	}

	return pipeline.ComputeStats(accounts, projects, invoices, risks), nil
}

// Projects returns every project.
func (s *Service) Projects(ctx context.Context) ([]model.Project, error) {
	if err := wait(ctx, s.latency.Projects); err != nil {
		return nil, err
	}
	return s.repo.Projects(ctx)
}

// Invoices returns every invoice.
func (s *Service) Invoices(ctx context.Context) ([]model.Invoice, error) {
	if err := wait(ctx, s.latency.Invoices); err != nil {
		return nil, err
	}
	return s.repo.Invoices(ctx)
}

// Accounts returns the chart of accounts.
func (s *Service) Accounts(ctx context.Context) ([]model.Account, error) {
	if err := wait(ctx, s.latency.Accounts); err != nil {
		return nil, err
	}
	return s.repo.Accounts(ctx)
}

// Users returns the demo accounts.
func (s *Service) Users(ctx context.Context) ([]model.User, error) {
	if err := wait(ctx, s.latency.Users); err != nil {
		return nil, err
	}
	return s.repo.Users(ctx)
}

// CashFlow returns the monthly series plus one forecast month.
func (s *Service) CashFlow(ctx context.Context) ([]model.CashFlowPoint, error) {
	if err := wait(ctx, s.latency.CashFlow); err != nil {
		return nil, err
	}
	series, err := s.repo.CashFlow(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.Forecast(series), nil
}

// RiskAnalysis assesses every project. Projects with unscorable figures
// are logged and left out.
func (s *Service) RiskAnalysis(ctx context.Context) ([]model.RiskAssessment, error) {
	if err := wait(ctx, s.latency.Risk); err != nil {
		return nil, err
	}
	projects, err := s.repo.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}

	risks, err := risk.AssessAll(projects)
	if err != nil {
		s.log.Warn("skipped unscorable projects", "err", err)
	}

	s.mu.RLock()
	for _, fn := range s.riskObs {
		fn(risks)
	}
	s.mu.RUnlock()
	return risks, nil
}

// ProjectRisk assesses one project.
func (s *Service) ProjectRisk(ctx context.Context, id int) (model.RiskAssessment, error) {
	if err := wait(ctx, s.latency.Risk); err != nil {
		return model.RiskAssessment{}, err
	}
	p, err := s.repo.Project(ctx, id)
	if err != nil {
		return model.RiskAssessment{}, err
	}
	a, err := risk.Assess(p)
	if err != nil {
		return model.RiskAssessment{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return a, nil
}

// AuditLog returns up to limit entries, newest first.
func (s *Service) AuditLog(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if err := wait(ctx, s.latency.Audit); err != nil {
		return nil, err
	}
	return s.repo.RecentAudit(ctx, limit)
}

// audit stores e and fans it out. Failures are logged, never returned.
func (s *Service) audit(ctx context.Context, e model.AuditEntry) {
	e.ID = uuid.NewString()
	e.At = s.now().UTC()

	if err := s.repo.AppendAudit(ctx, e); err != nil {
		s.log.Warn("audit write failed", "action", e.Action, "err", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.observers {
		fn(e)
	}
}
