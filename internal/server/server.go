// Package server exposes the ERP service over HTTP: a JSON API, Prometheus
// metrics, and a live stream of audit events.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/service"

	"github.com/gin-gonic/gin"
)

// Backend is the subset of the ERP service the API serves.
type Backend interface {
	Login(ctx context.Context, username string) (model.User, error)
	LookupUser(ctx context.Context, username string) (model.User, error)
	Logout(ctx context.Context, username string)
	DashboardStats(ctx context.Context) (model.DashboardStats, error)
	Projects(ctx context.Context) ([]model.Project, error)
	Invoices(ctx context.Context) ([]model.Invoice, error)
	CreateInvoice(ctx context.Context, actor string, req service.NewInvoice) (model.Invoice, error)
	Accounts(ctx context.Context) ([]model.Account, error)
	Users(ctx context.Context) ([]model.User, error)
	CashFlow(ctx context.Context) ([]model.CashFlowPoint, error)
	RiskAnalysis(ctx context.Context) ([]model.RiskAssessment, error)
	ProjectRisk(ctx context.Context, id int) (model.RiskAssessment, error)
	AuditLog(ctx context.Context, limit int) ([]model.AuditEntry, error)
	Subscribe(fn func(model.AuditEntry)) func()
	SubscribeRisk(fn func([]model.RiskAssessment)) func()
}

// Config controls the server runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int
}

// Event is emitted for every audit entry.
type Event struct {
	ID        int64            `json:"id"`
	Type      string           `json:"type"`
	Timestamp time.Time        `json:"timestamp"`
	Audit     model.AuditEntry `json:"audit"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	Addr            string    `json:"addr"`
	RequestCount    int64     `json:"request_count"`
	LastEventAt     time.Time `json:"last_event_at,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Server is the HTTP front end.
type Server struct {
	cfg     Config
	backend Backend
	log     *slog.Logger
	metrics *metrics
	engine  *gin.Engine
	unsub   []func()

	mu           sync.RWMutex
	startedAt    time.Time
	requestCount int64
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New builds a server over backend and subscribes to its audit trail.
func New(backend Backend, cfg Config, logger *slog.Logger) *Server {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:       cfg,
		backend:   backend,
		log:       logger,
		metrics:   newMetrics(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.engine = s.routes()
	s.unsub = []func(){
		backend.Subscribe(s.onAudit),
		backend.SubscribeRisk(s.metrics.observeRisks),
	}
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Close detaches the server from the backend's audit trail and risk results.
func (s *Server) Close() {
	for _, fn := range s.unsub {
		fn()
	}
	s.unsub = nil
}

// Run serves HTTP until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("api listening", "addr", s.cfg.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("api shutting down")
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("api http server: %w", err)
	}
}

func (s *Server) onAudit(e model.AuditEntry) {
	if e.Action == model.ActionInvoiceCreated {
		s.metrics.invoicesCreated.Inc()
	}

	s.mu.Lock()
	s.nextEventID++
	ev := Event{
		ID:        s.nextEventID,
		Type:      e.Action,
		Timestamp: e.At,
		Audit:     e,
	}
	s.mu.Unlock()

	s.publishEvent(ev)
}

func (s *Server) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Server) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:       s.startedAt,
		Addr:            s.cfg.Addr,
		RequestCount:    s.requestCount,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if n := len(s.events); n > 0 {
		st.LastEventAt = s.events[n-1].Timestamp
	}
	return st
}

func (s *Server) recentEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func (s *Server) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Server) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
