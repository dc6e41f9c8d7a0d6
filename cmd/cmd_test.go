package cmd

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"constructerp/internal/config"
	"constructerp/internal/model"
	"constructerp/internal/server"
	"constructerp/internal/service"
	"constructerp/internal/source"
	"constructerp/internal/store"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ERP_USER", "")
	t.Setenv("ERP_NO_LATENCY", "")
	t.Setenv("ERP_SEED_FILE", "")
}

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	st, err := store.OpenSeeded(context.Background(), source.Default())
	if err != nil {
		t.Fatalf("OpenSeeded: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return service.New(st, service.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.InvoiceStatus
		err  bool
	}{
		{"", "", false},
		{"paid", model.InvoicePaid, false},
		{"PENDING", model.InvoicePending, false},
		{"Overdue", model.InvoiceOverdue, false},
		{"void", "", true},
	}
	for _, tt := range tests {
		got, err := parseStatus(tt.in)
		if (err != nil) != tt.err {
			t.Errorf("parseStatus(%q) err = %v, want err %v", tt.in, err, tt.err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := parseLevel(""); err != nil || lvl != slog.LevelWarn {
		t.Errorf("parseLevel(\"\") = %v, %v; want warn", lvl, err)
	}
	if lvl, err := parseLevel("DEBUG"); err != nil || lvl != slog.LevelDebug {
		t.Errorf("parseLevel(DEBUG) = %v, %v; want debug", lvl, err)
	}
	if _, err := parseLevel("loud"); err == nil {
		t.Error("parseLevel(loud) should fail")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Skyline Tower", 20); got != "Skyline Tower" {
		t.Errorf("short string changed: %q", got)
	}
	if got := truncate("Downtown Mall Renovation", 10); got != "Downtown …" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("tiny width = %q", got)
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", "x:1", "--detach=true"})
	want := []string{"serve", "--addr", "x:1"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("filterDetachArg = %v, want %v", got, want)
	}
}

func TestPIDAndStateFiles(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "serve.pid")

	if err := ensureServerNotRunning(pidFile); err != nil {
		t.Fatalf("missing pid file should be fine: %v", err)
	}

	if err := writePID(pidFile, 4242); err != nil {
		t.Fatal(err)
	}
	pid, err := readPID(pidFile)
	if err != nil || pid != 4242 {
		t.Fatalf("readPID = %d, %v", pid, err)
	}

	st := serveRuntimeState{PID: 4242, Addr: "127.0.0.1:9999", StartedAt: time.Now().Truncate(time.Second)}
	if err := writeState(statePath(pidFile), st); err != nil {
		t.Fatal(err)
	}
	got, err := readState(statePath(pidFile))
	if err != nil {
		t.Fatal(err)
	}
	if got.Addr != st.Addr || got.PID != st.PID || !got.StartedAt.Equal(st.StartedAt) {
		t.Errorf("state round trip = %+v, want %+v", got, st)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	isolateConfig(t)
	defer func() {
		flagNoLatency, flagSeedFile, flagLogLevel = false, "", ""
	}()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Service.SimulateLatency {
		t.Fatal("latency should default on")
	}

	flagNoLatency = true
	flagSeedFile = "demo.yaml"
	flagLogLevel = "debug"
	cfg, err = loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Service.SimulateLatency {
		t.Error("--no-latency not applied")
	}
	if cfg.General.SeedFile != "demo.yaml" {
		t.Errorf("seed file = %q", cfg.General.SeedFile)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.General.LogLevel)
	}
}

func TestLatencyFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Service.SimulateLatency = false
	if l := latencyFor(cfg); l != (service.Latency{}) {
		t.Errorf("disabled latency = %+v", l)
	}

	cfg.Service.SimulateLatency = true
	cfg.Service.LatencyScale = 0.5
	if got, want := latencyFor(cfg).Login, service.DefaultLatency().Login/2; got != want {
		t.Errorf("scaled login latency = %v, want %v", got, want)
	}
}

func TestRequireSession(t *testing.T) {
	isolateConfig(t)
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := requireSession(ctx, svc); err == nil || !strings.Contains(err.Error(), "erp login") {
		t.Fatalf("no session: err = %v", err)
	}

	if err := config.SaveSession(config.Session{Username: "finance"}); err != nil {
		t.Fatal(err)
	}
	u, err := requireSession(ctx, svc)
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != model.RoleFinanceManager {
		t.Errorf("role = %q", u.Role)
	}

	t.Setenv("ERP_USER", "ghost")
	if _, err := requireSession(ctx, svc); err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Errorf("unknown session user: err = %v", err)
	}
}

func TestAPIClient(t *testing.T) {
	svc := newTestService(t)
	srv := server.New(svc, server.Config{EventsBuffer: 10}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer srv.Close()
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx := context.Background()
	client := newAPIClient(ts.URL, "admin")

	var invoices []model.Invoice
	if err := client.do(ctx, http.MethodGet, "/v1/invoices", nil, &invoices); err != nil {
		t.Fatal(err)
	}
	if len(invoices) != 4 {
		t.Fatalf("got %d invoices, want 4", len(invoices))
	}

	var created model.Invoice
	req := service.NewInvoice{ProjectID: 1, VendorName: "Acme Steel", Amount: 1200}
	if err := client.do(ctx, http.MethodPost, "/v1/invoices", req, &created); err != nil {
		t.Fatal(err)
	}
	if created.ID != 105 || created.Status != model.InvoicePending {
		t.Errorf("created = %+v", created)
	}

	var entries []model.AuditEntry
	if err := client.do(ctx, http.MethodGet, "/v1/audit?limit=5", nil, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 || entries[0].Action != model.ActionInvoiceCreated {
		t.Errorf("audit = %+v", entries)
	}

	bad := service.NewInvoice{ProjectID: 1, VendorName: "Acme", Amount: -1}
	if err := client.do(ctx, http.MethodPost, "/v1/invoices", bad, nil); err == nil || !strings.Contains(err.Error(), "HTTP 400") {
		t.Errorf("invalid invoice: err = %v", err)
	}

	anon := newAPIClient(strings.TrimPrefix(ts.URL, "http://"), "")
	if err := anon.do(ctx, http.MethodGet, "/v1/projects", nil, nil); err == nil || !strings.Contains(err.Error(), "HTTP 401") {
		t.Errorf("anonymous request: err = %v", err)
	}
}
