package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"constructerp/internal/model"
	"constructerp/internal/pipeline"
	"constructerp/internal/service"
	"constructerp/internal/source"
	"constructerp/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, buffer int) *Server {
	t.Helper()
	st, err := store.OpenSeeded(context.Background(), source.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(st, service.Options{Logger: quiet})
	srv := New(svc, Config{EventsBuffer: buffer}, quiet)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *Server, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, 10)
	w := do(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t, 10)

	w := do(t, srv, http.MethodPost, "/v1/login", "", map[string]string{"username": "finance"})
	require.Equal(t, http.StatusOK, w.Code)
	u := decode[model.User](t, w)
	assert.Equal(t, model.RoleFinanceManager, u.Role)

	w = do(t, srv, http.MethodPost, "/v1/login", "", map[string]string{"username": "mallory"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")

	w = do(t, srv, http.MethodPost, "/v1/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGuard_RequiresKnownUser(t *testing.T) {
	srv := newTestServer(t, 10)

	for _, path := range []string{"/v1/dashboard", "/v1/projects", "/v1/invoices", "/v1/users", "/v1/audit"} {
		w := do(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = do(t, srv, http.MethodGet, path, "ghost", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t, 10)

	w := do(t, srv, http.MethodGet, "/v1/dashboard", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	d := decode[pipeline.Dashboard](t, w)
	assert.Equal(t, 8_500_000.0, d.Stats.TotalRevenue)
	assert.Equal(t, 3, d.Stats.ActiveProjects)
	assert.Equal(t, 2, d.Stats.PendingInvoices)
	assert.Equal(t, 0, d.Stats.HighRiskProjects)
	assert.Len(t, d.Risks, 4)
	require.Len(t, d.CashFlow, 7)
	assert.Equal(t, "Nov (Est)", d.CashFlow[6].Month)
}

func TestProjectRisk(t *testing.T) {
	srv := newTestServer(t, 10)

	w := do(t, srv, http.MethodGet, "/v1/projects/1/risk", "pm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	a := decode[model.RiskAssessment](t, w)
	assert.Equal(t, 30, a.RiskScore)
	assert.Equal(t, model.RiskMedium, a.RiskLevel)
	assert.Equal(t, []string{"Spending exceeds progress by >20%"}, a.Factors)

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/v1/projects/99/risk", "pm", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodGet, "/v1/projects/abc/risk", "pm", nil).Code)
}

func TestInvoices_FilterAndCreate(t *testing.T) {
	srv := newTestServer(t, 10)

	w := do(t, srv, http.MethodGet, "/v1/invoices?status=Pending", "finance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Invoice](t, w), 2)

	w = do(t, srv, http.MethodPost, "/v1/invoices", "finance", service.NewInvoice{
		ProjectID:  3,
		VendorName: "Glass Works",
		Amount:     1200,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[model.Invoice](t, w)
	assert.Equal(t, 105, inv.ID)
	assert.Equal(t, model.InvoicePending, inv.Status)
	assert.Equal(t, "USD", inv.Currency)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-"))

	w = do(t, srv, http.MethodGet, "/v1/invoices?status=pending", "finance", nil)
	assert.Len(t, decode[[]model.Invoice](t, w), 3)

	w = do(t, srv, http.MethodPost, "/v1/invoices", "finance", service.NewInvoice{ProjectID: 3, Amount: 10})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "vendorName is required")

	w = do(t, srv, http.MethodGet, "/v1/audit", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]model.AuditEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionInvoiceCreated, entries[0].Action)
	assert.Equal(t, "finance", entries[0].Actor)
}

func TestInvoices_MalformedBody(t *testing.T) {
	srv := newTestServer(t, 10)
	req := httptest.NewRequest(http.MethodPost, "/v1/invoices", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(UserHeader, "admin")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvents_RingBuffer(t *testing.T) {
	srv := newTestServer(t, 2)

	for _, u := range []string{"admin", "finance", "pm"} {
		w := do(t, srv, http.MethodPost, "/v1/login", "", map[string]string{"username": u})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, srv, http.MethodGet, "/v1/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	events := decode[[]Event](t, w)
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Equal(t, int64(3), events[1].ID)
	assert.Equal(t, "pm", events[1].Audit.Actor)
	assert.Equal(t, model.ActionLogin, events[1].Type)

	st := decode[Status](t, do(t, srv, http.MethodGet, "/v1/status", "", nil))
	assert.Equal(t, 2, st.EventCount)
	assert.GreaterOrEqual(t, st.RequestCount, int64(4))
}

func TestMetrics_Exposed(t *testing.T) {
	srv := newTestServer(t, 10)

	do(t, srv, http.MethodGet, "/v1/risk", "admin", nil)
	do(t, srv, http.MethodPost, "/v1/login", "", map[string]string{"username": "nobody"})
	do(t, srv, http.MethodPost, "/v1/invoices", "admin", service.NewInvoice{ProjectID: 1, VendorName: "x", Amount: 1})

	w := do(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `erp_http_requests_total{method="GET",route="/v1/risk",status="200"} 1`)
	assert.Contains(t, body, `erp_logins_total{result="rejected"} 1`)
	assert.Contains(t, body, `erp_invoices_created_total 1`)
	assert.Contains(t, body, `erp_projects_by_risk_level{level="Medium"} 2`)
	assert.Contains(t, body, `erp_projects_by_risk_level{level="Critical"} 0`)
}

func TestMetrics_RiskGaugeFollowsStats(t *testing.T) {
	srv := newTestServer(t, 10)

	w := do(t, srv, http.MethodGet, "/v1/stats", "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := do(t, srv, http.MethodGet, "/metrics", "", nil).Body.String()
	assert.Contains(t, body, `erp_projects_by_risk_level{level="Medium"} 2`)
	assert.Contains(t, body, `erp_projects_by_risk_level{level="Low"} 2`)
}

func TestStream_DeliversAuditEvents(t *testing.T) {
	st, err := store.OpenSeeded(context.Background(), source.Default())
	require.NoError(t, err)
	defer st.Close()

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(st, service.Options{Logger: quiet})
	srv := New(svc, Config{}, quiet)
	defer srv.Close()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	lines := bufio.NewScanner(resp.Body)
	waitFor := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q: %v", prefix, lines.Err())
		return ""
	}

	assert.Equal(t, "event:status", strings.ReplaceAll(waitFor("event:"), " ", ""))

	_, err = svc.Login(ctx, "admin")
	require.NoError(t, err)

	assert.Equal(t, "event:login", strings.ReplaceAll(waitFor("event:"), " ", ""))
	data := waitFor("data:")
	assert.Contains(t, data, `"actor":"admin"`)
}
