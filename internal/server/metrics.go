package server

import (
	"net/http"

	"constructerp/internal/model"
	"constructerp/internal/pipeline"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	invoicesCreated prometheus.Counter
	riskProjects    *prometheus.GaugeVec
}

// newMetrics registers collectors on a private registry so several servers
// can coexist in one process.
func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "erp",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, including simulated backend delay.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"route", "method"}),
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		invoicesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "erp",
			Name:      "invoices_created_total",
			Help:      "Invoices created since start.",
		}),
		riskProjects: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "erp",
			Name:      "projects_by_risk_level",
			Help:      "Projects per risk level as of the latest assessment.",
		}, []string{"level"}),
	}
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *metrics) observeRisks(risks []model.RiskAssessment) {
	for level, n := range pipeline.CountByLevel(risks) {
		m.riskProjects.WithLabelValues(string(level)).Set(float64(n))
	}
}
