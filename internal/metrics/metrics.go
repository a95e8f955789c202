// Package metrics exposes Prometheus collectors for analyses, HTTP traffic,
// reloads and WebSocket clients.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gexanalyzer"

// Analysis outcome labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
	ReloadsTotal     *prometheus.CounterVec
	WSClients        prometheus.Gauge
}

// New builds a Metrics with its own registry so tests and multiple servers
// never collide on the global one.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of chain analyses",
			},
			[]string{"symbol", "status"}, // status: success|error
		),

		AnalysisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Analysis duration in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"symbol"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status code",
			},
			[]string{"method", "route", "status"},
		),

		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Total chain reloads",
			},
			[]string{"status"}, // status: success|error
		),

		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_clients",
			Help:      "Connected WebSocket clients",
		}),
	}

	m.registry.MustRegister(
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.HTTPRequests,
		m.ReloadsTotal,
		m.WSClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAnalysis records one analysis outcome and its duration.
func (m *Metrics) ObserveAnalysis(symbol string, started time.Time, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.AnalysesTotal.WithLabelValues(symbol, status).Inc()
	m.AnalysisDuration.WithLabelValues(symbol).Observe(time.Since(started).Seconds())
}

func (m *Metrics) ObserveRequest(method, route string, code int) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
}

func (m *Metrics) ObserveReload(err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.ReloadsTotal.WithLabelValues(status).Inc()
}
