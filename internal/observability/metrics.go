package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// NewMetrics menginisialisasi registry, metrik HTTP dan metrik panggilan ERP.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	upstream := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "odyssey_frappe_requests_total",
		Help: "Jumlah panggilan ke Frappe berdasarkan method, doctype dan status.",
	}, []string{"method", "doctype", "code"})
	upstreamDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "odyssey_frappe_request_duration_seconds",
		Help:    "Durasi panggilan ke Frappe per method dan doctype.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "doctype"})
	registry.MustRegister(
		requests,
		duration,
		upstream,
		upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		upstreamTotal:    upstream,
		upstreamDuration: upstreamDuration,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveUpstream records one Frappe call. Status 0 means the request never
// got a response.
func (m *Metrics) ObserveUpstream(method, doctype string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if doctype == "" {
		doctype = "-"
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.upstreamTotal.WithLabelValues(method, doctype, code).Inc()
	m.upstreamDuration.WithLabelValues(method, doctype).Observe(elapsed.Seconds())
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
