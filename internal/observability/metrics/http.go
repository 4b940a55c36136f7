package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/scadenze/internal/core/domain"
)

const namespace = "scadenze"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	documentsCreatedTotal *prometheus.CounterVec
	documentsStored       prometheus.Gauge
	deadlinesSurfaced     *prometheus.HistogramVec
	deadlineUrgencyTotal  *prometheus.CounterVec
	faqAnswersTotal       *prometheus.CounterVec
	exportsTotal          *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsCreatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "documents_created_total",
			Help:      "Total documents committed to the vault by intake source.",
		},
		[]string{"service", "source"},
	)
	documentsStored := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "documents_stored",
			Help:      "Number of documents seen by the last listing.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	deadlinesSurfaced := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "deadlines",
			Name:      "surfaced",
			Help:      "Distribution of deadlines returned per aggregation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service", "endpoint"},
	)
	deadlineUrgencyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deadlines",
			Name:      "urgency_total",
			Help:      "Total surfaced deadlines by urgency band.",
		},
		[]string{"service", "urgency"},
	)
	faqAnswersTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "faq",
			Name:      "answers_total",
			Help:      "Total generated FAQ answers by question id.",
		},
		[]string{"service", "faq_id"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "generated_total",
			Help:      "Total generated exports by format.",
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		documentsCreatedTotal,
		documentsStored,
		deadlinesSurfaced,
		deadlineUrgencyTotal,
		faqAnswersTotal,
		exportsTotal,
	)

	return &HTTPServerMetrics{
		registry:              registry,
		requestTotal:          requestTotal,
		requestDuration:       requestDuration,
		requestInFlight:       requestInFlight,
		documentsCreatedTotal: documentsCreatedTotal,
		documentsStored:       documentsStored,
		deadlinesSurfaced:     deadlinesSurfaced,
		deadlineUrgencyTotal:  deadlineUrgencyTotal,
		faqAnswersTotal:       faqAnswersTotal,
		exportsTotal:          exportsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

// Middleware is meant for mux.Router.Use so the matched route template labels the series.
func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := routePath(r)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return normalizePath(r.URL.Path)
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{id}"
	case strings.HasPrefix(path, "/v1/faq/"):
		return "/v1/faq/{id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordDocumentCreated(service, source string) {
	if source == "" {
		source = "unknown"
	}
	m.documentsCreatedTotal.WithLabelValues(service, source).Inc()
}

func (m *HTTPServerMetrics) RecordDocumentsStored(count int) {
	m.documentsStored.Set(float64(count))
}

func (m *HTTPServerMetrics) RecordDeadlines(service, endpoint string, deadlines []domain.Deadline) {
	m.deadlinesSurfaced.WithLabelValues(service, endpoint).Observe(float64(len(deadlines)))
	for _, dl := range deadlines {
		m.deadlineUrgencyTotal.WithLabelValues(service, string(dl.Urgency)).Inc()
	}
}

func (m *HTTPServerMetrics) RecordFAQAnswer(service, faqID string) {
	m.faqAnswersTotal.WithLabelValues(service, faqID).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service, format string) {
	m.exportsTotal.WithLabelValues(service, format).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
