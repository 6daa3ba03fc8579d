package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Metrics bundles the relay's Prometheus collectors. A nil *Metrics is valid
// and records nothing, which keeps handler tests free of registry setup.
type Metrics struct {
	Registry *prometheus.Registry
	requests *prometheus.HistogramVec
	lookups  *prometheus.CounterVec
}

// NewMetrics registers the relay collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "Duration of relay HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_preview_lookups_total",
			Help: "Preview lookups by outcome.",
		}, []string{"outcome"}),
	}
	m.Registry.MustRegister(m.requests, m.lookups, prometheus.NewGoCollector())
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) lookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Instrument assigns every request an ID, logs it once completed and observes
// its duration.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		if m != nil {
			m.requests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(rec.status)).Observe(elapsed.Seconds())
		}
		log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   elapsed,
		}).Debug("request")
	})
}
