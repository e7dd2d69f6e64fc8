package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics keeps the Prometheus collectors exposed by the service.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
	items       prometheus.GaugeFunc
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware observes every routed request by route name and status code.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := "unknown"
		if cur := mux.CurrentRoute(r); cur != nil && cur.GetName() != "" {
			route = cur.GetName()
		}
		m.requests.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
		m.reqDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// NewMetrics creates and registers service collectors.
// itemsFn reports the current number of alive employees.
func NewMetrics(itemsFn func() float64) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "employee_sync",
			Name:      "requests_total",
			Help:      "Number of handled API requests.",
		}, []string{"route", "code"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "employee_sync",
			Name:      "request_duration_seconds",
			Help:      "API request handling duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		items: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "employee_sync",
			Name:      "employees",
			Help:      "Number of stored employees.",
		}, itemsFn),
	}
	m.registry.MustRegister(m.requests, m.reqDuration, m.items)

	return m
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
