package sandbox

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes recorded by neurofit_sandbox_token_refresh_total.
const (
	refreshOK       = "ok"
	refreshRejected = "rejected"
	refreshInvalid  = "invalid"
)

// metrics lives on its own registry so several sandboxes can run in one
// test binary.
type metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	refreshes *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neurofit",
			Subsystem: "sandbox",
			Name:      "http_requests_total",
			Help:      "API requests by route template, method and status code.",
		}, []string{"route", "method", "code"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "neurofit",
			Subsystem: "sandbox",
			Name:      "token_refresh_total",
			Help:      "Calls to /token/refresh/ by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.requests, m.refreshes)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument counts every routed API request under its path template, so
// /posts/1/ and /posts/2/ share a series.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}
