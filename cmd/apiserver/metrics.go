package main

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// metricRequestsCount counts the served requests per route and status code.
	metricRequestsCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vega",
		Name:      "apiserver_requests_total",
		Help:      "Total number of processed requests",
	}, []string{"route", "code"})

	metricCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vega",
		Name:      "results_cache_requests_total",
		Help:      "Lookups of the results cache by outcome",
	}, []string{"result"})

	metricCalculationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vega",
		Name:      "calculations_created_total",
		Help:      "Number of calculations created through the API",
	})

	// metricComputeDurationSeconds summarizes the synchronous evaluations.
	metricComputeDurationSeconds = promauto.NewSummary(prometheus.SummaryOpts{
		Namespace:  "vega",
		Name:       "compute_duration_seconds",
		Help:       "Summarizes the time to evaluate a method at the requested redshifts (in seconds)",
		Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
	})
)

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := "unknown"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		metricRequestsCount.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
	})
}
