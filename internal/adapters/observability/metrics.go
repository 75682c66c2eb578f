package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lightbnb", Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lightbnb", Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lightbnb", Name: "db_queries_total", Help: "SQL statements executed."},
		[]string{"backend", "outcome"}, // outcome: ok|error
	)
	DBLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lightbnb", Name: "db_query_duration_seconds",
			Help:    "SQL statement duration seconds.",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"backend"},
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lightbnb", Name: "cache_events_total", Help: "Cache hits/misses/sets/increments."},
		[]string{"cache", "event"}, // event: hit|miss|set|incr|error
	)
	SeedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lightbnb", Name: "seed_records_total", Help: "Fixture records processed by the seeder."},
		[]string{"entity", "outcome"},
	)
)

// Serve starts a standalone metrics listener for processes without an API
// router. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	go func() {
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, DBQueries, DBLatency, CacheEvents, SeedRecords)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveQuery(backend string, err error, dur time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	DBQueries.WithLabelValues(backend, outcome).Inc()
	DBLatency.WithLabelValues(backend).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveSeed(entity string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SeedRecords.WithLabelValues(entity, outcome).Inc()
}
