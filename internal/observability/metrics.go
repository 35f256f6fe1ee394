package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~20s
		},
		[]string{"method", "route", "status"},
	)

	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geomet_requests_total",
			Help: "GeoMet requests by service, operation and status.",
		},
		[]string{"service", "operation", "status"},
	)

	upstreamDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geomet_request_duration_seconds",
			Help:    "Duration of GeoMet requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~3m
		},
		[]string{"service", "operation"},
	)

	upstreamPayloadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geomet_payload_bytes_total",
			Help: "Bytes received from GeoMet by service and operation.",
		},
		[]string{"service", "operation"},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveUpstream records one GeoMet call. status 0 means the request
// never produced an HTTP response and is recorded as "error".
func ObserveUpstream(service, operation string, status int, durationSeconds float64, bytes int64) {
	st := "error"
	if status > 0 {
		st = strconv.Itoa(status)
	}
	upstreamRequestsTotal.WithLabelValues(service, operation, st).Inc()
	upstreamDurationSeconds.WithLabelValues(service, operation).Observe(durationSeconds)
	if bytes > 0 {
		upstreamPayloadBytes.WithLabelValues(service, operation).Add(float64(bytes))
	}
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
