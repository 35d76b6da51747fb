// Package metrics exposes the Prometheus metrics of the IdleMMO client.
// Metrics are declared with promauto next to the code that updates them
// (client, ratelimit, tokenpool, cache); this package serves them and
// documents the full set.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all client metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving Gatherer in the Prometheus
// exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Coordinator (pkg/client):
//   - idlemmo_requests_total{endpoint, status} (Counter): HTTP exchanges by endpoint and status
//   - idlemmo_request_duration_seconds{endpoint} (Histogram): round trip duration
//   - idlemmo_errors_total{class} (Counter): failed tasks by error class
//   - idlemmo_queue_depth (Gauge): tasks waiting for the worker
//   - idlemmo_queue_wait_seconds (Histogram): enqueue to completion
//   - idlemmo_retries_total{error_class} (Counter): rate limit retries
//   - idlemmo_retry_backoff_seconds{error_class} (Histogram): backoff used without a reset header
//
// Rate limit window (pkg/ratelimit):
//   - idlemmo_rate_limit_remaining (Gauge): last X-RateLimit-Remaining
//   - idlemmo_rate_limit_hits_total (Counter): limited responses
//   - idlemmo_rate_limit_wait_seconds_total (Counter): time spent waiting for resets
//
// Token pool (pkg/tokenpool):
//   - idlemmo_token_remaining{token} (Gauge): quota estimate per token fingerprint
//
// Response cache (pkg/cache):
//   - idlemmo_cache_hits_total{layer} (Counter)
//   - idlemmo_cache_misses_total (Counter)
//   - idlemmo_cache_size_bytes{layer} (Gauge): bytes written
//   - idlemmo_304_responses_total (Counter): revalidations answered with 304
//   - idlemmo_cache_errors_total{operation} (Counter)
//
// Proxy (internal/proxy):
//   - idlemmo_proxy_requests_total{endpoint, code} (Counter)
//
// Example Prometheus Queries:
//
//   # Share of time spent rate limited
//   rate(idlemmo_rate_limit_wait_seconds_total[5m])
//
//   # Backlog
//   idlemmo_queue_depth > 50
//
//   # Failure rate by class
//   sum by (class) (rate(idlemmo_errors_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(idlemmo_request_duration_seconds_bucket[5m]))
