package client

import (
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idlemmo_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	retryBackoffSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idlemmo_retry_backoff_seconds",
		Help:    "Backoff applied before a retry when the server gave no reset time",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"error_class"})
)

// RetryConfig shapes the backoff used when the server signals a rate limit
// without an X-RateLimit-Reset header. Rate limited requests are retried
// without an attempt limit, so there is no MaxAttempts.
type RetryConfig struct {
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// MaxBackoff caps the delay.
	MaxBackoff time.Duration

	// BackoffMultiplier grows the delay after each retry.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default rate limit backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		InitialBackoff:    5 * time.Second,
		MaxBackoff:        60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoff returns the delay before retry number attempt (starting at 1),
// with ±20% jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	if c.InitialBackoff <= 0 {
		c = DefaultRetryConfig()
	}
	if c.BackoffMultiplier < 1 {
		c.BackoffMultiplier = 1
	}

	d := c.InitialBackoff
	for i := 1; i < attempt; i++ {
		d = time.Duration(float64(d) * c.BackoffMultiplier)
		if c.MaxBackoff > 0 && d >= c.MaxBackoff {
			d = c.MaxBackoff
			break
		}
	}
	if c.MaxBackoff > 0 && d > c.MaxBackoff {
		d = c.MaxBackoff
	}

	return time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
}
