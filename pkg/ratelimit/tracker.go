package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "idlemmo_rate_limit_remaining",
		Help: "Last observed X-RateLimit-Remaining value",
	})

	rateLimitHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idlemmo_rate_limit_hits_total",
		Help: "Total number of responses that exhausted the quota or returned 429",
	})

	rateLimitWaitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idlemmo_rate_limit_wait_seconds_total",
		Help: "Total time spent waiting for the rate limit window to reset",
	})
)

// Tracker owns the rate limit window and gates requests on it.
type Tracker struct {
	store  Store
	logger zerolog.Logger
}

// NewTracker creates a tracker backed by store. A nil store selects a
// MemoryStore.
func NewTracker(store Store, logger zerolog.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{
		store:  store,
		logger: logger,
	}
}

// Window returns the current window.
func (t *Tracker) Window(ctx context.Context) (Window, error) {
	w, err := t.store.Load(ctx)
	if err != nil {
		return Window{}, fmt.Errorf("get rate limit window: %w", err)
	}
	return w, nil
}

// Observe inspects a response and updates the window.
//
// A response is limited when X-RateLimit-Remaining is "0" or the status is
// 429. When X-RateLimit-Reset is present the window is extended to that
// instant plus ResetMargin. An absent Remaining header is not a limit signal.
// Malformed headers, and a reset that has already passed including the
// margin, are logged and treated as absent so the caller backs off instead.
func (t *Tracker) Observe(ctx context.Context, headers http.Header, status int) (Signal, error) {
	sig := parseHeaders(headers, t.logger)
	sig.Limited = (sig.HasRemaining && sig.Remaining <= 0) || status == http.StatusTooManyRequests

	if sig.HasRemaining {
		rateLimitRemaining.Set(float64(sig.Remaining))
		if err := t.store.RecordRemaining(ctx, sig.Remaining); err != nil {
			return sig, fmt.Errorf("record remaining: %w", err)
		}
	}

	if !sig.Limited {
		return sig, nil
	}

	rateLimitHitsTotal.Inc()

	if sig.HasReset && !sig.ResetAt.Add(ResetMargin).After(time.Now()) {
		t.logger.Warn().
			Int("status", status).
			Time("reset_at", sig.ResetAt).
			Msg("Ignoring rate limit reset in the past")
		sig.HasReset = false
	}

	if !sig.HasReset {
		t.logger.Warn().
			Int("status", status).
			Msg("Rate limited without reset header")
		return sig, nil
	}

	w, err := t.store.Extend(ctx, sig.ResetAt.Add(ResetMargin))
	if err != nil {
		return sig, fmt.Errorf("extend window: %w", err)
	}

	t.logger.Warn().
		Int("status", status).
		Time("reset_at", w.ResetAt).
		Dur("wait", w.TimeUntilReset()).
		Msg("Rate limit reached - pausing requests")

	return sig, nil
}

// Defer pushes the window to at least now+d. It is used when the server
// signals a limit without saying when it ends.
func (t *Tracker) Defer(ctx context.Context, d time.Duration) (Window, error) {
	w, err := t.store.Extend(ctx, time.Now().Add(d))
	if err != nil {
		return Window{}, fmt.Errorf("defer window: %w", err)
	}
	t.logger.Debug().Dur("wait", d).Time("reset_at", w.ResetAt).Msg("Rate limit window deferred")
	return w, nil
}

// Wait blocks until the window has passed. The window is re-read after every
// sleep so extensions made meanwhile (by this or another process) are
// honoured. It returns the total time waited, or ctx.Err() if ctx ends first.
func (t *Tracker) Wait(ctx context.Context) (time.Duration, error) {
	var waited time.Duration
	for {
		w, err := t.Window(ctx)
		if err != nil {
			return waited, err
		}

		d := time.Until(w.ResetAt)
		if d <= 0 {
			return waited, nil
		}

		t.logger.Debug().
			Time("reset_at", w.ResetAt).
			Dur("wait", d).
			Msg("Waiting for rate limit window")

		timer := time.NewTimer(d)
		start := time.Now()
		select {
		case <-ctx.Done():
			timer.Stop()
			elapsed := time.Since(start)
			waited += elapsed
			rateLimitWaitSeconds.Add(elapsed.Seconds())
			return waited, ctx.Err()
		case <-timer.C:
			elapsed := time.Since(start)
			waited += elapsed
			rateLimitWaitSeconds.Add(elapsed.Seconds())
		}
	}
}

// Blocked reports whether a request issued now would have to wait, and for
// how long.
func (t *Tracker) Blocked(ctx context.Context) (bool, time.Duration, error) {
	w, err := t.Window(ctx)
	if err != nil {
		return false, 0, err
	}
	d := w.TimeUntilReset()
	return d > 0, d, nil
}

func parseHeaders(headers http.Header, logger zerolog.Logger) Signal {
	var sig Signal

	if raw := strings.TrimSpace(headers.Get(HeaderRemaining)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			logger.Warn().Str("header", HeaderRemaining).Str("value", raw).Msg("Ignoring malformed rate limit header")
		} else {
			sig.Remaining = n
			sig.HasRemaining = true
		}
	}

	if raw := strings.TrimSpace(headers.Get(HeaderReset)); raw != "" {
		epoch, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || epoch <= 0 {
			logger.Warn().Str("header", HeaderReset).Str("value", raw).Msg("Ignoring malformed rate limit header")
		} else {
			sig.ResetAt = time.Unix(epoch, 0)
			sig.HasReset = true
		}
	}

	return sig
}
