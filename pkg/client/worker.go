package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/cache"
	"github.com/Sternrassler/idlemmo-client/pkg/ratelimit"
	"github.com/Sternrassler/idlemmo-client/pkg/tokenpool"
)

// task is a queued request. deliver decodes a 2xx body and resolves the
// future; fail resolves it with a Failure.
type task struct {
	id         string
	endpoint   string
	url        string
	cacheKey   *cache.CacheKey
	enqueuedAt time.Time

	deliver func(status int, body []byte) error
	fail    func(status Status, class ErrorClass, detail string, cause error)
}

// run is the worker loop. It exits once shutdown was requested and the
// queue is empty, or immediately after a forced shutdown.
func (c *Client) run() {
	defer close(c.stopped)

	for {
		if c.ctx.Err() != nil {
			return
		}

		t := c.next()
		if t == nil {
			if c.draining() {
				return
			}
			continue
		}

		c.process(t)
	}
}

// next returns the head of the queue, waiting at most PollInterval for one.
func (c *Client) next() *task {
	if t := c.dequeue(); t != nil {
		return t
	}

	timer := time.NewTimer(c.cfg.PollInterval)
	defer timer.Stop()

	select {
	case <-c.notify:
	case <-timer.C:
	case <-c.closing:
	case <-c.ctx.Done():
		return nil
	}
	return c.dequeue()
}

// draining reports whether shutdown was requested and nothing is queued.
func (c *Client) draining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.accepting && len(c.queue) == 0
}

// process executes one task to completion. Rate limited attempts are retried
// in place so the task keeps its position ahead of everything queued later.
func (c *Client) process(t *task) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().
				Str("task_id", t.id).
				Str("endpoint", t.endpoint).
				Interface("panic", r).
				Msg("Recovered panic while processing task")
			c.failTask(t, StatusBadRequest, ErrorClassInternal, fmt.Sprint(r), nil)
		}
		queueWaitSeconds.Observe(time.Since(t.enqueuedAt).Seconds())
	}()

	var stale *cache.CacheEntry
	if t.cacheKey != nil {
		entry, err := c.cfg.Cache.Lookup(c.ctx, *t.cacheKey)
		switch {
		case err == nil && !entry.IsExpired():
			cache.CacheHits.WithLabelValues("redis").Inc()
			c.logger.Debug().Str("task_id", t.id).Str("key", t.cacheKey.String()).Msg("Cache hit")
			c.deliverTask(t, entry.StatusCode, entry.Data)
			return
		case err == nil:
			stale = entry
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("key", t.cacheKey.String()).Msg("Cache lookup failed")
		}
	}

	for attempt := 1; ; attempt++ {
		waited, err := c.tracker.Wait(c.ctx)
		switch {
		case c.ctx.Err() != nil:
			c.abort(t, c.ctx.Err())
			return
		case err != nil:
			// store unreachable: proceed, the server still enforces its limit
			c.logger.Warn().Err(err).Str("task_id", t.id).Msg("Rate limit window unavailable")
		case waited > 0:
			c.logger.Info().
				Str("task_id", t.id).
				Dur("waited", waited).
				Msg("Rate limit window passed, resuming")
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(c.ctx); err != nil {
				c.abort(t, err)
				return
			}
		}

		token, err := c.credential()
		if err != nil {
			c.failTask(t, StatusUnauthorized, ErrorClassClient, err.Error(), err)
			return
		}

		if retry := c.attempt(t, token, stale, attempt); !retry {
			return
		}
	}
}

// attempt performs one HTTP exchange and reports whether the task must be
// retried because of a rate limit.
func (c *Client) attempt(t *task, token string, stale *cache.CacheEntry, attempt int) bool {
	rec := Attempt{
		TaskID:   t.id,
		Endpoint: t.endpoint,
		URL:      t.url,
		Token:    tokenpool.Fingerprint(token),
		Attempt:  attempt,
		At:       time.Now(),
	}
	defer func() { c.record(rec) }()

	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, t.url, nil)
	if err != nil {
		rec.Err = err.Error()
		c.failTask(t, StatusBadRequest, ErrorClassNetwork, err.Error(), err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if cache.ShouldMakeConditionalRequest(stale) {
		cache.AddConditionalHeaders(req, stale)
	}

	c.mu.Lock()
	httpClient := c.httpClient
	c.mu.Unlock()

	start := time.Now()
	resp, err := httpClient.Do(req)
	rec.Duration = time.Since(start)
	requestDuration.WithLabelValues(t.endpoint).Observe(rec.Duration.Seconds())
	if err != nil {
		rec.Err = err.Error()
		if c.ctx.Err() != nil {
			c.abort(t, err)
			return false
		}
		c.logger.Error().Err(err).Str("task_id", t.id).Str("url", t.url).Msg("Request failed")
		c.failTask(t, StatusBadRequest, ErrorClassNetwork, err.Error(), err)
		return false
	}
	defer resp.Body.Close()

	rec.Status = resp.StatusCode
	requestsTotal.WithLabelValues(t.endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	sig, err := c.tracker.Observe(c.ctx, resp.Header, resp.StatusCode)
	stored := err == nil
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record rate limit state")
	}
	if sig.HasRemaining && c.cfg.UseRotatingTokens && c.cfg.Tokens != nil {
		c.cfg.Tokens.UpdateRemaining(token, sig.Remaining)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		rec.Err = err.Error()
		c.failTask(t, StatusBadRequest, ErrorClassNetwork, err.Error(), err)
		return false
	}

	if sig.Limited {
		rec.RateLimited = true
		c.onRateLimited(t, sig, stored, attempt)
		return true
	}

	switch {
	case resp.StatusCode == http.StatusNotModified && stale != nil:
		cache.NotModifiedResponses.Inc()
		cache.Refresh(stale, resp.Header, c.cfg.Cache.DefaultTTL())
		if err := c.cfg.Cache.Set(c.ctx, *t.cacheKey, stale); err != nil {
			c.logger.Warn().Err(err).Str("key", t.cacheKey.String()).Msg("Failed to refresh cache entry")
		}
		c.deliverTask(t, stale.StatusCode, stale.Data)

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if c.deliverTask(t, resp.StatusCode, body) && t.cacheKey != nil && cache.Cacheable(resp.Header) {
			entry := cache.ResponseToEntry(resp, body, c.cfg.Cache.DefaultTTL())
			if err := c.cfg.Cache.Set(c.ctx, *t.cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Str("key", t.cacheKey.String()).Msg("Failed to cache response")
			}
		}

	default:
		detail := string(body)
		if detail == "" {
			detail = Status(resp.StatusCode).String()
		}
		rec.Err = detail
		class := classifyStatus(resp.StatusCode)
		c.logger.Warn().
			Str("task_id", t.id).
			Str("endpoint", t.endpoint).
			Int("status", resp.StatusCode).
			Str("class", string(class)).
			Msg("Request returned error status")
		c.failTask(t, Status(resp.StatusCode), class, detail, nil)
	}

	return false
}

// onRateLimited moves the window forward. The tracker already applied the
// reset header if one was present; otherwise a backoff is used. If the window
// could not be stored the worker sleeps locally instead.
func (c *Client) onRateLimited(t *task, sig ratelimit.Signal, stored bool, attempt int) {
	retriesTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()

	if sig.HasReset {
		c.logger.Warn().
			Str("task_id", t.id).
			Time("reset_at", sig.ResetAt).
			Int("attempt", attempt).
			Msg("Rate limited, waiting for reset")
		if !stored {
			c.sleep(time.Until(sig.ResetAt.Add(ratelimit.ResetMargin)))
		}
		return
	}

	delay := c.cfg.RateLimitBackoff.backoff(attempt)
	retryBackoffSeconds.WithLabelValues(string(ErrorClassRateLimit)).Observe(delay.Seconds())

	c.logger.Warn().
		Str("task_id", t.id).
		Dur("backoff", delay).
		Int("attempt", attempt).
		Msg("Rate limited without reset header, backing off")

	if _, err := c.tracker.Defer(c.ctx, delay); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to defer rate limit window")
		c.sleep(delay)
	}
}

// sleep pauses the worker for d or until a forced shutdown.
func (c *Client) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-c.ctx.Done():
	}
}

// credential picks the bearer token for the next attempt.
func (c *Client) credential() (string, error) {
	if c.cfg.UseRotatingTokens && c.cfg.Tokens != nil {
		if token, err := c.cfg.Tokens.Select(); err == nil {
			return token, nil
		}
	}
	if c.cfg.APIKey == "" {
		return "", ErrNoCredential
	}
	return c.cfg.APIKey, nil
}

// deliverTask decodes body into the task's payload type. A decode failure
// resolves the task as a Failure. It reports whether the task succeeded.
func (c *Client) deliverTask(t *task, status int, body []byte) bool {
	if err := t.deliver(status, body); err != nil {
		c.logger.Warn().Err(err).Str("task_id", t.id).Str("endpoint", t.endpoint).Msg("Failed to decode response")
		c.failTask(t, StatusBadRequest, ErrorClassDecode, err.Error(), err)
		return false
	}
	return true
}

func (c *Client) failTask(t *task, status Status, class ErrorClass, detail string, cause error) {
	errorsTotal.WithLabelValues(string(class)).Inc()
	t.fail(status, class, detail, cause)
}

// abort resolves a task interrupted by a forced shutdown.
func (c *Client) abort(t *task, err error) {
	c.failTask(t, StatusBadRequest, ErrorClassShutdown, "request interrupted by shutdown", errors.Join(ErrClientClosed, err))
}

func (c *Client) record(a Attempt) {
	if c.cfg.Recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.cfg.Recorder.Record(ctx, a); err != nil {
		c.logger.Warn().Err(err).Str("task_id", a.TaskID).Msg("Failed to record attempt")
	}
}
