// Package client provides the IdleMMO request coordinator: a single worker
// that executes queued GET requests in order, waits out rate limit windows,
// rotates API tokens and resolves a typed Future for every request.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/cache"
	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/ratelimit"
	"github.com/Sternrassler/idlemmo-client/pkg/tokenpool"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idlemmo_requests_total",
		Help: "Total IdleMMO requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idlemmo_request_duration_seconds",
		Help:    "IdleMMO HTTP request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idlemmo_errors_total",
		Help: "Total failed requests by error class",
	}, []string{"class"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "idlemmo_queue_depth",
		Help: "Number of tasks waiting for the worker",
	})

	queueWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "idlemmo_queue_wait_seconds",
		Help:    "Time between enqueue and completion of a task",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
	})
)

// Defaults.
const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultShutdownTimeout = 5 * time.Second
	DefaultHTTPTimeout     = 30 * time.Second
)

// Config holds the client configuration.
type Config struct {
	// Identification (REQUIRED). Sent as
	// "User-Agent: <ApplicationName>/<ApplicationVersion> (Contact: <ContactEmail>)"
	ApplicationName    string
	ApplicationVersion string
	ContactEmail       string

	// Credentials. APIKey is required unless UseRotatingTokens is set and
	// Tokens is non-nil; it is also the fallback when the pool is empty.
	APIKey            string
	UseRotatingTokens bool
	Tokens            *tokenpool.Pool

	// BaseURL overrides endpoint.BaseURL (tests, local proxies)
	BaseURL string

	// Rate limiting
	RateLimitStore    ratelimit.Store // nil = in-process window
	RateLimitBackoff  RetryConfig     // used when a 429 carries no reset header
	RequestsPerSecond float64         // optional client-side pacing (0 = off)

	// Worker
	PollInterval    time.Duration // bounded wait while the queue is empty
	ShutdownTimeout time.Duration // drain budget used by Close

	// Optional collaborators
	Cache    *cache.Manager // response cache (nil = off)
	Recorder Recorder       // per-attempt journal (nil = off)

	// HTTPClient overrides the default client (30s timeout)
	HTTPClient *http.Client

	// Logger overrides the component logger
	Logger *zerolog.Logger
}

// DefaultConfig returns a configuration with safe defaults.
func DefaultConfig(appName, appVersion, contactEmail, apiKey string) Config {
	return Config{
		ApplicationName:    appName,
		ApplicationVersion: appVersion,
		ContactEmail:       contactEmail,
		APIKey:             apiKey,
		BaseURL:            endpoint.BaseURL,
		RateLimitBackoff:   DefaultRetryConfig(),
		PollInterval:       DefaultPollInterval,
		ShutdownTimeout:    DefaultShutdownTimeout,
	}
}

// UserAgent renders the User-Agent header value.
func (c Config) UserAgent() string {
	return fmt.Sprintf("%s/%s (Contact: %s)", c.ApplicationName, c.ApplicationVersion, c.ContactEmail)
}

// Request describes one GET against a known endpoint.
type Request struct {
	Endpoint   endpoint.Endpoint
	PathParams map[string]string
	Query      map[string]string
}

// Client is the request coordinator. Create it with New and stop it with
// Shutdown or Close.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tracker    *ratelimit.Tracker
	limiter    *rate.Limiter
	userAgent  string
	logger     zerolog.Logger

	mu        sync.Mutex
	queue     []*task
	accepting bool
	notify    chan struct{}

	ctx       context.Context // cancelled on forced shutdown
	cancel    context.CancelFunc
	closing   chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}
}

// New validates cfg and starts the worker.
func New(cfg Config) (*Client, error) {
	if cfg.ApplicationName == "" {
		return nil, fmt.Errorf("application name is required")
	}
	if cfg.ApplicationVersion == "" {
		return nil, fmt.Errorf("application version is required")
	}
	if cfg.ContactEmail == "" {
		return nil, fmt.Errorf("contact email is required")
	}
	if cfg.APIKey == "" && !(cfg.UseRotatingTokens && cfg.Tokens != nil) {
		return nil, fmt.Errorf("api key is required unless rotating tokens are configured")
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("requests_per_second must be >= 0 (got %v)", cfg.RequestsPerSecond)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = endpoint.BaseURL
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.RateLimitBackoff.InitialBackoff <= 0 {
		cfg.RateLimitBackoff = DefaultRetryConfig()
	}

	logger := log.With().Str("component", "idlemmo-client").Logger()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		tracker:    ratelimit.NewTracker(cfg.RateLimitStore, logger),
		limiter:    limiter,
		userAgent:  cfg.UserAgent(),
		logger:     logger,
		accepting:  true,
		notify:     make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		closing:    make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	go c.run()

	logger.Info().
		Str("base_url", cfg.BaseURL).
		Bool("rotating_tokens", cfg.UseRotatingTokens).
		Bool("cache", cfg.Cache != nil).
		Msg("IdleMMO client started")

	return c, nil
}

// Enqueue schedules req and returns its Future. It never blocks and never
// fails synchronously: every problem is reported through the Future.
func Enqueue[T any](c *Client, req Request) *Future[T] {
	id := uuid.NewString()
	f := newFuture[T](id)

	t := &task{
		id:         id,
		endpoint:   req.Endpoint.Name,
		enqueuedAt: time.Now(),
		deliver: func(status int, body []byte) error {
			var payload T
			if err := json.Unmarshal(body, &payload); err != nil {
				return err
			}
			f.complete(&Success[T]{Code: Status(status), Payload: payload})
			return nil
		},
		fail: func(status Status, class ErrorClass, detail string, cause error) {
			f.complete(&Failure[T]{Code: status, Class: class, Detail: detail, Cause: cause})
		},
	}

	url, err := req.Endpoint.URL(c.cfg.BaseURL, req.PathParams, req.Query)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		t.fail(StatusBadRequest, ErrorClassNetwork, err.Error(), err)
		return f
	}
	t.url = url

	if c.cfg.Cache != nil && req.Endpoint.Name != endpoint.Authenticate.Name {
		t.cacheKey = &cache.CacheKey{
			Endpoint:    req.Endpoint.Name,
			PathParams:  req.PathParams,
			QueryParams: req.Query,
		}
	}

	c.submit(t)
	return f
}

// Do enqueues req and waits for its result.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	resp, err := Enqueue[T](c, req).Await(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return resp.Result()
}

func (c *Client) submit(t *task) {
	c.mu.Lock()
	if !c.accepting {
		c.mu.Unlock()
		errorsTotal.WithLabelValues(string(ErrorClassShutdown)).Inc()
		t.fail(StatusBadRequest, ErrorClassShutdown, ErrClientClosed.Error(), ErrClientClosed)
		return
	}
	c.queue = append(c.queue, t)
	depth := len(c.queue)
	c.mu.Unlock()

	queueDepth.Set(float64(depth))

	select {
	case c.notify <- struct{}{}:
	default:
	}

	c.logger.Debug().
		Str("task_id", t.id).
		Str("endpoint", t.endpoint).
		Int("queue_depth", depth).
		Msg("Task enqueued")
}

func (c *Client) dequeue() *task {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return nil
	}
	t := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	queueDepth.Set(float64(len(c.queue)))
	return t
}

// Pending returns the number of tasks waiting for the worker.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Shutdown stops accepting tasks and lets the worker drain the queue until
// ctx ends. If the drain does not finish in time the in-flight request is
// cancelled, tasks still queued are abandoned without being resolved and
// ErrShutdownTimeout is returned. Shutdown is idempotent and safe to call
// concurrently with Enqueue.
func (c *Client) Shutdown(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.accepting = false
		pending := len(c.queue)
		c.mu.Unlock()
		close(c.closing)

		c.logger.Info().Int("pending", pending).Msg("Shutting down, draining queue")
	})

	select {
	case <-c.stopped:
		return nil
	default:
	}

	select {
	case <-c.stopped:
		return nil
	case <-ctx.Done():
	}

	// the worker may have finished while ctx expired
	select {
	case <-c.stopped:
		return nil
	default:
	}

	c.cancel()
	<-c.stopped

	abandoned := c.Pending()
	c.logger.Warn().
		Int("abandoned", abandoned).
		Msg("Shutdown timed out - remaining tasks abandoned")

	return ErrShutdownTimeout
}

// Close shuts down with the configured ShutdownTimeout.
func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.ShutdownTimeout)
	defer cancel()
	return c.Shutdown(ctx)
}

// RateLimit exposes the rate limit tracker for diagnostics.
func (c *Client) RateLimit() *ratelimit.Tracker {
	return c.tracker
}

// Tokens returns the token pool, or nil when rotation is off.
func (c *Client) Tokens() *tokenpool.Pool {
	if !c.cfg.UseRotatingTokens {
		return nil
	}
	return c.cfg.Tokens
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.httpClient = client
}
