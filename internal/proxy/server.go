// Package proxy serves a local read-through HTTP front for the IdleMMO API.
// Requests to /v1/... are matched against the known endpoints and executed
// through the shared client, so every local consumer shares one queue, one
// rate limit window and one token pool.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/client"
	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/Sternrassler/idlemmo-client/pkg/metrics"
	"github.com/Sternrassler/idlemmo-client/pkg/tokenpool"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var proxyRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "idlemmo_proxy_requests_total",
	Help: "Total proxy requests by endpoint and response code",
}, []string{"endpoint", "code"})

// DefaultRequestTimeout bounds how long a proxied request waits for its
// result, including time spent queued behind a rate limit window.
const DefaultRequestTimeout = 2 * time.Minute

// Options configures a Server.
type Options struct {
	Addr           string // listen address (default ":8080")
	RequestTimeout time.Duration
	Logger         *zerolog.Logger
}

// Server is the proxy HTTP server.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	client  *client.Client
	timeout time.Duration
	addr    string
	logger  zerolog.Logger
}

// New creates a server backed by c.
func New(c *client.Client, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = ":8080"
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := logging.NewLogger("proxy")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		router:  r,
		client:  c,
		timeout: opts.RequestTimeout,
		addr:    opts.Addr,
		logger:  logger,
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
	})
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", metrics.Handler().ServeHTTP)
	r.Get("/v1/*", s.handleAPI)

	return s
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info().Str("addr", s.addr).Msg("Starting proxy server")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Info().Msg("Shutting down proxy server")
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status    string          `json:"status"`
	Pending   int             `json:"pending"`
	RateLimit rateLimitHealth `json:"rate_limit"`
	Tokens    []tokenHealth   `json:"tokens,omitempty"`
}

type rateLimitHealth struct {
	Blocked     bool      `json:"blocked"`
	WaitSeconds float64   `json:"wait_seconds"`
	Remaining   int       `json:"remaining"`
	ResetAt     time.Time `json:"reset_at,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type tokenHealth struct {
	Fingerprint string `json:"fingerprint"`
	Remaining   int    `json:"remaining"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Pending: s.client.Pending()}
	code := http.StatusOK

	win, err := s.client.RateLimit().Window(r.Context())
	if err != nil {
		resp.Status = "degraded"
		resp.RateLimit.Error = err.Error()
		code = http.StatusServiceUnavailable
	} else {
		wait := win.TimeUntilReset()
		resp.RateLimit = rateLimitHealth{
			Blocked:     wait > 0,
			WaitSeconds: wait.Seconds(),
			Remaining:   win.Remaining,
			ResetAt:     win.ResetAt,
		}
	}

	if pool := s.client.Tokens(); pool != nil {
		for _, e := range pool.Snapshot() {
			resp.Tokens = append(resp.Tokens, tokenHealth{
				Fingerprint: tokenpool.Fingerprint(e.Token),
				Remaining:   e.Remaining,
			})
		}
	}

	writeJSON(w, code, resp)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	e, params, ok := endpoint.Match("/" + chi.URLParam(r, "*"))
	if !ok {
		proxyRequestsTotal.WithLabelValues("unknown", "404").Inc()
		writeError(w, http.StatusNotFound, "unknown_endpoint", "No IdleMMO endpoint matches "+r.URL.Path)
		return
	}

	query := make(map[string]string)
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	future := client.Enqueue[json.RawMessage](s.client, client.Request{Endpoint: e, PathParams: params, Query: query})
	resp, err := future.Await(ctx)
	if err != nil {
		s.logger.Warn().Str("task_id", future.ID()).Str("endpoint", e.Name).Msg("Proxy request timed out waiting for result")
		proxyRequestsTotal.WithLabelValues(e.Name, "504").Inc()
		writeError(w, http.StatusGatewayTimeout, "timeout", "Timed out waiting for the request queue")
		return
	}

	switch res := resp.(type) {
	case *client.Success[json.RawMessage]:
		proxyRequestsTotal.WithLabelValues(e.Name, strconv.Itoa(int(res.Code))).Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(res.Code))
		w.Write(res.Payload)

	case *client.Failure[json.RawMessage]:
		code := int(res.Code)
		proxyRequestsTotal.WithLabelValues(e.Name, strconv.Itoa(code)).Inc()
		switch res.Class {
		case client.ErrorClassClient, client.ErrorClassServer:
			// upstream error body is passed through untouched
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			w.Write([]byte(res.Detail))
		default:
			writeError(w, code, string(res.Class), res.Detail)
		}
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, kind, message string) {
	writeJSON(w, code, errorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs one line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("Request handled")
		})
	}
}
