// Package testutil provides a scriptable IdleMMO API server for tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Call is one request received by the mock.
type Call struct {
	Path          string
	RawQuery      string
	Authorization string
	UserAgent     string
	IfNoneMatch   string
	At            time.Time
}

// MockAPI is a configurable mock IdleMMO server.
type MockAPI struct {
	server    *httptest.Server
	mu        sync.RWMutex
	handlers  map[string]func(w http.ResponseWriter, r *http.Request)
	sequences map[string][]MockResponse
	calls     []Call
}

// NewMockAPI starts a mock server. Paths are matched without the /v1 prefix
// being special: register the full request path, e.g. "/v1/item/search".
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:  make(map[string]func(w http.ResponseWriter, r *http.Request)),
		sequences: make(map[string][]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.calls = append(mock.calls, Call{
			Path:          r.URL.Path,
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			UserAgent:     r.Header.Get("User-Agent"),
			IfNoneMatch:   r.Header.Get("If-None-Match"),
			At:            time.Now(),
		})

		// scripted sequences take precedence and are consumed in order
		if seq := mock.sequences[r.URL.Path]; len(seq) > 0 {
			resp := seq[0]
			if len(seq) > 1 {
				mock.sequences[r.URL.Path] = seq[1:]
			}
			mock.mu.Unlock()
			writeResponse(w, resp)
			return
		}

		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		writeResponse(w, NewHealthyResponse(`{"status": "ok"}`))
	}))

	return mock
}

// URL returns the mock server URL. Use it as the client base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears recorded calls.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence scripts successive responses for a path. The last response
// repeats once the others are consumed.
func (m *MockAPI) SetSequence(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[path] = responses
}

// Calls returns a copy of the recorded calls in arrival order.
func (m *MockAPI) Calls() []Call {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// RequestCount returns the number of requests made to the server.
func (m *MockAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// ConditionalCount returns the number of requests carrying If-None-Match.
func (m *MockAPI) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.calls {
		if c.IfNoneMatch != "" {
			n++
		}
	}
	return n
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewHealthyResponse creates a 200 OK response with a comfortable quota.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "19",
			"Content-Type":          "application/json",
		},
	}
}

// NewRemainingResponse creates a 200 OK response reporting remaining quota.
func NewRemainingResponse(data string, remaining int) MockResponse {
	resp := NewHealthyResponse(data)
	resp.Headers["X-RateLimit-Remaining"] = strconv.Itoa(remaining)
	return resp
}

// NewRateLimitResponse creates a 429 response whose window ends at reset.
func NewRateLimitResponse(reset time.Time) MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Too Many Attempts."}`,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "0",
			"X-RateLimit-Reset":     strconv.FormatInt(reset.Unix(), 10),
			"Content-Type":          "application/json",
		},
	}
}

// NewErrorResponse creates an error response with a plain body.
func NewErrorResponse(status int, body string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       body,
		Headers: map[string]string{
			"X-RateLimit-Remaining": "19",
		},
	}
}

// NewConditionalHandler creates a handler that answers 304 when the request
// carries etag, and a cacheable 200 otherwise.
func NewConditionalHandler(etag string, data string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "19")
		w.Header().Set("Content-Type", "application/json")

		if r.Header.Get("If-None-Match") == etag {
			w.Header().Set("Cache-Control", "max-age=60")
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "max-age=60")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(data))
	}
}
