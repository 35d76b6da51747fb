package client

import (
	"context"
	"time"
)

// Attempt describes one HTTP exchange made by the worker.
type Attempt struct {
	TaskID      string
	Endpoint    string
	URL         string
	Status      int           // 0 when no response was received
	Token       string        // tokenpool.Fingerprint of the bearer token
	Attempt     int           // 1 for the first try, increments on rate limit retries
	Duration    time.Duration // time spent in the HTTP round trip
	RateLimited bool
	Err         string // transport error or error response body
	At          time.Time
}

// Recorder receives every Attempt. Implementations must be safe for use by
// the worker goroutine; errors are logged and otherwise ignored.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}
