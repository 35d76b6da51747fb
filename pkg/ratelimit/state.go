// Package ratelimit tracks the IdleMMO request quota window.
// It reads the X-RateLimit-Remaining and X-RateLimit-Reset response headers
// and suspends callers until the server-reported reset instant has passed.
package ratelimit

import (
	"time"
)

// Response headers carrying rate limit information.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Redis keys for shared window storage.
const (
	RedisKeyResetAt    = "idlemmo:rate_limit:reset_at_ms"
	RedisKeyRemaining  = "idlemmo:rate_limit:remaining"
	RedisKeyLastUpdate = "idlemmo:rate_limit:last_update_ms"
)

// ResetMargin is added to the server-reported reset instant before requests
// resume.
const ResetMargin = time.Second

// RemainingUnknown marks a window whose quota has not been observed yet.
const RemainingUnknown = -1

// Window is the current rate limit state.
type Window struct {
	// ResetAt is the instant before which no request may be issued.
	// The zero value means requests are allowed immediately.
	ResetAt time.Time `json:"reset_at"`

	// Remaining is the last observed X-RateLimit-Remaining value,
	// or RemainingUnknown.
	Remaining int `json:"remaining"`

	// LastUpdate is when the window was last written.
	LastUpdate time.Time `json:"last_update"`
}

// Active reports whether requests must still wait at now.
func (w Window) Active(now time.Time) bool {
	return now.Before(w.ResetAt)
}

// TimeUntilReset returns the remaining wait, or 0 if the window has passed.
func (w Window) TimeUntilReset() time.Duration {
	d := time.Until(w.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// IsStale returns true if the window was last written more than maxAge ago.
func (w Window) IsStale(maxAge time.Duration) bool {
	return time.Since(w.LastUpdate) > maxAge
}

// Signal is what a single response said about the quota.
type Signal struct {
	// Limited is true when the request must be retried after the window.
	Limited bool

	// Remaining is the parsed X-RateLimit-Remaining value when HasRemaining.
	Remaining    int
	HasRemaining bool

	// ResetAt is the parsed X-RateLimit-Reset instant (without margin) when HasReset.
	ResetAt  time.Time
	HasReset bool
}
