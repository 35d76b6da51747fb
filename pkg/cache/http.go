package cache

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultTTL is the fallback TTL when the response carries no caching headers
	DefaultTTL = 5 * time.Minute
)

// ResponseToEntry builds a CacheEntry from a response whose body has already
// been read. defaultTTL applies when neither Cache-Control max-age nor
// Expires is present; pass 0 to use DefaultTTL.
func ResponseToEntry(resp *http.Response, body []byte, defaultTTL time.Duration) *CacheEntry {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}

	entry := &CacheEntry{
		Data:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		CachedAt:   time.Now(),
		Expires:    parseExpires(resp.Header, defaultTTL),
	}

	if lastModStr := resp.Header.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry
}

// Cacheable reports whether a response may be stored. Responses marked
// no-store or private are not.
func Cacheable(headers http.Header) bool {
	cc := strings.ToLower(headers.Get("Cache-Control"))
	return !strings.Contains(cc, "no-store") && !strings.Contains(cc, "private")
}

// parseExpires derives the expiry instant from Cache-Control max-age, then
// Expires, then defaultTTL.
func parseExpires(headers http.Header, defaultTTL time.Duration) time.Time {
	now := time.Now()

	if maxAge, ok := parseMaxAge(headers.Get("Cache-Control")); ok {
		return now.Add(maxAge)
	}

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return now.Add(defaultTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return now.Add(defaultTTL)
	}

	// Already expired - store as stale so it can still be revalidated
	if expires.Before(now) {
		return now
	}

	return expires
}

func parseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(strings.ToLower(directive))
		if !strings.HasPrefix(directive, "max-age=") {
			continue
		}
		secs, err := strconv.Atoi(strings.TrimPrefix(directive, "max-age="))
		if err != nil || secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// ShouldMakeConditionalRequest determines if we should add conditional
// request headers (If-None-Match or If-Modified-Since) based on the cache entry.
func ShouldMakeConditionalRequest(entry *CacheEntry) bool {
	if entry == nil {
		return false
	}
	return entry.ETag != "" || !entry.LastModified.IsZero()
}

// AddConditionalHeaders adds If-None-Match (ETag) or If-Modified-Since headers
// to the request if the cache entry supports conditional requests.
func AddConditionalHeaders(req *http.Request, entry *CacheEntry) {
	if entry == nil || req == nil {
		return
	}

	// Prefer ETag over Last-Modified
	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.Format(http.TimeFormat))
	}
}

// Refresh extends an entry after a 304 Not Modified using the new response's
// caching headers.
func Refresh(entry *CacheEntry, headers http.Header, defaultTTL time.Duration) {
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	entry.Expires = parseExpires(headers, defaultTTL)
	entry.CachedAt = time.Now()
	if etag := headers.Get("ETag"); etag != "" {
		entry.ETag = etag
	}
}
