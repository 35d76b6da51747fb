package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultRevalidateWindow is how long an expired entry is retained so it can
// be revalidated with a conditional request.
const DefaultRevalidateWindow = 10 * time.Minute

// Options tunes a Manager.
type Options struct {
	// DefaultTTL applies to responses without caching headers (0 = DefaultTTL)
	DefaultTTL time.Duration

	// RevalidateWindow keeps expired entries for conditional requests
	// (0 = DefaultRevalidateWindow)
	RevalidateWindow time.Duration
}

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis *redis.Client
	opts  Options
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client, opts Options) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.RevalidateWindow <= 0 {
		opts.RevalidateWindow = DefaultRevalidateWindow
	}
	return &Manager{
		redis: redisClient,
		opts:  opts,
	}
}

// DefaultTTL returns the TTL used for responses without caching headers.
func (m *Manager) DefaultTTL() time.Duration {
	return m.opts.DefaultTTL
}

// Get retrieves a fresh cache entry by key.
// Returns ErrCacheMiss if the key doesn't exist or the entry has expired.
func (m *Manager) Get(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	entry, err := m.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if entry.IsExpired() {
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	return entry, nil
}

// Lookup retrieves an entry whether or not it has expired. Callers use
// stale entries to build conditional requests.
func (m *Manager) Lookup(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	return &entry, nil
}

// Set stores a cache entry. Redis keeps it until Expires plus the
// revalidation window.
func (m *Manager) Set(ctx context.Context, key CacheKey, entry *CacheEntry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL() + m.opts.RevalidateWindow
	if entry.ETag == "" && entry.LastModified.IsZero() {
		// nothing to revalidate with
		ttl = entry.TTL()
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(data)))

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key CacheKey) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// UpdateTTL updates the expiry of an existing entry, fresh or stale.
// This is used after a 304 Not Modified response.
func (m *Manager) UpdateTTL(ctx context.Context, key CacheKey, newExpires time.Time) error {
	entry, err := m.Lookup(ctx, key)
	if err != nil {
		return err
	}

	entry.Expires = newExpires

	return m.Set(ctx, key, entry)
}
