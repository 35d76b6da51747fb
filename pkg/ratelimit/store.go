package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists the rate limit window. Extend must never move ResetAt
// backwards.
type Store interface {
	// Load returns the current window.
	Load(ctx context.Context) (Window, error)

	// Extend sets ResetAt to resetAt if it is later than the stored value
	// and returns the effective window.
	Extend(ctx context.Context, resetAt time.Time) (Window, error)

	// RecordRemaining stores the last observed remaining quota.
	RecordRemaining(ctx context.Context, remaining int) error
}

// MemoryStore keeps the window in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	window Window
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{window: Window{Remaining: RemainingUnknown}}
}

func (s *MemoryStore) Load(_ context.Context) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window, nil
}

func (s *MemoryStore) Extend(_ context.Context, resetAt time.Time) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resetAt.After(s.window.ResetAt) {
		s.window.ResetAt = resetAt
	}
	s.window.LastUpdate = time.Now()
	return s.window, nil
}

func (s *MemoryStore) RecordRemaining(_ context.Context, remaining int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window.Remaining = remaining
	s.window.LastUpdate = time.Now()
	return nil
}

// extendScript stores ARGV[1] (unix ms) in KEYS[1] only if it is greater than
// the current value, and returns the effective value.
var extendScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local proposed = tonumber(ARGV[1])
redis.call("SET", KEYS[2], ARGV[2])
if proposed > current then
	redis.call("SET", KEYS[1], ARGV[1])
	return proposed
end
return current
`)

// RedisStore shares the window between processes through Redis.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{redis: client}
}

func (s *RedisStore) Load(ctx context.Context) (Window, error) {
	pipe := s.redis.Pipeline()
	resetCmd := pipe.Get(ctx, RedisKeyResetAt)
	remainingCmd := pipe.Get(ctx, RedisKeyRemaining)
	updateCmd := pipe.Get(ctx, RedisKeyLastUpdate)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Window{}, fmt.Errorf("load rate limit window: %w", err)
	}

	w := Window{Remaining: RemainingUnknown}

	if ms, err := resetCmd.Int64(); err == nil {
		w.ResetAt = time.UnixMilli(ms)
	} else if !errors.Is(err, redis.Nil) {
		return Window{}, fmt.Errorf("get reset instant: %w", err)
	}

	if remaining, err := remainingCmd.Int(); err == nil {
		w.Remaining = remaining
	} else if !errors.Is(err, redis.Nil) {
		return Window{}, fmt.Errorf("get remaining: %w", err)
	}

	if ms, err := updateCmd.Int64(); err == nil {
		w.LastUpdate = time.UnixMilli(ms)
	} else if !errors.Is(err, redis.Nil) {
		return Window{}, fmt.Errorf("get last update: %w", err)
	}

	return w, nil
}

func (s *RedisStore) Extend(ctx context.Context, resetAt time.Time) (Window, error) {
	now := time.Now()
	res, err := extendScript.Run(ctx, s.redis,
		[]string{RedisKeyResetAt, RedisKeyLastUpdate},
		resetAt.UnixMilli(), now.UnixMilli(),
	).Int64()
	if err != nil {
		return Window{}, fmt.Errorf("extend rate limit window: %w", err)
	}

	w := Window{ResetAt: time.UnixMilli(res), Remaining: RemainingUnknown, LastUpdate: now}
	if v, err := s.redis.Get(ctx, RedisKeyRemaining).Result(); err == nil {
		if n, convErr := strconv.Atoi(v); convErr == nil {
			w.Remaining = n
		}
	}
	return w, nil
}

func (s *RedisStore) RecordRemaining(ctx context.Context, remaining int) error {
	pipe := s.redis.Pipeline()
	pipe.Set(ctx, RedisKeyRemaining, remaining, 0)
	pipe.Set(ctx, RedisKeyLastUpdate, time.Now().UnixMilli(), 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store remaining in redis: %w", err)
	}
	return nil
}
