// Package cache stores IdleMMO API responses in Redis.
//
// Entries are keyed by endpoint, path parameters and query parameters, and
// expire according to the response's Cache-Control max-age or Expires header,
// falling back to a configured default TTL. Expired entries are kept for a
// short revalidation window so a later request can send If-None-Match and
// reuse the stored body on 304 Not Modified.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient, cache.Options{DefaultTTL: time.Minute})
//
//	key := cache.CacheKey{
//		Endpoint:   "item_inspection",
//		PathParams: map[string]string{"hashed_item_id": "abc"},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API
//	}
//
// # Metrics
//
//   - idlemmo_cache_hits_total{layer="redis"}
//   - idlemmo_cache_misses_total
//   - idlemmo_cache_size_bytes{layer="redis"}
//   - idlemmo_304_responses_total
//   - idlemmo_cache_errors_total{operation}
package cache
