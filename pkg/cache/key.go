package cache

import (
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "idlemmo:cache"

// CacheKey identifies a cached API response.
type CacheKey struct {
	// Endpoint is the endpoint name (e.g. "item_inspection")
	Endpoint string

	// PathParams are the template substitutions (e.g. {"hashed_item_id": "abc"})
	PathParams map[string]string

	// QueryParams are the query string values (e.g. {"page": "2"})
	QueryParams map[string]string

	// Account is a token fingerprint for responses that differ per credential
	// (empty for public data)
	Account string
}

// String generates a deterministic cache key string.
// Format: idlemmo:cache:endpoint:param1=val1:query1=val1:acct=fingerprint
//
// Example:
//
//	idlemmo:cache:item_search:page=2:query=ore
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	parts = appendSorted(parts, k.PathParams)
	parts = appendSorted(parts, k.QueryParams)

	if k.Account != "" {
		parts = append(parts, "acct="+k.Account)
	}

	return strings.Join(parts, ":")
}

func appendSorted(parts []string, m map[string]string) []string {
	if len(m) == 0 {
		return parts
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", key, m[key]))
	}
	return parts
}
