package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestCacheEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{
			name:    "expired entry",
			expires: time.Now().Add(-1 * time.Hour),
			want:    true,
		},
		{
			name:    "valid entry",
			expires: time.Now().Add(1 * time.Hour),
			want:    false,
		},
		{
			name:    "just expired",
			expires: time.Now().Add(-1 * time.Second),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{
				Expires: tt.expires,
			}
			if got := entry.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheEntry_TTL(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		wantMin time.Duration
		wantMax time.Duration
	}{
		{
			name:    "one hour remaining",
			expires: time.Now().Add(1 * time.Hour),
			wantMin: 59 * time.Minute,
			wantMax: 61 * time.Minute,
		},
		{
			name:    "already expired",
			expires: time.Now().Add(-1 * time.Hour),
			wantMin: 0,
			wantMax: 0,
		},
		{
			name:    "5 minutes remaining",
			expires: time.Now().Add(5 * time.Minute),
			wantMin: 4*time.Minute + 59*time.Second,
			wantMax: 5*time.Minute + 1*time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &CacheEntry{
				Expires: tt.expires,
			}
			got := entry.TTL()
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("TTL() = %v, want between %v and %v", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestCacheEntry_Age(t *testing.T) {
	entry := &CacheEntry{CachedAt: time.Now().Add(-90 * time.Second)}
	if age := entry.Age(); age < 89*time.Second || age > 91*time.Second {
		t.Errorf("Age() = %v, want ~90s", age)
	}
}

func TestCacheEntry_RevalidationLifecycle(t *testing.T) {
	body := []byte(`{"item": {"hashed_id": "ore1", "name": "Iron Ore"}}`)
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header: http.Header{
			"Etag":                  []string{`"ore1-v1"`},
			"Cache-Control":         []string{"max-age=60"},
			"X-Ratelimit-Remaining": []string{"19"},
		},
	}

	entry := ResponseToEntry(resp, body, time.Minute)
	if entry.IsExpired() {
		t.Fatal("fresh entry reports expired")
	}
	if ttl := entry.TTL(); ttl < 59*time.Second || ttl > 60*time.Second {
		t.Errorf("TTL() = %v, want ~60s from max-age", ttl)
	}
	if entry.Age() > time.Second {
		t.Errorf("Age() = %v, want ~0", entry.Age())
	}

	// the window passes; the entry is stale but still carries its validator
	entry.Expires = time.Now().Add(-time.Second)
	entry.CachedAt = time.Now().Add(-61 * time.Second)
	if !entry.IsExpired() {
		t.Fatal("stale entry reports fresh")
	}
	if !ShouldMakeConditionalRequest(entry) {
		t.Fatal("stale entry with ETag must be revalidated")
	}

	req, _ := http.NewRequest(http.MethodGet, "https://api.idle-mmo.com/v1/item/ore1/inspect", nil)
	AddConditionalHeaders(req, entry)
	if got := req.Header.Get("If-None-Match"); got != `"ore1-v1"` {
		t.Errorf("If-None-Match = %q, want %q", got, `"ore1-v1"`)
	}

	Refresh(entry, http.Header{"Cache-Control": []string{"max-age=30"}}, time.Minute)
	if entry.IsExpired() {
		t.Error("refreshed entry still expired")
	}
	if ttl := entry.TTL(); ttl < 29*time.Second || ttl > 30*time.Second {
		t.Errorf("TTL() after refresh = %v, want ~30s", ttl)
	}
	if entry.Age() > time.Second {
		t.Errorf("Age() after refresh = %v, want reset to ~0", entry.Age())
	}
	if entry.ETag != `"ore1-v1"` {
		t.Errorf("ETag = %q, want it kept when the 304 carries none", entry.ETag)
	}
	if string(entry.Data) != string(body) {
		t.Error("Data changed on refresh")
	}
}
