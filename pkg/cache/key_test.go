package cache

import "testing"

func TestCacheKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  CacheKey
		want string
	}{
		{
			name: "endpoint only",
			key:  CacheKey{Endpoint: "dungeons"},
			want: "idlemmo:cache:dungeons",
		},
		{
			name: "path params",
			key: CacheKey{
				Endpoint:   "character_view",
				PathParams: map[string]string{"hashed_character_id": "C1"},
			},
			want: "idlemmo:cache:character_view:hashed_character_id=C1",
		},
		{
			name: "query params sorted",
			key: CacheKey{
				Endpoint:    "items",
				QueryParams: map[string]string{"query": "ore", "page": "2"},
			},
			want: "idlemmo:cache:items:page=2:query=ore",
		},
		{
			name: "account scoped",
			key:  CacheKey{Endpoint: "authenticate", Account: "deadbeef"},
			want: "idlemmo:cache:authenticate:acct=deadbeef",
		},
		{
			name: "everything",
			key: CacheKey{
				Endpoint:    "/item_market_history/",
				PathParams:  map[string]string{"hashed_item_id": "x"},
				QueryParams: map[string]string{"type": "listings", "tier": "0"},
			},
			want: "idlemmo:cache:item_market_history:hashed_item_id=x:tier=0:type=listings",
		},
		{
			name: "empty",
			key:  CacheKey{},
			want: "idlemmo:cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("CacheKey.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheKey_Deterministic(t *testing.T) {
	key := CacheKey{
		Endpoint:    "items",
		QueryParams: map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"},
	}
	first := key.String()
	for i := 0; i < 100; i++ {
		if got := key.String(); got != first {
			t.Fatalf("CacheKey.String() not deterministic: %v != %v", got, first)
		}
	}
}
