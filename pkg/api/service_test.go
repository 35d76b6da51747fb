package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Sternrassler/idlemmo-client/internal/testutil"
	"github.com/Sternrassler/idlemmo-client/pkg/client"
	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/Sternrassler/idlemmo-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, mock *testutil.MockAPI) *Service {
	t.Helper()

	logger := zerolog.Nop()
	cfg := client.DefaultConfig("TestApp", "1.0.0", "test@example.com", "test-key")
	cfg.BaseURL = mock.URL() + "/v1"
	cfg.PollInterval = 10 * time.Millisecond
	cfg.Logger = &logger

	c, err := client.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return New(c)
}

func TestService_RequestShapes(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	svc := newService(t, mock)
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() error
		wantPath  string
		wantQuery string
	}{
		{"authentication", func() error { _, err := svc.Authentication(ctx); return err }, "/v1/auth/check", ""},
		{"world bosses", func() error { _, err := svc.WorldBosses(ctx); return err }, "/v1/combat/world_bosses/list", ""},
		{"dungeons", func() error { _, err := svc.Dungeons(ctx); return err }, "/v1/combat/dungeons/list", ""},
		{"enemies", func() error { _, err := svc.Enemies(ctx); return err }, "/v1/combat/enemies/list", ""},
		{"search by query", func() error { _, err := svc.SearchItems(ctx, ItemSearch{Query: "iron ore"}); return err }, "/v1/item/search", "query=iron+ore"},
		{"search by type and page", func() error {
			_, err := svc.SearchItems(ctx, ItemSearch{Type: model.ItemType("FISHING_ROD"), Page: 2})
			return err
		}, "/v1/item/search", "page=2&type=fishing_rod"},
		{"inspect item", func() error { _, err := svc.InspectItem(ctx, "abc123"); return err }, "/v1/item/abc123/inspect", ""},
		{"market listings", func() error { _, err := svc.MarketListingHistory(ctx, "abc123"); return err }, "/v1/item/abc123/market-history", "tier=0&type=listings"},
		{"market orders tier", func() error {
			_, err := svc.MarketHistory(ctx, "abc123", MarketHistoryOptions{Tier: 3, Type: model.MarketOrders})
			return err
		}, "/v1/item/abc123/market-history", "tier=3&type=orders"},
		{"market orders shortcut", func() error { _, err := svc.MarketOrderHistory(ctx, "abc123"); return err }, "/v1/item/abc123/market-history", "tier=0&type=orders"},
		{"character", func() error { _, err := svc.Character(ctx, "char1"); return err }, "/v1/character/char1/information", ""},
		{"metrics", func() error { _, err := svc.CharacterMetrics(ctx, "char1"); return err }, "/v1/character/char1/metrics", ""},
		{"effects", func() error { _, err := svc.CharacterEffects(ctx, "char1"); return err }, "/v1/character/char1/effects", ""},
		{"alts", func() error { _, err := svc.CharacterAlts(ctx, "char1"); return err }, "/v1/character/char1/characters", ""},
		{"museum", func() error { _, err := svc.CharacterMuseum(ctx, "char1", MuseumOptions{}); return err }, "/v1/character/char1/museum", ""},
		{"museum category page", func() error {
			_, err := svc.CharacterMuseum(ctx, "char1", MuseumOptions{Category: model.MuseumPets, Page: 4})
			return err
		}, "/v1/character/char1/museum", "category=PETS&page=4"},
		{"action", func() error { _, err := svc.CharacterAction(ctx, "char1"); return err }, "/v1/character/char1/current-action", ""},
		{"pets", func() error { _, err := svc.CharacterPets(ctx, "char1"); return err }, "/v1/character/char1/pets", ""},
		{"guild", func() error { _, err := svc.Guild(ctx, 42); return err }, "/v1/guild/42/information", ""},
		{"current conquest", func() error { _, err := svc.GuildConquest(ctx, 0); return err }, "/v1/guild/conquest/view", ""},
		{"conquest season", func() error { _, err := svc.GuildConquest(ctx, 7); return err }, "/v1/guild/conquest/view", "season_number=7"},
		{"zone", func() error { _, err := svc.ConquestZone(ctx, model.ZoneEldoria, 0); return err }, "/v1/guild/conquest/zone/3/inspect", ""},
		{"zone season", func() error { _, err := svc.ConquestZone(ctx, model.ZoneTheCitadel, 2); return err }, "/v1/guild/conquest/zone/10/inspect", "season_number=2"},
		{"shrine", func() error { _, err := svc.Shrine(ctx); return err }, "/v1/shrine/progress", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.Reset()

			require.NoError(t, tt.call())

			calls := mock.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantPath, calls[0].Path)
			assert.Equal(t, tt.wantQuery, calls[0].RawQuery)
		})
	}
}

func TestService_DecodesPayload(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/shrine/progress", testutil.NewHealthyResponse(`{
		"progress": [{"id": 1, "tier": {"key": "T1", "name": "Tier 1"}, "current_value": 50,
		"target_value": 100, "percentage": 50.0, "is_active": true}]
	}`))
	svc := newService(t, mock)

	info, err := svc.Shrine(context.Background())
	require.NoError(t, err)
	require.Len(t, info.Progress, 1)
	assert.Equal(t, "Tier 1", info.Progress[0].Tier.Name)
	assert.True(t, info.Progress[0].Active)
	assert.Equal(t, int64(100), info.Progress[0].TargetValue)
}

func TestService_AsyncReturnsFailure(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/item/missing/inspect", testutil.NewErrorResponse(http.StatusNotFound, "not found"))
	svc := newService(t, mock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := svc.InspectItemAsync("missing").Await(ctx)
	require.NoError(t, err)

	failure, ok := resp.(*client.Failure[model.ItemInspection])
	require.True(t, ok, "response = %T", resp)
	assert.Equal(t, client.StatusNotFound, failure.Code)
	assert.Equal(t, "not found", failure.Detail)
}

func TestService_ItemSearchPages(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler("/v1/item/search", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		w.Header().Set("X-RateLimit-Remaining", "19")
		w.Write([]byte(`{"items": [{"hashed_id": "p` + page + `", "name": "Item ` + page + `"}],
			"pagination": {"current_page": ` + page + `, "last_page": 3, "per_page": 1, "total": 3}}`))
	})
	svc := newService(t, mock)

	fetcher := pagination.NewBatchFetcher[[]model.Item](svc.ItemSearchPages(ItemSearch{Query: "ore"}), pagination.DefaultConfig())
	pages, err := fetcher.FetchAllPages(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, page := range pagination.Ordered(pages) {
		for _, it := range page {
			ids = append(ids, it.HashedID)
		}
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
	assert.Equal(t, 3, mock.RequestCount())
}

func TestService_CheckScopes(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/auth/check", testutil.NewHealthyResponse(`{
		"authenticated": true,
		"api_key": {"name": "bot", "rate_limit": 20, "scopes": ["v1.item.search", "v1.shrine.progress"]}
	}`))
	svc := newService(t, mock)

	missing, err := svc.CheckScopes(context.Background())
	require.NoError(t, err)

	names := map[string]bool{}
	for _, e := range missing {
		names[e.Name] = true
	}
	assert.False(t, names[endpoint.Items.Name])
	assert.False(t, names[endpoint.ShrineProgress.Name])
	assert.False(t, names[endpoint.Authenticate.Name])
	assert.True(t, names[endpoint.CharacterView.Name])
	assert.Len(t, missing, len(endpoint.All())-3)
}
