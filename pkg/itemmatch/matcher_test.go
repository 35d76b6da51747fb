package itemmatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/idlemmo-client/internal/testutil"
	"github.com/Sternrassler/idlemmo-client/pkg/api"
	"github.com/Sternrassler/idlemmo-client/pkg/client"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var names = []string{"Iron Ore", "Iron Bar", "Copper Ore", "Golden Sword", "Healing Potion"}

func TestBestMatch(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"iron ore", "Iron Ore"},
		{"Iron Br", "Iron Bar"},
		{"coper ore", "Copper Ore"},
		{"golden swrod", "Golden Sword"},
		{"heal pot", "Healing Potion"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, ok := BestMatch(tt.target, names)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := BestMatch("anything", nil)
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("Iron Ore", "iron ore"), 1e-9)
	assert.Greater(t, Similarity("Iron Ore", "Iron Bar"), Similarity("Iron Ore", "Healing Potion"))
}

func TestMatcher_Top(t *testing.T) {
	m := New(names, zerolog.Nop())

	top := m.Top("iron", 2)
	require.Len(t, top, 2)
	assert.True(t, strings.HasPrefix(top[0].Name, "Iron"))
	assert.True(t, strings.HasPrefix(top[1].Name, "Iron"))
	assert.GreaterOrEqual(t, top[0].Score, top[1].Score)

	assert.Len(t, m.Top("iron", 100), len(names))
}

func TestMatcher_LoadAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("Iron Ore\n\n  \nCopper Ore\n"), 0o644))

	m, err := Load(path, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"Iron Ore", "Copper Ore"}, m.Names())

	out := filepath.Join(dir, "out.txt")
	require.NoError(t, m.Save(out))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Iron Ore\nCopper Ore\n", string(data))

	empty, err := Load(filepath.Join(dir, "missing.txt"), zerolog.Nop())
	assert.Error(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Len())
	_, ok := empty.Best("iron")
	assert.False(t, ok)
}

func TestMatcher_Refresh(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler("/v1/item/search", func(w http.ResponseWriter, r *http.Request) {
		itemType := r.URL.Query().Get("type")
		page := r.URL.Query().Get("page")
		w.Header().Set("X-RateLimit-Remaining", "19")
		fmt.Fprintf(w, `{"items": [{"hashed_id": "%[1]s-%[2]s", "name": "%[1]s item %[2]s"}, {"hashed_id": "shared", "name": "Shared"}],
			"pagination": {"current_page": %[2]s, "last_page": 2, "per_page": 2, "total": 4}}`, itemType, page)
	})

	logger := zerolog.Nop()
	cfg := client.DefaultConfig("TestApp", "1.0.0", "test@example.com", "test-key")
	cfg.BaseURL = mock.URL() + "/v1"
	cfg.PollInterval = 10 * time.Millisecond
	cfg.Logger = &logger
	c, err := client.New(cfg)
	require.NoError(t, err)
	defer c.Close()

	m := New([]string{"stale"}, zerolog.Nop())
	n, err := m.Refresh(context.Background(), api.New(c), model.ItemOre, model.ItemFish)
	require.NoError(t, err)

	assert.Equal(t, 5, n)
	assert.Equal(t, []string{"Shared", "fish item 1", "fish item 2", "ore item 1", "ore item 2"}, m.Names())
	assert.Equal(t, 4, mock.RequestCount())
}

func TestMatcher_RefreshFailureKeepsNames(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/v1/item/search", testutil.NewErrorResponse(http.StatusForbidden, "missing scope"))

	logger := zerolog.Nop()
	cfg := client.DefaultConfig("TestApp", "1.0.0", "test@example.com", "test-key")
	cfg.BaseURL = mock.URL() + "/v1"
	cfg.PollInterval = 10 * time.Millisecond
	cfg.Logger = &logger
	c, err := client.New(cfg)
	require.NoError(t, err)
	defer c.Close()

	m := New([]string{"Iron Ore"}, zerolog.Nop())
	_, err = m.Refresh(context.Background(), api.New(c), model.ItemOre)
	require.Error(t, err)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, client.StatusForbidden, apiErr.Status)
	assert.Equal(t, []string{"Iron Ore"}, m.Names())
}
