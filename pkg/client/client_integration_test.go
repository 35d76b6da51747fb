//go:build integration

package client

import (
	"context"
	"testing"
	"time"

	"github.com/Sternrassler/idlemmo-client/internal/testutil"
	"github.com/Sternrassler/idlemmo-client/pkg/cache"
	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestIntegration_SharedRateLimitWindow(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()

	reset := time.Unix(time.Now().Unix()+1, 0)
	mock.SetSequence("/v1/shrine/progress",
		testutil.NewRateLimitResponse(reset),
		testutil.NewHealthyResponse(`{"name": "shrine"}`),
	)

	first := newTestClient(t, mock, func(cfg *Config) {
		cfg.RateLimitStore = ratelimit.NewRedisStore(redisClient)
	})
	second := newTestClient(t, mock, func(cfg *Config) {
		cfg.RateLimitStore = ratelimit.NewRedisStore(redisClient)
	})

	limited := Enqueue[payload](first, shrineRequest())

	// wait until the first client has seen the 429
	deadline := time.Now().Add(2 * time.Second)
	for mock.RequestCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	other := await(t, Enqueue[payload](second, Request{Endpoint: endpoint.Items}))
	if !other.OK() {
		t.Fatalf("second client response = %+v, want success", other)
	}
	if resp := await(t, limited); !resp.OK() {
		t.Fatalf("first client response = %+v, want success", resp)
	}

	earliest := reset.Add(ratelimit.ResetMargin)
	for i, call := range mock.Calls()[1:] {
		if call.At.Before(earliest) {
			t.Errorf("call %d (%s) at %v, want not before shared window %v", i+1, call.Path, call.At, earliest)
		}
	}
}

func TestIntegration_CacheAcrossClients(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetHandler("/v1/shrine/progress", testutil.NewConditionalHandler(`"v1"`, `{"name": "shrine"}`))

	manager := cache.NewManager(redisClient, cache.Options{})

	for i := 0; i < 2; i++ {
		c := newTestClient(t, mock, func(cfg *Config) {
			cfg.Cache = manager
		})
		got, err := Do[payload](context.Background(), c, shrineRequest())
		if err != nil {
			t.Fatalf("client %d Do() error = %v", i, err)
		}
		if got.Name != "shrine" {
			t.Errorf("client %d Name = %q, want %q", i, got.Name, "shrine")
		}
	}

	if mock.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1 (second client served from shared cache)", mock.RequestCount())
	}
}
