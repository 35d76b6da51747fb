package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	path := writeFile(t, DefaultFile, `# comment
API_KEY=secret
APPLICATION_NAME=IdleTracker
APPLICATION_VERSION=1.2.0
CONTACT_EMAIL=me@example.com
USE_ROTATING_TOKENS=true
REQUESTS_PER_SECOND=2.5
CACHE_TTL=90s
LOG_LEVEL=debug
LOG_PRETTY=true
`)
	t.Setenv("API_KEY", "from-env")

	cfg, err := Load(Options{Path: path, Logger: nopLogger()})
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.APIKey, "file wins over environment")
	assert.Equal(t, "IdleTracker", cfg.ApplicationName)
	assert.Equal(t, "1.2.0", cfg.ApplicationVersion)
	assert.Equal(t, "me@example.com", cfg.ContactEmail)
	assert.True(t, cfg.UseRotatingTokens)
	assert.Equal(t, 2.5, cfg.RequestsPerSecond)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, DefaultTokenFile, cfg.TokenFile)
	assert.Equal(t, endpoint.BaseURL, cfg.BaseURL)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_FromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	t.Setenv("API_KEY", "env-key")
	t.Setenv("APPLICATION_NAME", "EnvApp")
	t.Setenv("APPLICATION_VERSION", "0.1")
	t.Setenv("CONTACT_EMAIL", "env@example.com")
	t.Setenv("TOKEN_FILE", "/tmp/tokens.txt")

	cfg, err := Load(Options{Path: path, Logger: nopLogger()})
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "EnvApp", cfg.ApplicationName)
	assert.Equal(t, "/tmp/tokens.txt", cfg.TokenFile)
	assert.Equal(t, SourceEnvironment, cfg.Source)
	assert.Equal(t, "info", cfg.LogLevel)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "template written without WriteTemplate")
}

func TestLoad_WritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	t.Setenv("API_KEY", "env-key")
	t.Setenv("APPLICATION_NAME", "EnvApp")
	t.Setenv("APPLICATION_VERSION", "0.1")
	t.Setenv("CONTACT_EMAIL", "env@example.com")

	cfg, err := Load(Options{Path: path, WriteTemplate: true, Logger: nopLogger()})
	require.NoError(t, err)
	assert.Equal(t, SourceEnvironment, cfg.Source)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range Keys {
		assert.Contains(t, string(data), key+"=")
	}

	// the template now shadows the environment and lacks the essentials
	_, err = Load(Options{Path: path, Logger: nopLogger()})
	assert.ErrorIs(t, err, ErrMissingEssentials)
}

func TestLoad_MissingEssentials(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing []string
	}{
		{
			name:    "empty file",
			content: "",
			missing: []string{"APPLICATION_NAME", "APPLICATION_VERSION", "CONTACT_EMAIL", "API_KEY"},
		},
		{
			name:    "blank values",
			content: "APPLICATION_NAME=\nAPPLICATION_VERSION=1\nCONTACT_EMAIL=a@b.c\nAPI_KEY=k\n",
			missing: []string{"APPLICATION_NAME"},
		},
		{
			name:    "rotation replaces api key",
			content: "APPLICATION_NAME=a\nAPPLICATION_VERSION=1\nCONTACT_EMAIL=a@b.c\nUSE_ROTATING_TOKENS=true\n",
			missing: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "cfg.properties", tt.content)

			_, err := Load(Options{Path: path, Logger: nopLogger()})
			if tt.missing == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingEssentials))
			for _, key := range tt.missing {
				assert.Contains(t, err.Error(), key)
			}
		})
	}
}

func TestValidate_Invalid(t *testing.T) {
	base := Config{APIKey: "k", ApplicationName: "a", ApplicationVersion: "1", ContactEmail: "e"}

	negative := base
	negative.RequestsPerSecond = -1
	assert.ErrorContains(t, negative.Validate(), "REQUESTS_PER_SECOND")

	level := base
	level.LogLevel = "loud"
	assert.ErrorContains(t, level.Validate(), "LOG_LEVEL")

	assert.NoError(t, base.Validate())
}

func TestWriteTemplate_Overwrite(t *testing.T) {
	path := writeFile(t, DefaultFile, "API_KEY=keep\n")

	err := WriteTemplate(path, false)
	assert.ErrorContains(t, err, "already exists")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "API_KEY=keep\n", string(data))

	require.NoError(t, WriteTemplate(path, true))
	data, _ = os.ReadFile(path)
	assert.True(t, strings.HasPrefix(string(data), "# IdleMMO client configuration"))
}

func TestConfig_UserAgentAndLogging(t *testing.T) {
	cfg := Config{ApplicationName: "IdleTracker", ApplicationVersion: "1.2.0", ContactEmail: "me@example.com", LogLevel: "warn"}

	assert.Equal(t, "IdleTracker/1.2.0 (Contact: me@example.com)", cfg.UserAgent())

	lc := cfg.Logging()
	assert.Equal(t, logging.LevelWarn, lc.Level)
	assert.Equal(t, "IdleTracker/1.2.0", lc.Application)
}

func TestConfig_BuildTokenPool(t *testing.T) {
	tokens := writeFile(t, DefaultTokenFile, "tok-a\n\ntok-b\n")

	off := Config{TokenFile: tokens}
	assert.Nil(t, off.BuildTokenPool(zerolog.Nop()))

	on := Config{UseRotatingTokens: true, TokenFile: tokens}
	pool := on.BuildTokenPool(zerolog.Nop())
	require.NotNil(t, pool)
	assert.Equal(t, 2, pool.Len())

	missing := Config{UseRotatingTokens: true, TokenFile: filepath.Join(t.TempDir(), "none.txt")}
	pool = missing.BuildTokenPool(zerolog.Nop())
	require.NotNil(t, pool)
	assert.Equal(t, 0, pool.Len())
}

func TestConfig_ClientConfig(t *testing.T) {
	cfg := Config{
		APIKey:             "k",
		ApplicationName:    "a",
		ApplicationVersion: "1",
		ContactEmail:       "e",
		BaseURL:            "http://localhost:9999/v1",
		RequestsPerSecond:  3,
	}

	cc := cfg.ClientConfig(zerolog.Nop())
	assert.Equal(t, "k", cc.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", cc.BaseURL)
	assert.Equal(t, 3.0, cc.RequestsPerSecond)
	assert.Equal(t, cfg.UserAgent(), cc.UserAgent())
	assert.Nil(t, cc.Tokens)
}

func TestConfig_OpenRedis(t *testing.T) {
	ctx := context.Background()

	none := Config{}
	rdb, err := none.OpenRedis(ctx)
	assert.NoError(t, err)
	assert.Nil(t, rdb)

	mr := miniredis.RunT(t)
	cfg := Config{RedisURL: "redis://" + mr.Addr() + "/0"}
	rdb, err = cfg.OpenRedis(ctx)
	require.NoError(t, err)
	defer rdb.Close()
	assert.NoError(t, rdb.Set(ctx, "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	bad := Config{RedisURL: "not a url"}
	_, err = bad.OpenRedis(ctx)
	assert.ErrorContains(t, err, "REDIS_URL")
}
