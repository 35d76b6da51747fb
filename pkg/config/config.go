// Package config loads the client settings from an idlemmo-config.properties
// file, or from environment variables when no file exists.
//
// The file holds KEY=VALUE lines and "#" comments:
//
//	API_KEY=...
//	APPLICATION_NAME=IdleTracker
//	APPLICATION_VERSION=1.2.0
//	CONTACT_EMAIL=me@example.com
//
// A file takes precedence over the environment as a whole; values are not
// merged between the two sources.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/client"
	"github.com/Sternrassler/idlemmo-client/pkg/endpoint"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/Sternrassler/idlemmo-client/pkg/tokenpool"
	"github.com/go-viper/mapstructure/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// DefaultFile is the configuration file looked up in the working directory.
	DefaultFile = "idlemmo-config.properties"

	// DefaultTokenFile holds one rotating API token per line.
	DefaultTokenFile = "idlemmo-tokens.txt"

	// SourceEnvironment is reported by Config.Source when no file was read.
	SourceEnvironment = "environment"
)

// ErrMissingEssentials is returned when a required key has no value.
var ErrMissingEssentials = errors.New("missing essential configuration")

// Keys lists every recognised key in template order.
var Keys = []string{
	"API_KEY",
	"APPLICATION_NAME",
	"APPLICATION_VERSION",
	"CONTACT_EMAIL",
	"USE_ROTATING_TOKENS",
	"TOKEN_FILE",
	"BASE_URL",
	"REQUESTS_PER_SECOND",
	"REDIS_URL",
	"CACHE_TTL",
	"JOURNAL_PATH",
	"LOG_LEVEL",
	"LOG_PRETTY",
}

// Config is the decoded configuration.
type Config struct {
	APIKey             string `mapstructure:"api_key"`
	ApplicationName    string `mapstructure:"application_name"`
	ApplicationVersion string `mapstructure:"application_version"`
	ContactEmail       string `mapstructure:"contact_email"`

	UseRotatingTokens bool   `mapstructure:"use_rotating_tokens"`
	TokenFile         string `mapstructure:"token_file"`

	BaseURL           string  `mapstructure:"base_url"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`

	// Optional collaborators, disabled when empty
	RedisURL    string        `mapstructure:"redis_url"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	JournalPath string        `mapstructure:"journal_path"`

	LogLevel  string `mapstructure:"log_level"`
	LogPretty bool   `mapstructure:"log_pretty"`

	// Source is the file that was read, or SourceEnvironment.
	Source string `mapstructure:"-"`
}

// Options controls Load.
type Options struct {
	// Path of the properties file (default DefaultFile)
	Path string

	// WriteTemplate creates a template at Path when the file does not exist.
	WriteTemplate bool

	Logger *zerolog.Logger
}

// Load reads the configuration and validates the essential keys.
func Load(opts Options) (*Config, error) {
	if opts.Path == "" {
		opts.Path = DefaultFile
	}
	logger := logging.NewLogger("config")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	v := viper.New()
	v.SetDefault("token_file", DefaultTokenFile)
	v.SetDefault("base_url", endpoint.BaseURL)
	v.SetDefault("log_level", string(logging.LevelInfo))
	v.SetDefault("use_rotating_tokens", false)
	v.SetDefault("log_pretty", false)
	v.SetDefault("requests_per_second", 0)

	source := opts.Path
	if _, err := os.Stat(opts.Path); err == nil {
		v.SetConfigFile(opts.Path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", opts.Path, err)
		}
		logger.Debug().Str("path", opts.Path).Msg("Using config file")
	} else {
		source = SourceEnvironment
		for _, key := range Keys {
			if err := v.BindEnv(strings.ToLower(key), key); err != nil {
				return nil, fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}
		if opts.WriteTemplate {
			if err := WriteTemplate(opts.Path, false); err != nil {
				logger.Warn().Err(err).Str("path", opts.Path).Msg("Failed to write config template")
			} else {
				logger.Info().Str("path", opts.Path).Msg("Config file not found, wrote template; using environment")
			}
		}
	}

	cfg, err := decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(settings map[string]any) (*Config, error) {
	// "KEY=" in a file means unset
	for k, val := range settings {
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			delete(settings, k)
		}
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.ApplicationName = strings.TrimSpace(cfg.ApplicationName)
	cfg.ApplicationVersion = strings.TrimSpace(cfg.ApplicationVersion)
	cfg.ContactEmail = strings.TrimSpace(cfg.ContactEmail)
	if cfg.TokenFile == "" {
		cfg.TokenFile = DefaultTokenFile
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = endpoint.BaseURL
	}
	return cfg, nil
}

// Validate checks the keys a client cannot start without.
func (c *Config) Validate() error {
	var missing []string
	if c.ApplicationName == "" {
		missing = append(missing, "APPLICATION_NAME")
	}
	if c.ApplicationVersion == "" {
		missing = append(missing, "APPLICATION_VERSION")
	}
	if c.ContactEmail == "" {
		missing = append(missing, "CONTACT_EMAIL")
	}
	if c.APIKey == "" && !c.UseRotatingTokens {
		missing = append(missing, "API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingEssentials, strings.Join(missing, ", "))
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("REQUESTS_PER_SECOND must be >= 0 (got %v)", c.RequestsPerSecond)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// UserAgent renders the User-Agent header value.
func (c *Config) UserAgent() string {
	return fmt.Sprintf("%s/%s (Contact: %s)", c.ApplicationName, c.ApplicationVersion, c.ContactEmail)
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		level = logging.LevelInfo
	}
	return logging.Config{
		Level:       level,
		Pretty:      c.LogPretty,
		Output:      os.Stderr,
		Application: c.ApplicationName + "/" + c.ApplicationVersion,
	}
}

// BuildTokenPool loads TokenFile into a new pool. It returns nil when
// rotation is off. A missing or empty token file is logged and yields an
// empty pool; requests then fall back to APIKey.
func (c *Config) BuildTokenPool(logger zerolog.Logger) *tokenpool.Pool {
	if !c.UseRotatingTokens {
		return nil
	}
	pool := tokenpool.New(logger)
	if _, err := pool.LoadFile(c.TokenFile); err != nil {
		logger.Warn().Err(err).Str("path", c.TokenFile).Msg("No rotating tokens loaded")
	}
	return pool
}

// OpenRedis connects to RedisURL. It returns nil, nil when no URL is set.
func (c *Config) OpenRedis(ctx context.Context) (*redis.Client, error) {
	if c.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(c.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// ClientConfig maps the settings onto a client.Config. Collaborators backed
// by Redis or SQLite are left for the caller to attach.
func (c *Config) ClientConfig(logger zerolog.Logger) client.Config {
	cfg := client.DefaultConfig(c.ApplicationName, c.ApplicationVersion, c.ContactEmail, c.APIKey)
	cfg.BaseURL = c.BaseURL
	cfg.RequestsPerSecond = c.RequestsPerSecond
	cfg.UseRotatingTokens = c.UseRotatingTokens
	cfg.Tokens = c.BuildTokenPool(logger)
	return cfg
}
