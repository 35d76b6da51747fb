// Package cli provides the idlemmo command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/api"
	"github.com/Sternrassler/idlemmo-client/pkg/cache"
	"github.com/Sternrassler/idlemmo-client/pkg/client"
	"github.com/Sternrassler/idlemmo-client/pkg/config"
	"github.com/Sternrassler/idlemmo-client/pkg/journal"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/Sternrassler/idlemmo-client/pkg/model"
	"github.com/Sternrassler/idlemmo-client/pkg/ratelimit"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set by the main package.
var Version = "dev"

// options are the global flags shared by every command.
type options struct {
	configPath string
	verbose    bool
	json       bool
	timeout    time.Duration
}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "idlemmo",
		Short: "Query the IdleMMO public API",
		Long: `idlemmo ` + Version + `
Command-line access to the IdleMMO public API.

Every request goes through one queue that honours the API rate limit.
Settings are read from idlemmo-config.properties, or from environment
variables when the file does not exist (a template is written then).`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := logging.LevelWarn
			if o.verbose {
				level = logging.LevelDebug
			}
			logging.Setup(logging.Config{Level: level, Pretty: true, Output: cmd.ErrOrStderr()})
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", config.DefaultFile, "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&o.json, "json", false, "Print raw JSON instead of tables")
	rootCmd.PersistentFlags().DurationVar(&o.timeout, "timeout", 5*time.Minute, "Give up waiting for results after this long")

	rootCmd.AddCommand(
		newAuthCmd(o),
		newCharacterCmd(o),
		newItemCmd(o),
		newGuildCmd(o),
		newConquestCmd(o),
		newShrineCmd(o),
		newBossesCmd(o),
		newDungeonsCmd(o),
		newEnemiesCmd(o),
		newTokensCmd(o),
		newHistoryCmd(o),
		newMatchCmd(o),
		newImageCmd(o),
		newServeCmd(o),
		newConfigCmd(o),
	)

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// app bundles the collaborators a command needs to reach the API.
type app struct {
	cfg     *config.Config
	client  *client.Client
	svc     *api.Service
	redis   *redis.Client
	journal *journal.Journal
	logger  zerolog.Logger
}

// openApp loads the configuration and starts a client with the optional
// Redis and journal collaborators it names.
func openApp(cmd *cobra.Command, o *options) (*app, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger("cli")
	a := &app{cfg: cfg, logger: logger}

	cc := cfg.ClientConfig(logger)

	rdb, err := cfg.OpenRedis(cmd.Context())
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.redis = rdb
		cc.RateLimitStore = ratelimit.NewRedisStore(rdb)
		cc.Cache = cache.NewManager(rdb, cache.Options{DefaultTTL: cfg.CacheTTL})
	}

	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.journal = j
		cc.Recorder = j
	}

	c, err := client.New(cc)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	a.client = c
	a.svc = api.New(c)
	return a, nil
}

// Close drains the client before releasing its collaborators.
func (a *app) Close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Client shutdown incomplete")
		}
	}
	if a.journal != nil {
		a.journal.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

// loadConfig reads the configuration and applies its logging settings.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: o.configPath, WriteTemplate: true})
	if err != nil {
		return nil, err
	}
	lc := cfg.Logging()
	lc.Output = cmd.ErrOrStderr()
	if o.verbose {
		lc.Level = logging.LevelDebug
	}
	logging.Setup(lc)
	return cfg, nil
}

// withApp runs fn with a started app and a context bounded by --timeout.
func withApp(cmd *cobra.Command, o *options, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(cmd, o)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := contextWithTimeout(cmd, o)
	defer cancel()
	return fn(ctx, a)
}

func contextWithTimeout(cmd *cobra.Command, o *options) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

// print writes v as JSON when --json is set, otherwise renders the table
// built by fill.
func (o *options) print(out io.Writer, v any, fill func(t table.Writer)) error {
	if o.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	fill(t)
	t.Render()
	return nil
}

func fmtTime(ts model.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func fmtOptional(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}
