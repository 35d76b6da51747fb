package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/internal/proxy"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
)

func newServeCmd(o *options) *cobra.Command {
	var (
		addr           string
		requestTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP proxy that queues requests through one client",
		Long: `Run an HTTP proxy in front of the IdleMMO API.

GET /v1/... is forwarded through the shared queue so several local tools
share one rate limit. /health and /metrics report the client state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, o)
			if err != nil {
				return err
			}
			defer a.Close()

			logger := logging.NewLogger("proxy")
			srv := proxy.New(a.client, proxy.Options{
				Addr:           addr,
				RequestTimeout: requestTimeout,
				Logger:         &logger,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().DurationVar(&requestTimeout, "request-timeout", proxy.DefaultRequestTimeout, "Maximum time a proxied request may wait in the queue")
	return cmd
}
