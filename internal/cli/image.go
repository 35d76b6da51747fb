package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/idlemmo-client/pkg/config"
	"github.com/Sternrassler/idlemmo-client/pkg/imageloader"
	"github.com/Sternrassler/idlemmo-client/pkg/logging"
)

func newImageCmd(o *options) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "image <image-url> <file>",
		Short: "Download an item, pet or character image",
		Long: `Download an image_url from an API response to a file.

With --width and --height the CDN is asked for a resized copy.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (width > 0) != (height > 0) {
				return fmt.Errorf("--width and --height must be set together")
			}

			logger := logging.NewLogger("imageloader")
			opts := imageloader.Options{Logger: &logger}
			// images need no API key, so a missing config is not an error here
			if cfg, err := config.Load(config.Options{Path: o.configPath}); err == nil {
				opts.UserAgent = cfg.UserAgent()
			}

			ctx, cancel := contextWithTimeout(cmd, o)
			defer cancel()

			loader := imageloader.New(opts)
			url, path := args[0], args[1]
			var err error
			if width > 0 {
				err = loader.DownloadResized(ctx, path, url, width, height)
			} else {
				err = loader.DownloadFile(ctx, path, url)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Resize to this width")
	cmd.Flags().IntVar(&height, "height", 0, "Resize to this height")
	return cmd
}
