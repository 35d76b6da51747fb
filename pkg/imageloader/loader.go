// Package imageloader downloads item and character images from the IdleMMO
// CDN, optionally asking the CDN for a resized rendition.
package imageloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Sternrassler/idlemmo-client/pkg/logging"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// Options configures a Loader. Zero values use the retryablehttp defaults.
type Options struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// UserAgent is sent with every download when set
	UserAgent string

	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Loader fetches images with retries on transient failures.
type Loader struct {
	http      *retryablehttp.Client
	userAgent string
	logger    zerolog.Logger
}

// New creates a Loader.
func New(opts Options) *Loader {
	logger := logging.NewLogger("imageloader")
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	rc := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		rc.HTTPClient = opts.HTTPClient
	}
	if opts.RetryMax > 0 {
		rc.RetryMax = opts.RetryMax
	}
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	rc.Logger = &retryLogger{logger: logger}

	return &Loader{http: rc, userAgent: opts.UserAgent, logger: logger}
}

// ResizedURL rewrites an image URL so the CDN serves it at width x height.
// URLs without the "//uploaded" marker are returned unchanged.
func ResizedURL(url string, width, height int) string {
	return strings.ReplaceAll(url, "//uploaded", fmt.Sprintf("/height=%d,width=%d/uploaded", height, width))
}

// Download writes the image at url to w and returns the number of bytes
// copied.
func (l *Loader) Download(ctx context.Context, url string, w io.Writer) (int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: unexpected status %d", url, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", url, err)
	}
	return n, nil
}

// DownloadFile saves the image at url to path, replacing any existing file.
// The file is written next to path first so a failed download leaves the
// previous content in place.
func (l *Loader) DownloadFile(ctx context.Context, path, url string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".image-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := l.Download(ctx, url, tmp)
	if err != nil {
		tmp.Close()
		l.logger.Error().Err(err).Str("url", url).Msg("Failed to download image")
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	l.logger.Debug().Str("url", url).Str("path", path).Int64("bytes", n).Msg("Image saved")
	return nil
}

// DownloadResized saves a width x height rendition of the image at url.
func (l *Loader) DownloadResized(ctx context.Context, path, url string, width, height int) error {
	return l.DownloadFile(ctx, path, ResizedURL(url, width, height))
}

// retryLogger adapts zerolog to retryablehttp.LeveledLogger.
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
