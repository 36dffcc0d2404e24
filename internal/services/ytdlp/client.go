package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"podsink/internal/logging"
	"podsink/internal/services"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout, onStderr func(string)) error
}

// FetchOptions describes one download request.
type FetchOptions struct {
	// Format is the yt-dlp format selector, e.g. "m4a/bestaudio/best".
	Format string
	// OutputTemplate is the yt-dlp output filename template.
	OutputTemplate string
	// DownloadDir receives the finished file and the info JSON.
	DownloadDir string
	// SponsorBlockRemove lists segment categories to cut from the audio.
	SponsorBlockRemove []string
}

// Result reports a completed download.
type Result struct {
	// FilePath is the final audio file as printed by yt-dlp.
	FilePath string
	// InfoJSONPath is the sidecar metadata file used for enrichment. Empty
	// when yt-dlp did not produce one.
	InfoJSONPath string
	// Attempts is how many tool invocations the download took.
	Attempts int
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithBackoff overrides the initial retry delay.
func WithBackoff(initial time.Duration) Option {
	return func(c *Client) {
		c.initialBackoff = initial
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary         string
	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	exec           Executor
	logger         *slog.Logger
}

// New constructs a yt-dlp client. maxAttempts bounds in-process retries of
// transient failures; permanent failures are never retried.
func New(binary string, timeoutSeconds, maxAttempts, initialBackoffSeconds int, logger *slog.Logger, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		binary:         binary,
		timeout:        time.Duration(timeoutSeconds) * time.Second,
		maxAttempts:    maxAttempts,
		initialBackoff: time.Duration(initialBackoffSeconds) * time.Second,
		exec:           commandExecutor{},
		logger:         logger,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch downloads the audio for videoID. Errors come back tagged as
// services.ErrPermanent or services.ErrTransient.
func (c *Client) Fetch(ctx context.Context, videoID string, opts FetchOptions) (Result, error) {
	if videoID == "" {
		return Result{}, services.Wrap(services.ErrPermanent, "yt-dlp", "video id required", nil)
	}
	if opts.DownloadDir == "" {
		return Result{}, services.Wrap(services.ErrConfiguration, "yt-dlp", "download directory required", nil)
	}
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "yt-dlp", "create download directory", err)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		result, err := c.fetchOnce(ctx, videoID, opts)
		if err == nil {
			result.Attempts = attempt
			return result, nil
		}
		lastErr = err

		if services.IsPermanent(err) || ctx.Err() != nil {
			return Result{}, err
		}
		if attempt == c.maxAttempts {
			break
		}

		delay := c.initialBackoff << (attempt - 1)
		c.logger.Warn("download failed, retrying",
			logging.FieldVideoID, videoID,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"backoff", delay.String(),
			logging.Error(err))
		select {
		case <-ctx.Done():
			return Result{}, services.Wrap(services.ErrTransient, "yt-dlp", "download interrupted", ctx.Err())
		case <-time.After(delay):
		}
	}
	return Result{}, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, videoID string, opts FetchOptions) (Result, error) {
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := c.buildArgs(videoID, opts)

	var stdout, stderr []string
	err := c.exec.Run(runCtx, c.binary, args,
		func(line string) { stdout = append(stdout, line) },
		func(line string) { stderr = append(stderr, line) },
	)
	if err != nil {
		return Result{}, classify("download", err, stderr)
	}

	filePath := lastNonEmpty(stdout)
	if filePath == "" {
		return Result{}, services.Wrap(services.ErrTransient, "yt-dlp", "download produced no file path", nil)
	}
	if _, err := os.Stat(filePath); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "yt-dlp", fmt.Sprintf("reported file missing: %s", filePath), err)
	}

	return Result{FilePath: filePath, InfoJSONPath: findInfoJSON(filePath)}, nil
}

func (c *Client) buildArgs(videoID string, opts FetchOptions) []string {
	format := opts.Format
	if format == "" {
		format = "bestaudio/best"
	}
	template := opts.OutputTemplate
	if template == "" {
		template = "%(title)s.%(ext)s"
	}

	args := []string{
		"--no-simulate",
		"--print", "after_move:filepath",
		"--no-progress",
		"--no-warnings",
		"--format", format,
		"--output", template,
		"--paths", "home:" + opts.DownloadDir,
		"--embed-metadata",
		"--write-info-json",
	}
	if len(opts.SponsorBlockRemove) > 0 {
		args = append(args, "--sponsorblock-remove", strings.Join(opts.SponsorBlockRemove, ","))
	}
	return append(args, watchURLPrefix+videoID)
}

// findInfoJSON locates the sidecar yt-dlp writes next to the audio file.
func findInfoJSON(audioPath string) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	candidate := base + ".info.json"
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
