package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"podsink/internal/logging"
	"podsink/internal/services"
)

// Executor abstracts ffmpeg invocation for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Options selects which enrichment steps run.
type Options struct {
	EmbedChapters  bool
	EmbedThumbnail bool
}

// Chapter is a single chapter marker from the download metadata sidecar.
type Chapter struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Title     string  `json:"title"`
}

type infoJSON struct {
	Chapters []Chapter `json:"chapters"`
}

// Option configures the enricher.
type Option func(*Enricher)

// WithExecutor injects a custom ffmpeg executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Enricher) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithHTTPClient injects the client used for thumbnail downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Enricher) {
		if client != nil {
			e.http = client
		}
	}
}

// Enricher post-processes downloaded audio files.
type Enricher struct {
	binary        string
	timeout       time.Duration
	opts          Options
	exec          Executor
	http          *http.Client
	thumbnailBase string
	logger        *slog.Logger
}

// New constructs an enricher around the given ffmpeg binary.
func New(binary string, timeoutSeconds int, opts Options, logger *slog.Logger, options ...Option) (*Enricher, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	enricher := &Enricher{
		binary:        binary,
		timeout:       time.Duration(timeoutSeconds) * time.Second,
		opts:          opts,
		exec:          commandExecutor{},
		http:          &http.Client{Timeout: 30 * time.Second},
		thumbnailBase: "https://img.youtube.com",
		logger:        logger,
	}
	for _, opt := range options {
		opt(enricher)
	}
	return enricher, nil
}

// Enrich embeds chapters and cover art into audioPath in place. Each step
// that fails is logged and skipped; the audio file is never lost.
func (e *Enricher) Enrich(ctx context.Context, audioPath, infoJSONPath, videoID string) {
	if e.opts.EmbedChapters {
		if err := e.embedChapters(ctx, audioPath, infoJSONPath); err != nil {
			e.logger.Warn("chapter embedding skipped",
				logging.FieldVideoID, videoID,
				logging.FieldPath, audioPath,
				logging.Error(err))
		}
	}
	if e.opts.EmbedThumbnail {
		if err := e.embedThumbnail(ctx, audioPath, videoID); err != nil {
			e.logger.Warn("thumbnail embedding skipped",
				logging.FieldVideoID, videoID,
				logging.FieldPath, audioPath,
				logging.Error(err))
		}
	}
}

func (e *Enricher) embedChapters(ctx context.Context, audioPath, infoJSONPath string) error {
	chapters, err := readChapters(infoJSONPath)
	if err != nil {
		return err
	}
	if len(chapters) == 0 {
		return nil
	}

	metaPath := audioPath + ".ffmeta"
	if err := os.WriteFile(metaPath, []byte(renderMetadata(chapters)), 0o644); err != nil {
		return fmt.Errorf("write metadata file: %w", err)
	}
	defer os.Remove(metaPath)

	outPath := tempOutputPath(audioPath)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", audioPath,
		"-i", metaPath,
		"-map", "0",
		"-map_metadata", "0",
		"-map_chapters", "1",
		"-codec", "copy",
		outPath,
	}
	if err := e.run(ctx, args); err != nil {
		os.Remove(outPath)
		return err
	}
	return os.Rename(outPath, audioPath)
}

func (e *Enricher) embedThumbnail(ctx context.Context, audioPath, videoID string) error {
	thumbPath := audioPath + ".cover.jpg"
	if err := e.downloadThumbnail(ctx, videoID, thumbPath); err != nil {
		return err
	}
	defer os.Remove(thumbPath)

	outPath := tempOutputPath(audioPath)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", audioPath,
		"-i", thumbPath,
		"-map", "0",
		"-map", "1",
		"-codec", "copy",
		"-disposition:v:0", "attached_pic",
		outPath,
	}
	if err := e.run(ctx, args); err != nil {
		os.Remove(outPath)
		return err
	}
	return os.Rename(outPath, audioPath)
}

func (e *Enricher) run(ctx context.Context, args []string) error {
	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.exec.Run(runCtx, e.binary, args); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "remux", err)
	}
	return nil
}

// readChapters parses the yt-dlp info JSON sidecar. A missing sidecar or
// absent chapters array is not an error.
func readChapters(infoJSONPath string) ([]Chapter, error) {
	if infoJSONPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(infoJSONPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read info json: %w", err)
	}
	var info infoJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse info json: %w", err)
	}
	return info.Chapters, nil
}

// tempOutputPath keeps the original extension so ffmpeg infers the
// container format from it.
func tempOutputPath(audioPath string) string {
	ext := filepath.Ext(audioPath)
	return strings.TrimSuffix(audioPath, ext) + ".enrich" + ext
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%w: %s", err, detail)
		}
		return err
	}
	return nil
}
