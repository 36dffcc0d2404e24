package pipeline

import (
	"context"
	"log/slog"
	"os"

	"podsink/internal/feed"
	"podsink/internal/logging"
	"podsink/internal/services"
	"podsink/internal/services/ytdlp"
)

// Fetcher downloads one video's audio.
type Fetcher interface {
	Fetch(ctx context.Context, videoID string, opts ytdlp.FetchOptions) (ytdlp.Result, error)
}

// Enricher post-processes a downloaded file. Implementations are best
// effort and never fail the download.
type Enricher interface {
	Enrich(ctx context.Context, audioPath, infoJSONPath, videoID string)
}

// OutcomeKind labels how processing one video ended.
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeTransientFailure OutcomeKind = "transient_failure"
	OutcomePermanentFailure OutcomeKind = "permanent_failure"
)

// Outcome reports the result of processing one video.
type Outcome struct {
	Kind     OutcomeKind
	FilePath string
	Attempts int
	Err      error
}

// Worker processes a single video: fetch, then enrich.
type Worker struct {
	fetcher   Fetcher
	enricher  Enricher
	fetchOpts ytdlp.FetchOptions
	logger    *slog.Logger
}

// NewWorker wires a fetcher and an optional enricher.
func NewWorker(fetcher Fetcher, enricher Enricher, fetchOpts ytdlp.FetchOptions, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{fetcher: fetcher, enricher: enricher, fetchOpts: fetchOpts, logger: logger}
}

// Process downloads and enriches one video. Failures come back classified;
// classification never changes after this point.
func (w *Worker) Process(ctx context.Context, video feed.Video) Outcome {
	result, err := w.fetcher.Fetch(ctx, video.ID, w.fetchOpts)
	if err != nil {
		kind := OutcomeTransientFailure
		if services.IsPermanent(err) {
			kind = OutcomePermanentFailure
		}
		return Outcome{Kind: kind, Err: err}
	}

	if w.enricher != nil {
		w.enricher.Enrich(ctx, result.FilePath, result.InfoJSONPath, video.ID)
	}
	if result.InfoJSONPath != "" {
		if err := os.Remove(result.InfoJSONPath); err != nil && !os.IsNotExist(err) {
			w.logger.Warn("info json cleanup failed",
				logging.FieldVideoID, video.ID,
				logging.FieldPath, result.InfoJSONPath,
				logging.Error(err))
		}
	}

	return Outcome{Kind: OutcomeSuccess, FilePath: result.FilePath, Attempts: result.Attempts}
}
