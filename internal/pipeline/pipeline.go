package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"podsink/internal/config"
	"podsink/internal/feed"
	"podsink/internal/fileutil"
	"podsink/internal/journal"
	"podsink/internal/ledger"
	"podsink/internal/logging"
	"podsink/internal/runlock"
	"podsink/internal/services"
)

// minFreeBytes is the library filesystem headroom required before a run
// starts downloading.
const minFreeBytes = 512 << 20

// AttemptRecorder persists per-video outcomes for later inspection.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, attempt journal.Attempt) error
}

// Summary tallies one run.
type Summary struct {
	RunID             string
	Channels          int
	ChannelErrors     int
	Candidates        int
	Excluded          int
	AlreadyDownloaded int
	Downloaded        int
	TransientFailures int
	PermanentFailures int
	Moved             int
	MoveFailures      int
	Pruned            int
	Swept             int
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs the download batch end to end.
type Pipeline struct {
	cfg      *config.Config
	source   feed.Source
	worker   *Worker
	recorder AttemptRecorder
	logger   *slog.Logger
	now      func() time.Time
}

// New assembles a pipeline. recorder may be nil to skip journaling.
func New(cfg *config.Config, source feed.Source, worker *Worker, recorder AttemptRecorder, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:      cfg,
		source:   source,
		worker:   worker,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one batch. It returns runlock.ErrAlreadyRunning when another
// run holds the guard; per-video and per-channel failures are isolated and
// reported through the summary instead.
func (p *Pipeline) Run(ctx context.Context, runID string) (*Summary, error) {
	summary := &Summary{RunID: runID}
	log := p.logger.With(logging.FieldRunID, runID)

	// Only the guard's own directory is touched before acquisition; a
	// contended run must leave the rest of the filesystem alone.
	if err := os.MkdirAll(filepath.Dir(p.cfg.Paths.LockPath), 0o755); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "create lock directory", err)
	}

	lock, err := runlock.Acquire(p.cfg.Paths.LockPath, p.cfg.LockStaleAfter())
	if err != nil {
		return summary, err
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			log.Warn("run guard release failed", logging.Error(releaseErr))
		}
	}()
	if token := lock.Reclaimed(); token != nil {
		log.Warn("reclaimed stale run guard",
			"stale_pid", token.PID,
			"stale_host", token.Hostname,
			"acquired_at", token.AcquiredAt.Format(time.RFC3339))
	}

	if err := p.cfg.EnsureDirectories(); err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "ensure directories", err)
	}
	if err := p.preflight(log); err != nil {
		return summary, err
	}

	book, err := ledger.Load(p.cfg.Paths.LedgerPath, log)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "load ledger", err)
	}

	channels, err := p.cfg.LoadChannels()
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "pipeline", "load channels", err)
	}
	summary.Channels = len(channels)

	now := p.now()
	lookback := p.cfg.LookbackWindow()
	since := now.Add(-lookback)
	apiDelay := time.Duration(p.cfg.YouTube.APIDelaySeconds) * time.Second

	for i, channelID := range channels {
		if i > 0 && apiDelay > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(apiDelay):
			}
		}
		if err := p.runChannel(ctx, log, runID, book, channelID, now, lookback, since, summary); err != nil {
			return summary, err
		}
	}

	p.pruneLedger(log, book, now, summary)
	p.sweepStrayFiles(log, summary)

	log.Info("run complete",
		"channels", summary.Channels,
		"channel_errors", summary.ChannelErrors,
		"candidates", summary.Candidates,
		"excluded", summary.Excluded,
		"already_downloaded", summary.AlreadyDownloaded,
		"downloaded", summary.Downloaded,
		"transient_failures", summary.TransientFailures,
		"permanent_failures", summary.PermanentFailures,
		"moved", summary.Moved,
		"move_failures", summary.MoveFailures,
		"pruned", summary.Pruned,
		"swept", summary.Swept)
	return summary, nil
}

// runChannel processes one channel. Only context cancellation propagates as
// an error; everything else is isolated.
func (p *Pipeline) runChannel(ctx context.Context, log *slog.Logger, runID string, book *ledger.Ledger, channelID string, now time.Time, lookback time.Duration, since time.Time, summary *Summary) error {
	channelLog := log.With(logging.FieldChannel, channelID)

	videos, err := p.source.ChannelVideos(ctx, channelID, since)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		summary.ChannelErrors++
		channelLog.Warn("channel listing failed, skipping channel", logging.Error(err))
		return nil
	}

	for _, decision := range feed.Decisions(videos, now, lookback, p.cfg.Filter.MinDurationSeconds) {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Candidates++
		video := decision.Video
		videoLog := channelLog.With(logging.FieldVideoID, video.ID, logging.FieldTitle, video.Title)

		if !decision.Eligible {
			summary.Excluded++
			videoLog.Debug("excluded", logging.FieldReason, string(decision.Reason))
			continue
		}
		if book.Contains(video.ID) {
			summary.AlreadyDownloaded++
			videoLog.Debug("already downloaded")
			continue
		}

		p.processVideo(ctx, videoLog, runID, book, video, summary)
	}
	return nil
}

func (p *Pipeline) processVideo(ctx context.Context, log *slog.Logger, runID string, book *ledger.Ledger, video feed.Video, summary *Summary) {
	outcome := p.worker.Process(ctx, video)
	p.journalOutcome(ctx, log, runID, video, outcome)

	switch outcome.Kind {
	case OutcomeTransientFailure:
		summary.TransientFailures++
		log.Warn("download failed, will retry on a future run", logging.Error(outcome.Err))
		return
	case OutcomePermanentFailure:
		summary.PermanentFailures++
		log.Warn("download failed permanently", logging.Error(outcome.Err))
		return
	}

	entry := ledger.Entry{
		DownloadedAt: p.now().UTC(),
		Title:        video.Title,
		ChannelID:    video.ChannelID,
		PublishedAt:  video.PublishedAt,
	}
	if err := book.Record(video.ID, entry); err != nil {
		// Without a durable ledger entry the move must not happen, or the
		// video could be fetched twice.
		summary.TransientFailures++
		log.Error("ledger write failed, leaving file in download dir", logging.Error(err))
		return
	}
	summary.Downloaded++

	dest, err := fileutil.MoveFile(outcome.FilePath, p.cfg.Paths.LibraryDir)
	if err != nil {
		summary.MoveFailures++
		log.Error("move into library failed, file needs manual relocation",
			logging.FieldPath, outcome.FilePath,
			logging.Error(err))
		return
	}
	summary.Moved++
	log.Info("downloaded", logging.FieldPath, dest, "attempts", outcome.Attempts)
}

func (p *Pipeline) journalOutcome(ctx context.Context, log *slog.Logger, runID string, video feed.Video, outcome Outcome) {
	if p.recorder == nil {
		return
	}
	attempt := journal.Attempt{
		RunID:     runID,
		VideoID:   video.ID,
		ChannelID: video.ChannelID,
		Title:     video.Title,
		Outcome:   string(outcome.Kind),
		CreatedAt: p.now().UTC(),
	}
	if outcome.Err != nil {
		attempt.Detail = outcome.Err.Error()
	}
	if err := p.recorder.RecordAttempt(ctx, attempt); err != nil {
		log.Warn("journal write failed", logging.Error(err))
	}
}

// preflight verifies the library filesystem has headroom before the batch
// touches the network.
func (p *Pipeline) preflight(log *slog.Logger) error {
	var stat unix.Statfs_t
	if err := unix.Statfs(p.cfg.Paths.LibraryDir, &stat); err != nil {
		// Exotic filesystems can refuse statfs; proceed and let the
		// downloads surface any real problem.
		log.Warn("library free-space check unavailable", logging.Error(err))
		return nil
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return services.Wrap(services.ErrConfiguration, "pipeline",
			fmt.Sprintf("library filesystem has %d MiB free, need %d MiB", free>>20, minFreeBytes>>20), nil)
	}
	return nil
}

func (p *Pipeline) pruneLedger(log *slog.Logger, book *ledger.Ledger, now time.Time, summary *Summary) {
	if p.cfg.Ledger.PruneAfterDays <= 0 {
		return
	}
	maxAge := time.Duration(p.cfg.Ledger.PruneAfterDays) * 24 * time.Hour
	pruned, err := book.Prune(maxAge, now)
	if err != nil {
		log.Warn("ledger prune failed", logging.Error(err))
		return
	}
	summary.Pruned = pruned
	if pruned > 0 {
		log.Info("pruned ledger entries", "count", pruned)
	}
}

// sweepStrayFiles moves audio left behind by crashed runs into the library.
func (p *Pipeline) sweepStrayFiles(log *slog.Logger, summary *Summary) {
	strays, err := fileutil.ListAudioFiles(p.cfg.Paths.DownloadDir)
	if err != nil {
		log.Warn("stray file sweep failed", logging.Error(err))
		return
	}
	for _, stray := range strays {
		dest, err := fileutil.MoveFile(stray, p.cfg.Paths.LibraryDir)
		if err != nil {
			log.Warn("stray file move failed", logging.FieldPath, stray, logging.Error(err))
			continue
		}
		summary.Swept++
		log.Info("swept stray file into library", logging.FieldPath, dest)
	}
}
