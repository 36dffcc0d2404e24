package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"podsink/internal/enrich"
	"podsink/internal/feed"
	"podsink/internal/journal"
	"podsink/internal/logging"
	"podsink/internal/pipeline"
	"podsink/internal/services/ytdlp"
)

func newRunCommand(cctx *commandContext) *cobra.Command {
	var dryRun bool
	var debug bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download new channel uploads and file them into the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			level := cfg.Logging.Level
			if debug {
				level = "debug"
			}
			logger, err := logging.New(logging.Options{Level: level, Format: cfg.Logging.Format})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runID := uuid.NewString()

			store, err := journal.Open(cfg.Paths.JournalPath)
			if err != nil {
				return fmt.Errorf("open attempt journal: %w", err)
			}
			defer store.Close()

			var source feed.Source
			var fetcher pipeline.Fetcher
			var enricher pipeline.Enricher

			if dryRun {
				logger.Info("dry run: using fixture channel data and simulated downloads")
				source = feed.FixtureSource{VideosPerChannel: 3}
				fetcher = simulatedFetcher{}
			} else {
				source, err = feed.NewYouTubeSource(ctx, cfg.YouTube.APIKey, cfg.YouTube.MaxResults, logger)
				if err != nil {
					return fmt.Errorf("youtube client: %w", err)
				}
				fetcher, err = ytdlp.New(cfg.YtdlpBinary(),
					cfg.Download.TimeoutSeconds,
					cfg.Download.MaxAttempts,
					cfg.Download.InitialBackoffSeconds,
					logger)
				if err != nil {
					return err
				}
				if cfg.Enrichment.EmbedChapters || cfg.Enrichment.EmbedThumbnail {
					enricher, err = enrich.New(cfg.FFmpegBinary(),
						cfg.Enrichment.TimeoutSeconds,
						enrich.Options{
							EmbedChapters:  cfg.Enrichment.EmbedChapters,
							EmbedThumbnail: cfg.Enrichment.EmbedThumbnail,
						},
						logger)
					if err != nil {
						return err
					}
				}
			}

			fetchOpts := ytdlp.FetchOptions{
				Format:             cfg.Download.Format,
				OutputTemplate:     cfg.Download.OutputTemplate,
				DownloadDir:        cfg.Paths.DownloadDir,
				SponsorBlockRemove: cfg.Download.SponsorBlockRemove,
			}
			worker := pipeline.NewWorker(fetcher, enricher, fetchOpts, logger)
			p := pipeline.New(cfg, source, worker, store, logger)

			summary, err := p.Run(ctx, runID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s finished: %d downloaded, %d already present, %d excluded, %d failed (%d permanent)\n",
				summary.RunID,
				summary.Downloaded,
				summary.AlreadyDownloaded,
				summary.Excluded,
				summary.TransientFailures+summary.PermanentFailures,
				summary.PermanentFailures)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Use fixture data and simulated downloads")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

// simulatedFetcher stands in for yt-dlp during dry runs. It writes a stub
// audio file so the ledger, move, and sweep paths run for real.
type simulatedFetcher struct{}

func (simulatedFetcher) Fetch(_ context.Context, videoID string, opts ytdlp.FetchOptions) (ytdlp.Result, error) {
	if err := os.MkdirAll(opts.DownloadDir, 0o755); err != nil {
		return ytdlp.Result{}, err
	}
	path := filepath.Join(opts.DownloadDir, videoID+".m4a")
	if err := os.WriteFile(path, []byte("simulated audio\n"), 0o644); err != nil {
		return ytdlp.Result{}, err
	}
	return ytdlp.Result{FilePath: path, Attempts: 1}, nil
}
