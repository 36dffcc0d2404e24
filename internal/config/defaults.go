package config

const (
	defaultDownloadDir       = "~/.local/share/podsink/downloads"
	defaultLedgerPath        = "~/.local/share/podsink/download_ledger.json"
	defaultJournalPath       = "~/.local/share/podsink/attempts.db"
	defaultLockPath          = "~/.local/share/podsink/podsink.lock"
	defaultChannelsFile      = "~/.config/podsink/channels"
	defaultMaxResults        = 50
	defaultAPIDelaySeconds   = 1
	defaultLookbackDays      = 7
	defaultMinDuration       = 60
	defaultFormat            = "m4a/bestaudio/best"
	defaultOutputTemplate    = "%(title)s - %(channel)s.%(ext)s"
	defaultMaxAttempts       = 3
	defaultInitialBackoff    = 2
	defaultDownloadTimeout   = 1800
	defaultEnrichTimeout     = 120
	defaultLockStaleMinutes  = 360
	defaultLedgerPruneDays   = 0
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir:  defaultDownloadDir,
			LedgerPath:   defaultLedgerPath,
			JournalPath:  defaultJournalPath,
			LockPath:     defaultLockPath,
			ChannelsFile: defaultChannelsFile,
		},
		YouTube: YouTube{
			MaxResults:      defaultMaxResults,
			APIDelaySeconds: defaultAPIDelaySeconds,
		},
		Filter: Filter{
			LookbackDays:       defaultLookbackDays,
			MinDurationSeconds: defaultMinDuration,
		},
		Download: Download{
			Format:                defaultFormat,
			OutputTemplate:        defaultOutputTemplate,
			MaxAttempts:           defaultMaxAttempts,
			InitialBackoffSeconds: defaultInitialBackoff,
			TimeoutSeconds:        defaultDownloadTimeout,
		},
		Enrichment: Enrichment{
			EmbedChapters:  true,
			EmbedThumbnail: true,
			TimeoutSeconds: defaultEnrichTimeout,
		},
		Lock: Lock{
			StaleAfterMinutes: defaultLockStaleMinutes,
		},
		Ledger: Ledger{
			PruneAfterDays: defaultLedgerPruneDays,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
