package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateFilter(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLock(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set to the destination podcast folder")
	}
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	if c.Paths.LedgerPath == "" {
		return errors.New("paths.ledger_path must be set")
	}
	if c.Paths.ChannelsFile == "" {
		return errors.New("paths.channels_file must be set")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/podsink/config.toml"
		}
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'podsink config init')", defaultPath)
	}
	if c.YouTube.MaxResults < 1 || c.YouTube.MaxResults > 50 {
		return errors.New("youtube.max_results must be between 1 and 50")
	}
	if c.YouTube.APIDelaySeconds < 0 {
		return errors.New("youtube.api_delay_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateFilter() error {
	if c.Filter.LookbackDays < 1 {
		return errors.New("filter.lookback_days must be at least 1")
	}
	if c.Filter.MinDurationSeconds < 0 {
		return errors.New("filter.min_duration_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateDownload() error {
	if c.Download.Format == "" {
		return errors.New("download.format must be set")
	}
	if c.Download.OutputTemplate == "" {
		return errors.New("download.output_template must be set")
	}
	if c.Download.MaxAttempts < 1 {
		return errors.New("download.max_attempts must be at least 1")
	}
	if c.Download.InitialBackoffSeconds < 0 {
		return errors.New("download.initial_backoff_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateLock() error {
	if c.Lock.StaleAfterMinutes < 1 {
		return errors.New("lock.stale_after_minutes must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
