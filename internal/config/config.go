package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and file-location configuration.
type Paths struct {
	DownloadDir  string `toml:"download_dir"`
	LibraryDir   string `toml:"library_dir"`
	LedgerPath   string `toml:"ledger_path"`
	JournalPath  string `toml:"journal_path"`
	LockPath     string `toml:"lock_path"`
	ChannelsFile string `toml:"channels_file"`
}

// YouTube contains configuration for the YouTube Data API metadata source.
type YouTube struct {
	APIKey          string `toml:"api_key"`
	MaxResults      int    `toml:"max_results"`
	APIDelaySeconds int    `toml:"api_delay_seconds"`
}

// Filter contains video eligibility settings.
type Filter struct {
	LookbackDays       int `toml:"lookback_days"`
	MinDurationSeconds int `toml:"min_duration_seconds"`
}

// Download contains yt-dlp invocation settings.
type Download struct {
	Format                string   `toml:"format"`
	OutputTemplate        string   `toml:"output_template"`
	MaxAttempts           int      `toml:"max_attempts"`
	InitialBackoffSeconds int      `toml:"initial_backoff_seconds"`
	TimeoutSeconds        int      `toml:"timeout_seconds"`
	SponsorBlockRemove    []string `toml:"sponsorblock_remove"`
}

// Enrichment contains settings for post-download metadata embedding.
type Enrichment struct {
	EmbedChapters  bool `toml:"embed_chapters"`
	EmbedThumbnail bool `toml:"embed_thumbnail"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// Lock contains run-guard settings.
type Lock struct {
	StaleAfterMinutes int `toml:"stale_after_minutes"`
}

// Ledger contains download-ledger maintenance settings.
type Ledger struct {
	PruneAfterDays int `toml:"prune_after_days"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for podsink.
type Config struct {
	Paths      Paths      `toml:"paths"`
	YouTube    YouTube    `toml:"youtube"`
	Filter     Filter     `toml:"filter"`
	Download   Download   `toml:"download"`
	Enrichment Enrichment `toml:"enrichment"`
	Lock       Lock       `toml:"lock"`
	Ledger     Ledger     `toml:"ledger"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/podsink/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized, and the YOUTUBE_API_KEY
// environment fallback applied.
func Load(path string) (*Config, string, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolvedPath, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.DownloadDir,
		&c.Paths.LibraryDir,
		&c.Paths.LedgerPath,
		&c.Paths.JournalPath,
		&c.Paths.LockPath,
		&c.Paths.ChannelsFile,
	}
	for _, field := range pathFields {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// EnsureDirectories creates every directory the pipeline writes to,
// including the library folder.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Paths.DownloadDir,
		c.Paths.LibraryDir,
		filepath.Dir(c.Paths.LedgerPath),
		filepath.Dir(c.Paths.JournalPath),
		filepath.Dir(c.Paths.LockPath),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LookbackWindow returns the publish-time window as a duration.
func (c *Config) LookbackWindow() time.Duration {
	return time.Duration(c.Filter.LookbackDays) * 24 * time.Hour
}

// LockStaleAfter returns the age past which an unreleased lock token is
// considered abandoned.
func (c *Config) LockStaleAfter() time.Duration {
	return time.Duration(c.Lock.StaleAfterMinutes) * time.Minute
}

// YtdlpBinary returns the yt-dlp executable name.
func (c *Config) YtdlpBinary() string { return "yt-dlp" }

// FFmpegBinary returns the ffmpeg executable name used for enrichment.
func (c *Config) FFmpegBinary() string { return "ffmpeg" }

// ExpandPath resolves a leading ~ against the current user's home.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
