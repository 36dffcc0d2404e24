package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"podsink/internal/logging"
)

// Entry records one completed download. Only DownloadedAt matters to the
// pipeline; the rest is kept for human inspection of the ledger file.
type Entry struct {
	DownloadedAt time.Time `json:"downloaded_at"`
	Title        string    `json:"title,omitempty"`
	ChannelID    string    `json:"channel_id,omitempty"`
	PublishedAt  time.Time `json:"published_at,omitzero"`
}

// Ledger is the in-memory view of the download record. It is not safe for
// concurrent use; the run guard guarantees a single writer.
type Ledger struct {
	path    string
	entries map[string]Entry
}

// Load reads the ledger at path. A missing or empty file is an empty ledger.
// A file that fails to parse is treated as empty with a loud warning rather
// than aborting the run; the next successful download rewrites it.
func Load(path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &Ledger{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("no ledger file found, starting fresh", logging.FieldPath, path)
			return l, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(data) == 0 {
		return l, nil
	}

	if err := json.Unmarshal(data, &l.entries); err != nil {
		logger.Warn("ledger file is corrupted, starting fresh", logging.FieldPath, path, logging.Error(err))
		l.entries = make(map[string]Entry)
		return l, nil
	}
	logger.Debug("ledger loaded", logging.FieldPath, path, "entries", len(l.entries))
	return l, nil
}

// Contains reports whether the video id has already been downloaded.
func (l *Ledger) Contains(videoID string) bool {
	_, ok := l.entries[videoID]
	return ok
}

// Len returns the number of recorded downloads.
func (l *Ledger) Len() int { return len(l.entries) }

// IDs returns all recorded video ids, sorted for deterministic output.
func (l *Ledger) IDs() []string {
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the entry for a video id.
func (l *Ledger) Get(videoID string) (Entry, bool) {
	entry, ok := l.entries[videoID]
	return entry, ok
}

// Record adds an entry and durably persists the whole ledger before
// returning. Recording an id twice overwrites the same key, so the
// at-most-one-entry invariant holds regardless of caller behavior.
func (l *Ledger) Record(videoID string, entry Entry) error {
	if videoID == "" {
		return errors.New("ledger: video id required")
	}
	l.entries[videoID] = entry
	return l.save()
}

// Prune drops entries downloaded more than maxAge ago and persists the
// result when anything was removed. Returns the number of entries dropped.
func (l *Ledger) Prune(maxAge time.Duration, now time.Time) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-maxAge)
	removed := 0
	for id, entry := range l.entries {
		if entry.DownloadedAt.Before(cutoff) {
			delete(l.entries, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, l.save()
}

// save writes a complete snapshot to a temp file and renames it over the
// previous ledger.
func (l *Ledger) save() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	data = append(data, '\n')

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger snapshot: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
