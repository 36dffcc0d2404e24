package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"podsink/internal/logging"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "download_ledger.json")
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	l, err := Load(testPath(t), logging.NewNop())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d entries", l.Len())
	}
}

func TestLoadEmptyFileIsEmpty(t *testing.T) {
	path := testPath(t)
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	l, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d entries", l.Len())
	}
}

func TestRecordPersistsAndReloads(t *testing.T) {
	path := testPath(t)
	l, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	entry := Entry{
		DownloadedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Title:        "Some Episode",
		ChannelID:    "UCabc",
	}
	if err := l.Record("vid1", entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	reloaded, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Contains("vid1") {
		t.Fatal("reloaded ledger missing vid1")
	}
	got, _ := reloaded.Get("vid1")
	if got.Title != "Some Episode" || !got.DownloadedAt.Equal(entry.DownloadedAt) {
		t.Fatalf("entry round trip mismatch: %+v", got)
	}
}

func TestRecordSameIDKeepsSingleEntry(t *testing.T) {
	l, err := Load(testPath(t), logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := l.Record("vid1", Entry{DownloadedAt: time.Now()}); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := l.Record("vid1", Entry{DownloadedAt: time.Now()}); err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
}

func TestLoadToleratesUnknownFieldsAndManualEdits(t *testing.T) {
	path := testPath(t)
	body := `{
  "vid1": {"downloaded_at": "2026-01-02T03:04:05Z", "title": "Kept", "note_from_operator": "manually verified"},
  "vid2": {"downloaded_at": "2026-01-03T00:00:00Z"}
}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}

	l, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !l.Contains("vid1") || !l.Contains("vid2") {
		t.Fatalf("expected both entries, got ids %v", l.IDs())
	}
	entry, _ := l.Get("vid2")
	if entry.Title != "" {
		t.Fatalf("missing optional field should stay zero, got %q", entry.Title)
	}
}

func TestLoadCorruptFileStartsFresh(t *testing.T) {
	path := testPath(t)
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write corrupt ledger: %v", err)
	}
	l, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("corrupt ledger should not error: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d", l.Len())
	}
}

func TestSnapshotLeavesNoTempFile(t *testing.T) {
	path := testPath(t)
	l, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := l.Record("vid1", Entry{DownloadedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp snapshot left behind: %v", err)
	}

	// The on-disk shape is the documented external interface.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("ledger is not a json object keyed by video id: %v", err)
	}
	if _, ok := raw["vid1"]; !ok {
		t.Fatalf("expected vid1 key, got %v", raw)
	}
}

func TestPruneDropsOldEntries(t *testing.T) {
	path := testPath(t)
	l, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := l.Record("old", Entry{DownloadedAt: now.Add(-40 * 24 * time.Hour)}); err != nil {
		t.Fatalf("Record old: %v", err)
	}
	if err := l.Record("recent", Entry{DownloadedAt: now.Add(-1 * 24 * time.Hour)}); err != nil {
		t.Fatalf("Record recent: %v", err)
	}

	removed, err := l.Prune(30*24*time.Hour, now)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if l.Contains("old") || !l.Contains("recent") {
		t.Fatalf("prune kept wrong entries: %v", l.IDs())
	}

	reloaded, err := Load(path, logging.NewNop())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Contains("old") {
		t.Fatal("prune was not persisted")
	}
}

func TestPruneDisabledKeepsEverything(t *testing.T) {
	l, err := Load(testPath(t), logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := l.Record("vid1", Entry{DownloadedAt: time.Now().Add(-1000 * time.Hour)}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	removed, err := l.Prune(0, time.Now())
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 0 || !l.Contains("vid1") {
		t.Fatalf("disabled prune should keep entries, removed=%d", removed)
	}
}
