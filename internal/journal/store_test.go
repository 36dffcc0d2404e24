package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	attempts := []Attempt{
		{RunID: "run-1", VideoID: "vid1", ChannelID: "UC1", Title: "First", Outcome: OutcomeSuccess},
		{RunID: "run-1", VideoID: "vid2", ChannelID: "UC1", Title: "Second", Outcome: OutcomeTransient, Detail: "network timeout"},
		{RunID: "run-2", VideoID: "vid3", ChannelID: "UC2", Title: "Third", Outcome: OutcomePermanent, Detail: "private video"},
	}
	for _, a := range attempts {
		if err := store.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt(%s): %v", a.VideoID, err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent = %d rows, want 3", len(recent))
	}
	if recent[0].VideoID != "vid3" {
		t.Fatalf("newest first: got %s, want vid3", recent[0].VideoID)
	}
	if recent[0].Detail != "private video" {
		t.Fatalf("detail = %q", recent[0].Detail)
	}
	if recent[0].CreatedAt.IsZero() {
		t.Fatal("created_at not populated")
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.RecordAttempt(ctx, Attempt{RunID: "run-1", VideoID: "vid", ChannelID: "UC1", Outcome: OutcomeSuccess}); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}
	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent = %d rows, want 2", len(recent))
	}
}

func TestFailuresExcludesSuccess(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []Attempt{
		{RunID: "r", VideoID: "ok", ChannelID: "UC1", Outcome: OutcomeSuccess},
		{RunID: "r", VideoID: "flaky", ChannelID: "UC1", Outcome: OutcomeTransient},
		{RunID: "r", VideoID: "gone", ChannelID: "UC1", Outcome: OutcomePermanent},
	}
	for _, a := range rows {
		if err := store.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt: %v", err)
		}
	}

	failures, err := store.Failures(ctx, 10)
	if err != nil {
		t.Fatalf("Failures: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("failures = %d rows, want 2", len(failures))
	}
	for _, f := range failures {
		if f.Outcome == OutcomeSuccess {
			t.Fatalf("success row leaked into failures: %+v", f)
		}
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	attempt := Attempt{RunID: "r", VideoID: "vid1", ChannelID: "UC1", Outcome: OutcomeSuccess, CreatedAt: time.Now().UTC()}
	if err := store.RecordAttempt(context.Background(), attempt); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].VideoID != "vid1" {
		t.Fatalf("unexpected rows after reopen: %+v", recent)
	}
}
