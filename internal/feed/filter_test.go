package feed

import (
	"testing"
	"time"
)

var filterNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

const week = 7 * 24 * time.Hour

func regularVideo(id string, published time.Time, duration int) Video {
	return Video{
		ID:              id,
		Title:           "video " + id,
		ChannelID:       "UCtest",
		PublishedAt:     published,
		DurationSeconds: duration,
		DurationKnown:   true,
		LiveStatus:      LiveNone,
	}
}

func TestEvaluateDurationBoundary(t *testing.T) {
	published := filterNow.Add(-time.Hour)

	atLimit := Evaluate(regularVideo("a", published, 60), filterNow, week, 60)
	if atLimit.Eligible || atLimit.Reason != ReasonTooShort {
		t.Fatalf("duration 60 should be too_short, got %+v", atLimit)
	}

	overLimit := Evaluate(regularVideo("b", published, 61), filterNow, week, 60)
	if !overLimit.Eligible {
		t.Fatalf("duration 61 should be eligible, got %+v", overLimit)
	}
}

func TestEvaluateUnknownDurationFailsOpen(t *testing.T) {
	video := regularVideo("a", filterNow.Add(-time.Hour), 0)
	video.DurationKnown = false
	decision := Evaluate(video, filterNow, week, 60)
	if !decision.Eligible {
		t.Fatalf("unknown duration should not exclude, got %+v", decision)
	}
}

func TestEvaluateLiveStatuses(t *testing.T) {
	for _, status := range []LiveStatus{LiveUpcoming, LiveActive, LiveWasLive} {
		video := regularVideo("a", filterNow.Add(-time.Hour), 3600)
		video.LiveStatus = status
		decision := Evaluate(video, filterNow, week, 60)
		if decision.Eligible || decision.Reason != ReasonLiveOrStream {
			t.Fatalf("status %s should exclude as live/stream, got %+v", status, decision)
		}
	}
}

func TestEvaluateWasLiveExcludedRegardlessOfDuration(t *testing.T) {
	video := regularVideo("a", filterNow.Add(-time.Hour), 7200)
	video.LiveStatus = LiveWasLive
	if decision := Evaluate(video, filterNow, week, 60); decision.Eligible {
		t.Fatalf("was_live must be excluded, got %+v", decision)
	}
}

func TestEvaluateLookbackBoundary(t *testing.T) {
	atBoundary := Evaluate(regularVideo("a", filterNow.Add(-week), 300), filterNow, week, 60)
	if !atBoundary.Eligible {
		t.Fatalf("published exactly at now-lookback should be included, got %+v", atBoundary)
	}

	justOutside := Evaluate(regularVideo("b", filterNow.Add(-week-time.Second), 300), filterNow, week, 60)
	if justOutside.Eligible || justOutside.Reason != ReasonTooOld {
		t.Fatalf("one second older should be too_old, got %+v", justOutside)
	}
}

func TestEvaluateMissingPublishTime(t *testing.T) {
	video := regularVideo("a", time.Time{}, 300)
	decision := Evaluate(video, filterNow, week, 60)
	if decision.Eligible || decision.Reason != ReasonNoPublishTime {
		t.Fatalf("missing publish time should exclude, got %+v", decision)
	}
}

func TestFilterKeepsOrderAndOnlyEligible(t *testing.T) {
	videos := []Video{
		regularVideo("keep1", filterNow.Add(-time.Hour), 300),
		regularVideo("short", filterNow.Add(-time.Hour), 30),
		regularVideo("keep2", filterNow.Add(-2*time.Hour), 600),
		regularVideo("old", filterNow.Add(-2*week), 600),
	}
	got := Filter(videos, filterNow, week, 60)
	if len(got) != 2 || got[0].ID != "keep1" || got[1].ID != "keep2" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
}

func TestDecisionsReportsEveryVideo(t *testing.T) {
	videos := []Video{
		regularVideo("a", filterNow.Add(-time.Hour), 300),
		regularVideo("b", filterNow.Add(-time.Hour), 10),
	}
	decisions := Decisions(videos, filterNow, week, 60)
	if len(decisions) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(decisions))
	}
	if !decisions[0].Eligible || decisions[1].Reason != ReasonTooShort {
		t.Fatalf("unexpected decisions: %+v", decisions)
	}
}
