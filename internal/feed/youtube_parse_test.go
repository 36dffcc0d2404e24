package feed

import (
	"context"
	"testing"
	"time"

	"google.golang.org/api/youtube/v3"

	"podsink/internal/logging"
)

func parseSource() *YouTubeSource {
	return &YouTubeSource{logger: logging.NewNop()}
}

func TestUploadsPlaylistIDDerivedFromChannelID(t *testing.T) {
	src := parseSource()
	got, err := src.uploadsPlaylistID(context.Background(), "UCabcdef")
	if err != nil {
		t.Fatalf("uploadsPlaylistID: %v", err)
	}
	if got != "UUabcdef" {
		t.Fatalf("expected derived playlist UUabcdef, got %q", got)
	}
}

func TestParsePlaylistItem(t *testing.T) {
	src := parseSource()
	since := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	item := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{
			VideoId:          "vid1",
			VideoPublishedAt: "2026-05-03T10:00:00Z",
		},
		Snippet: &youtube.PlaylistItemSnippet{Title: "Episode One"},
	}

	video, ok := src.parsePlaylistItem(item, "UCx", since)
	if !ok {
		t.Fatal("expected item to parse")
	}
	if video.ID != "vid1" || video.Title != "Episode One" || video.ChannelID != "UCx" {
		t.Fatalf("unexpected video: %+v", video)
	}
	if video.DurationKnown {
		t.Fatal("duration should be unknown before details fill")
	}
}

func TestParsePlaylistItemFiltersBySince(t *testing.T) {
	src := parseSource()
	since := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	item := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{
			VideoId:          "vid1",
			VideoPublishedAt: "2026-04-01T10:00:00Z",
		},
		Snippet: &youtube.PlaylistItemSnippet{Title: "Old"},
	}
	if _, ok := src.parsePlaylistItem(item, "UCx", since); ok {
		t.Fatal("items published before since should be dropped")
	}
}

func TestParsePlaylistItemSkipsMissingPublishDate(t *testing.T) {
	src := parseSource()
	item := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "vid1"},
		Snippet:        &youtube.PlaylistItemSnippet{Title: "No Date"},
	}
	if _, ok := src.parsePlaylistItem(item, "UCx", time.Time{}); ok {
		t.Fatal("items with no publish date should be dropped")
	}
}

func TestParsePlaylistItemFallsBackToSnippetDate(t *testing.T) {
	src := parseSource()
	item := &youtube.PlaylistItem{
		ContentDetails: &youtube.PlaylistItemContentDetails{VideoId: "vid1"},
		Snippet: &youtube.PlaylistItemSnippet{
			Title:       "Snippet Date",
			PublishedAt: "2026-05-03T10:00:00Z",
		},
	}
	video, ok := src.parsePlaylistItem(item, "UCx", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected snippet publish date fallback")
	}
	if video.PublishedAt.IsZero() {
		t.Fatal("publish date not populated from snippet")
	}
}
