package feed

import (
	"context"
	"time"
)

// LiveStatus classifies a video's relationship to live streaming.
type LiveStatus string

const (
	// LiveNone is a regular upload.
	LiveNone LiveStatus = "none"
	// LiveUpcoming is a scheduled broadcast that has not started.
	LiveUpcoming LiveStatus = "upcoming"
	// LiveActive is a broadcast currently in progress.
	LiveActive LiveStatus = "live"
	// LiveWasLive is a finished broadcast (stream VOD).
	LiveWasLive LiveStatus = "was_live"
)

// Video is one candidate record from the metadata source. Immutable once
// fetched.
type Video struct {
	ID          string
	Title       string
	ChannelID   string
	PublishedAt time.Time
	// DurationSeconds is 0 when the source could not determine a duration;
	// DurationKnown distinguishes that from a genuinely zero-length video.
	DurationSeconds int
	DurationKnown   bool
	LiveStatus      LiveStatus
}

// Source lists a channel's candidate videos published since the given time.
type Source interface {
	ChannelVideos(ctx context.Context, channelID string, since time.Time) ([]Video, error)
}
