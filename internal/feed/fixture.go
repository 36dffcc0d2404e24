package feed

import (
	"context"
	"fmt"
	"time"
)

// FixtureSource returns deterministic candidate videos without touching the
// network. Dry-run mode substitutes it for the API source so the ledger,
// worker, and filesystem paths run unchanged while consuming no quota.
type FixtureSource struct {
	// VideosPerChannel controls how many fixtures each channel yields.
	VideosPerChannel int
}

// ChannelVideos fabricates records spaced 12 hours apart after since. IDs are
// derived from the channel id, so repeated dry runs see the same "videos" and
// exercise the ledger's idempotence for real.
func (f FixtureSource) ChannelVideos(_ context.Context, channelID string, since time.Time) ([]Video, error) {
	count := f.VideosPerChannel
	if count <= 0 {
		count = 2
	}

	prefix := channelID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}

	videos := make([]Video, 0, count)
	for i := 0; i < count; i++ {
		videos = append(videos, Video{
			ID:              fmt.Sprintf("FIX%s%02d", prefix, i),
			Title:           fmt.Sprintf("[dry run] video %d from %s", i+1, prefix),
			ChannelID:       channelID,
			PublishedAt:     since.Add(time.Duration(i+1) * 12 * time.Hour),
			DurationSeconds: 300 + 60*i,
			DurationKnown:   true,
			LiveStatus:      LiveNone,
		})
	}
	return videos, nil
}
