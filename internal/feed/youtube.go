package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"podsink/internal/logging"
	"podsink/internal/services"
)

// YouTubeSource lists channel uploads through the Data API v3. Each channel
// costs roughly two quota units: one playlistItems page plus one videos.list
// batch for durations and live details (search.list would cost 100).
type YouTubeSource struct {
	service    *youtube.Service
	maxResults int64
	logger     *slog.Logger
}

// NewYouTubeSource builds an API-backed source.
func NewYouTubeSource(ctx context.Context, apiKey string, maxResults int, logger *slog.Logger) (*YouTubeSource, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "api key required", nil)
	}
	if maxResults < 1 || maxResults > 50 {
		maxResults = 50
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "create service", err)
	}
	return &YouTubeSource{service: service, maxResults: int64(maxResults), logger: logger}, nil
}

// ChannelVideos returns the channel's recent uploads published at or after
// since, newest first.
func (s *YouTubeSource) ChannelVideos(ctx context.Context, channelID string, since time.Time) ([]Video, error) {
	playlistID, err := s.uploadsPlaylistID(ctx, channelID)
	if err != nil {
		return nil, err
	}

	items, err := s.service.PlaylistItems.
		List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(s.maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classifyAPIError(channelID, "list uploads", err)
	}

	videos := make([]Video, 0, len(items.Items))
	ids := make([]string, 0, len(items.Items))
	for _, item := range items.Items {
		video, ok := s.parsePlaylistItem(item, channelID, since)
		if !ok {
			continue
		}
		videos = append(videos, video)
		ids = append(ids, video.ID)
	}
	if len(videos) == 0 {
		return nil, nil
	}

	if err := s.fillDetails(ctx, channelID, videos, ids); err != nil {
		return nil, err
	}
	return videos, nil
}

// uploadsPlaylistID derives the uploads playlist from the channel id when
// possible (UC… becomes UU…), falling back to a channels.list call.
func (s *YouTubeSource) uploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	if strings.HasPrefix(channelID, "UC") {
		return "UU" + channelID[2:], nil
	}

	resp, err := s.service.Channels.
		List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		return "", classifyAPIError(channelID, "resolve uploads playlist", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil {
		return "", services.Wrap(services.ErrNotFound, "youtube", fmt.Sprintf("channel %s", channelID), nil)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

func (s *YouTubeSource) parsePlaylistItem(item *youtube.PlaylistItem, channelID string, since time.Time) (Video, bool) {
	if item == nil || item.ContentDetails == nil || item.Snippet == nil {
		return Video{}, false
	}
	videoID := item.ContentDetails.VideoId
	if videoID == "" {
		return Video{}, false
	}

	publishedStr := item.ContentDetails.VideoPublishedAt
	if publishedStr == "" {
		publishedStr = item.Snippet.PublishedAt
	}
	if publishedStr == "" {
		s.logger.Warn("video has no publish date, skipping",
			logging.FieldVideoID, videoID, logging.FieldChannel, channelID)
		return Video{}, false
	}
	publishedAt, err := time.Parse(time.RFC3339, publishedStr)
	if err != nil {
		s.logger.Warn("unparseable publish date, skipping",
			logging.FieldVideoID, videoID, logging.Error(err))
		return Video{}, false
	}
	if publishedAt.Before(since) {
		return Video{}, false
	}

	return Video{
		ID:          videoID,
		Title:       item.Snippet.Title,
		ChannelID:   channelID,
		PublishedAt: publishedAt,
		LiveStatus:  LiveNone,
	}, true
}

// fillDetails batches a videos.list call to attach duration and live status.
// Videos the API fails to describe keep an unknown duration and fail open in
// the filter.
func (s *YouTubeSource) fillDetails(ctx context.Context, channelID string, videos []Video, ids []string) error {
	resp, err := s.service.Videos.
		List([]string{"contentDetails", "snippet", "liveStreamingDetails"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return classifyAPIError(channelID, "list video details", err)
	}

	byID := make(map[string]*youtube.Video, len(resp.Items))
	for _, item := range resp.Items {
		byID[item.Id] = item
	}

	for i := range videos {
		detail, ok := byID[videos[i].ID]
		if !ok {
			continue
		}
		if detail.ContentDetails != nil && detail.ContentDetails.Duration != "" {
			if seconds, err := parseISODuration(detail.ContentDetails.Duration); err == nil {
				videos[i].DurationSeconds = seconds
				videos[i].DurationKnown = true
			} else {
				s.logger.Warn("unparseable video duration",
					logging.FieldVideoID, videos[i].ID, logging.Error(err))
			}
		}
		videos[i].LiveStatus = liveStatusOf(detail)
	}
	return nil
}

func liveStatusOf(video *youtube.Video) LiveStatus {
	if video.Snippet != nil {
		switch video.Snippet.LiveBroadcastContent {
		case "live":
			return LiveActive
		case "upcoming":
			return LiveUpcoming
		}
	}
	// A finished broadcast reports liveBroadcastContent "none" but keeps its
	// liveStreamingDetails, which is how stream VODs are told apart from
	// regular uploads.
	if video.LiveStreamingDetails != nil {
		return LiveWasLive
	}
	return LiveNone
}

func classifyAPIError(channelID, operation string, err error) error {
	detail := fmt.Sprintf("%s (channel %s)", operation, channelID)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 403, 429:
			return services.Wrap(services.ErrTransient, "youtube", detail+": quota or rate limit", err)
		case 404:
			return services.Wrap(services.ErrNotFound, "youtube", detail, err)
		}
	}
	return services.Wrap(services.ErrTransient, "youtube", detail, err)
}
