package feed

import "time"

// Reason explains why a video was excluded from the download batch.
type Reason string

const (
	ReasonTooOld        Reason = "too_old"
	ReasonLiveOrStream  Reason = "is_live_or_stream"
	ReasonTooShort      Reason = "too_short"
	ReasonNoPublishTime Reason = "no_publish_time"
)

// Decision pairs a video with its eligibility verdict. Never persisted.
type Decision struct {
	Video    Video
	Eligible bool
	Reason   Reason
}

// Evaluate applies the exclusion rules in order. The rules are independent
// predicates, so ordering only affects which reason a multiply-excluded video
// reports.
func Evaluate(video Video, now time.Time, lookback time.Duration, minDuration int) Decision {
	if video.PublishedAt.IsZero() {
		return Decision{Video: video, Reason: ReasonNoPublishTime}
	}
	if video.PublishedAt.Before(now.Add(-lookback)) {
		return Decision{Video: video, Reason: ReasonTooOld}
	}
	// Any live association excludes: active, scheduled, and archived streams
	// alike. Stream VODs tend to be hours long and low value as podcast
	// episodes, so false exclusion beats false inclusion here.
	if video.LiveStatus != "" && video.LiveStatus != LiveNone {
		return Decision{Video: video, Reason: ReasonLiveOrStream}
	}
	// Unknown duration fails open: attempting a download beats silently
	// skipping a video the API returned incomplete data for.
	if video.DurationKnown && video.DurationSeconds <= minDuration {
		return Decision{Video: video, Reason: ReasonTooShort}
	}
	return Decision{Video: video, Eligible: true}
}

// Filter returns the videos eligible for download.
func Filter(videos []Video, now time.Time, lookback time.Duration, minDuration int) []Video {
	eligible := make([]Video, 0, len(videos))
	for _, video := range videos {
		if Evaluate(video, now, lookback, minDuration).Eligible {
			eligible = append(eligible, video)
		}
	}
	return eligible
}

// Decisions evaluates every video, preserving order, for diagnostic logging.
func Decisions(videos []Video, now time.Time, lookback time.Duration, minDuration int) []Decision {
	decisions := make([]Decision, 0, len(videos))
	for _, video := range videos {
		decisions = append(decisions, Evaluate(video, now, lookback, minDuration))
	}
	return decisions
}
