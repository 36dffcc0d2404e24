package ytdlp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"podsink/internal/services"
)

// permanentSignatures are yt-dlp error fragments that no amount of retrying
// will fix. Matched case-insensitively against the tool's stderr.
var permanentSignatures = []string{
	"video unavailable",
	"private video",
	"this video is not available",
	"this video has been removed",
	"this video is no longer available",
	"sign in to confirm your age",
	"members-only content",
	"copyright claim",
	"account associated with this video has been terminated",
	"not available in your country",
}

// classify tags a tool failure exactly once. Everything that is not a known
// permanent signature counts as transient and is retried on a future run.
func classify(operation string, err error, stderr []string) error {
	detail := strings.TrimSpace(strings.Join(stderr, " "))
	if detail != "" {
		err = fmt.Errorf("%w: %s", err, truncate(detail, 400))
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTransient, "yt-dlp", operation+": timed out", err)
	}
	lower := strings.ToLower(detail)
	for _, signature := range permanentSignatures {
		if strings.Contains(lower, signature) {
			return services.Wrap(services.ErrPermanent, "yt-dlp", operation, err)
		}
	}
	return services.Wrap(services.ErrTransient, "yt-dlp", operation, err)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
