package enrich

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// thumbnailLadder lists YouTube thumbnail names from best to worst.
// Lower rungs always exist but may be gray placeholders.
var thumbnailLadder = []string{
	"maxresdefault",
	"sddefault",
	"hqdefault",
	"mqdefault",
	"default",
}

// minThumbnailBytes filters out the tiny placeholder images YouTube
// serves for thumbnail sizes a video never had.
const minThumbnailBytes = 1000

// downloadThumbnail fetches the best available cover image for videoID
// into destPath.
func (e *Enricher) downloadThumbnail(ctx context.Context, videoID, destPath string) error {
	var lastErr error
	for _, name := range thumbnailLadder {
		url := fmt.Sprintf("%s/vi/%s/%s.jpg", e.thumbnailBase, videoID, name)
		data, err := e.fetchImage(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		if len(data) < minThumbnailBytes {
			lastErr = fmt.Errorf("thumbnail %s too small (%d bytes)", name, len(data))
			continue
		}
		return os.WriteFile(destPath, data, 0o644)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no thumbnail available for %s", videoID)
	}
	return lastErr
}

func (e *Enricher) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := e.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail fetch returned %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 10<<20))
}
