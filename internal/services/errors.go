package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks setup problems that abort the run before any
	// video-level work begins.
	ErrConfiguration = errors.New("configuration error")
	// ErrExternalTool marks failures launching or driving an external binary.
	ErrExternalTool = errors.New("external tool error")
	// ErrTransient marks failures worth retrying: the video stays out of the
	// ledger so a future run attempts it again.
	ErrTransient = errors.New("transient failure")
	// ErrPermanent marks failures that retrying cannot fix (video removed,
	// private, region-locked). Logged, never ledgered, never retried within
	// a run.
	ErrPermanent = errors.New("permanent failure")
	// ErrNotFound marks missing channels or playlists.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error carrying tool/operation context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinels above; nil defaults to ErrTransient.
func Wrap(marker error, tool, operation string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := buildDetail(tool, operation)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPermanent reports whether err was classified as unretryable.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

func buildDetail(tool, operation string) string {
	parts := make([]string, 0, 2)
	if tool = strings.TrimSpace(tool); tool != "" {
		parts = append(parts, tool)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
