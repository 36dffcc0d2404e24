package logging

import "log/slog"

// Shared field names so identifiers stay consistent across packages.
const (
	FieldRunID   = "run_id"
	FieldChannel = "channel_id"
	FieldVideoID = "video_id"
	FieldTitle   = "title"
	FieldOutcome = "outcome"
	FieldReason  = "reason"
	FieldPath    = "path"
)

// Error returns a standard error attribute, tolerating nil.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
