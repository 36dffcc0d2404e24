// Package logging builds the slog loggers used by the podsink CLI and
// pipeline.
//
// It supports a human-oriented console format for interactive use and a JSON
// format for cron/log-shipping setups, plus shared field-name constants so
// run, channel, and video identifiers stay greppable across packages.
package logging
