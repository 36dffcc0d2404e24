// Package config loads, normalizes, and validates podsink configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the YOUTUBE_API_KEY environment
// fallback. The channel list lives in a separate one-id-per-line file so
// operators can edit it without touching the TOML.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors before the run guard is taken.
package config
