// Package enrich embeds chapter markers and cover art into downloaded
// audio files using ffmpeg. Enrichment is best effort: the caller keeps
// the file either way.
package enrich
