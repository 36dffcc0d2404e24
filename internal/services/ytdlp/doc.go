// Package ytdlp wraps the yt-dlp command line tool for audio downloads.
//
// The Client builds arguments, enforces a timeout, retries transient
// failures with exponential backoff, and classifies tool errors into the
// shared services taxonomy exactly once. Command execution sits behind the
// Executor interface so tests drive the client without a yt-dlp binary.
package ytdlp
