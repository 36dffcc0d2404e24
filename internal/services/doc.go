// Package services defines the failure taxonomy shared by the external-tool
// wrappers and the pipeline.
//
// Every error that crosses a tool boundary (yt-dlp, ffmpeg, the YouTube API)
// is tagged exactly once with one of the sentinel markers below; downstream
// code decides ledger and retry behavior with errors.Is instead of
// re-inspecting error text.
package services
