// Package journal records download attempts in SQLite for operator
// inspection. It is diagnostic only: nothing in the pipeline reads it
// back to decide what to download.
package journal
