// Package pipeline orchestrates a batch run: acquire the run guard, list
// each channel's candidates, filter, download sequentially, commit the
// ledger, and move finished files into the library.
package pipeline
