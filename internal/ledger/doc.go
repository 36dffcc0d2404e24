// Package ledger persists the durable record of completed downloads.
//
// The backing store is a single JSON object mapping video id to entry, chosen
// so operators can inspect and hand-edit it. Every mutation rewrites a
// complete snapshot through a temp-file rename, so a crash never leaves a
// half-written ledger. The run guard excludes concurrent writers; this
// package only has to be crash-safe for a single writer.
package ledger
