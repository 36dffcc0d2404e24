// Package runlock enforces single-instance execution across processes.
//
// Two layers cooperate: a kernel advisory lock (flock) held for the whole
// run, and a JSON owner token recording pid, hostname, and acquisition time.
// The flock makes acquisition atomic — two processes can never both observe
// "absent" and proceed — while the token supports staleness diagnostics and
// reclamation after an uncatchable kill leaves it behind.
package runlock
