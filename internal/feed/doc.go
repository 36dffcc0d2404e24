// Package feed produces candidate videos for the pipeline and decides which
// of them are eligible for download.
//
// The Source interface abstracts where candidates come from: the YouTube Data
// API in normal operation, deterministic fixtures in dry-run mode. Filtering
// is a pure function over the returned records so the eligibility rules are
// testable without any network.
package feed
