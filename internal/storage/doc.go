// Package storage records the outcome of sync runs.
//
// Only the most recent run is kept: each run overwrites a single JSON file (by default
// ~/.local/share/fixture-sync/status.json) holding its id, status, timing, counts and any
// per-fixture write errors. No fixture data is stored.
package storage
