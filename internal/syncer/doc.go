// Package syncer runs the fixture pipeline end to end.
//
// A run validates the configuration, fetches and parses every source page, normalizes and
// deduplicates the fixtures, and reconciles them with the calendar. The outcome is always
// written to the status store, including when the run fails, and fatal failures are sent
// to the configured notifier.
package syncer
