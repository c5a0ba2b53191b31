// Package cli implements the command-line interface for fixture-sync.
//
// The cli package provides the Cobra-based CLI: a one-shot sync, the last run's status, a
// cron loop with optional Prometheus metrics, a listing of upcoming fixtures and an
// iCalendar export. Output is available as text or JSON.
package cli
