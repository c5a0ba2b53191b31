// Package calendar turns matches into calendar events and keeps a calendar in sync with them.
//
// Events owned by fixture-sync carry two private extended properties: a sync marker and the
// fixture's Unique Key. The Reconciler lists the marked events, then updates the event of
// every known key and inserts the rest, so repeated runs never duplicate a fixture and a
// rescheduled match moves its existing event.
//
// GenerateICS renders the same events as an iCalendar document for offline use.
package calendar
