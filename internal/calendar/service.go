package calendar

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrAuth marks errors caused by invalid or rejected calendar credentials. They are fatal
// for a sync run.
var ErrAuth = errors.New("calendar authentication failed")

// RemoteEvent is an event already present in the calendar and owned by fixture-sync.
type RemoteEvent struct {
	ID      string
	Key     string
	Summary string
	Start   time.Time
}

// Service is the subset of a calendar API the reconciler needs.
type Service interface {
	// List returns events carrying the sync marker that start within [from, to).
	List(ctx context.Context, calendarID string, from, to time.Time) ([]RemoteEvent, error)
	// Insert creates an event and returns its id.
	Insert(ctx context.Context, calendarID string, evt *Event) (string, error)
	// Update replaces the event with the given id.
	Update(ctx context.Context, calendarID, eventID string, evt *Event) error
}
