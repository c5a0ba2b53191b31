package calendar

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/fixture-sync/internal/logger"
	"github.com/pfrederiksen/fixture-sync/internal/match"
)

const (
	DefaultCalendarID = "primary"
	DefaultWriteDelay = 100 * time.Millisecond
	DefaultLookback   = 30 * 24 * time.Hour
	DefaultLookahead  = 365 * 24 * time.Hour
)

// ReconcilerConfig configures a Reconciler. Zero values fall back to the defaults above.
type ReconcilerConfig struct {
	CalendarID string
	TimeZone   *time.Location
	WriteDelay time.Duration
	Lookback   time.Duration
	Lookahead  time.Duration
	Now        func() time.Time
}

// WriteError records a calendar write that failed for a single fixture.
type WriteError struct {
	Fixture string `json:"fixture"`
	Error   string `json:"error"`
}

// Result summarizes one reconciliation pass.
type Result struct {
	Created int
	Updated int
	Skipped int
	Errors  []WriteError
}

// Reconciler brings the calendar in line with a list of matches.
type Reconciler struct {
	service    Service
	calendarID string
	tz         *time.Location
	writeDelay time.Duration
	lookback   time.Duration
	lookahead  time.Duration
	now        func() time.Time
}

// NewReconciler creates a Reconciler writing through svc.
func NewReconciler(svc Service, cfg ReconcilerConfig) *Reconciler {
	r := &Reconciler{
		service:    svc,
		calendarID: cfg.CalendarID,
		tz:         cfg.TimeZone,
		writeDelay: cfg.WriteDelay,
		lookback:   cfg.Lookback,
		lookahead:  cfg.Lookahead,
		now:        cfg.Now,
	}
	if r.calendarID == "" {
		r.calendarID = DefaultCalendarID
	}
	if r.tz == nil {
		r.tz = time.UTC
	}
	if r.writeDelay <= 0 {
		r.writeDelay = DefaultWriteDelay
	}
	if r.lookback <= 0 {
		r.lookback = DefaultLookback
	}
	if r.lookahead <= 0 {
		r.lookahead = DefaultLookahead
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Reconcile updates the event of every match already in the calendar and inserts the rest.
// A failed write is recorded and counted as skipped; the loop continues with the next match.
// Inventory failures, authentication failures and context cancellation abort the pass.
func (r *Reconciler) Reconcile(ctx context.Context, matches []*match.Match) (*Result, error) {
	now := r.now()
	existing, err := r.inventory(ctx, now.Add(-r.lookback), now.Add(r.lookahead))
	if err != nil {
		return nil, err
	}

	limiter := rate.NewLimiter(rate.Every(r.writeDelay), 1)

	result := &Result{}
	for _, m := range matches {
		if err := limiter.Wait(ctx); err != nil {
			return result, errors.Wrap(err, "waiting to write event")
		}

		evt := BuildEvent(m, r.tz)
		id, found := existing[evt.Key]

		if found {
			err = r.service.Update(ctx, r.calendarID, id, evt)
		} else {
			id, err = r.service.Insert(ctx, r.calendarID, evt)
		}

		if err != nil {
			if errors.Is(err, ErrAuth) || ctx.Err() != nil {
				return result, err
			}
			logger.Error("Calendar write failed", logger.Fields{
				"fixture": evt.Summary,
				"key":     evt.Key,
			}, err)
			result.Skipped++
			result.Errors = append(result.Errors, WriteError{Fixture: evt.Summary, Error: err.Error()})
			continue
		}

		if found {
			result.Updated++
			logger.Debug("Event updated", logger.Fields{"fixture": evt.Summary, "event_id": id})
		} else {
			result.Created++
			existing[evt.Key] = id
			logger.Debug("Event created", logger.Fields{"fixture": evt.Summary, "event_id": id})
		}
	}

	logger.Info("Calendar reconciled", logger.Fields{
		"created": result.Created,
		"updated": result.Updated,
		"skipped": result.Skipped,
	})
	return result, nil
}

// inventory maps fixture keys to event ids for synced events in [from, to].
// When a key appears more than once the first event listed wins.
func (r *Reconciler) inventory(ctx context.Context, from, to time.Time) (map[string]string, error) {
	events, err := r.service.List(ctx, r.calendarID, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "building calendar inventory")
	}

	byKey := make(map[string]string, len(events))
	for _, e := range events {
		if e.Key == "" {
			continue
		}
		if kept, ok := byKey[e.Key]; ok {
			logger.Warn("Duplicate synced event left untouched", logger.Fields{
				"key":     e.Key,
				"kept_id": kept,
				"id":      e.ID,
				"summary": e.Summary,
				"start":   e.Start.Format(time.RFC3339),
			})
			continue
		}
		byKey[e.Key] = e.ID
	}
	logger.Debug("Calendar inventory loaded", logger.Fields{"events": len(events), "keys": len(byKey)})
	return byKey, nil
}
