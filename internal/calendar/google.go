package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const listPageSize = 250

// GoogleService implements Service on top of the Google Calendar v3 API
type GoogleService struct {
	events *gcal.EventsService
}

// NewGoogleService authenticates with service-account JSON and returns a GoogleService.
// Credential errors are marked with ErrAuth.
func NewGoogleService(ctx context.Context, credentialsJSON []byte) (*GoogleService, error) {
	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, gcal.CalendarScope)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "parsing service account credentials"), ErrAuth)
	}

	srv, err := gcal.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "creating calendar client"), ErrAuth)
	}

	return NewGoogleServiceFromClient(srv), nil
}

// NewGoogleServiceFromClient wraps an existing calendar client.
func NewGoogleServiceFromClient(srv *gcal.Service) *GoogleService {
	return &GoogleService{events: srv.Events}
}

// List returns events tagged with the sync marker.
func (g *GoogleService) List(ctx context.Context, calendarID string, from, to time.Time) ([]RemoteEvent, error) {
	call := g.events.List(calendarID).
		Context(ctx).
		PrivateExtendedProperty(fmt.Sprintf("%s=true", SyncMarkerKey)).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		ShowDeleted(false).
		MaxResults(listPageSize)

	var events []RemoteEvent
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			events = append(events, toRemoteEvent(item))
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "listing synced events")
	}
	return events, nil
}

// Insert creates an event.
func (g *GoogleService) Insert(ctx context.Context, calendarID string, evt *Event) (string, error) {
	created, err := g.events.Insert(calendarID, toGoogleEvent(evt)).Context(ctx).Do()
	if err != nil {
		return "", classify(err, "inserting event")
	}
	return created.Id, nil
}

// Update replaces an existing event.
func (g *GoogleService) Update(ctx context.Context, calendarID, eventID string, evt *Event) error {
	if _, err := g.events.Update(calendarID, eventID, toGoogleEvent(evt)).Context(ctx).Do(); err != nil {
		return classify(err, "updating event %s", eventID)
	}
	return nil
}

func toGoogleEvent(evt *Event) *gcal.Event {
	overrides := make([]*gcal.EventReminder, 0, len(evt.Reminders))
	for _, minutes := range evt.Reminders {
		overrides = append(overrides, &gcal.EventReminder{Method: "popup", Minutes: minutes})
	}

	return &gcal.Event{
		Summary:     evt.Summary,
		Description: evt.Description,
		Location:    evt.Location,
		Start: &gcal.EventDateTime{
			DateTime: evt.Start.Format(time.RFC3339),
			TimeZone: evt.TimeZone,
		},
		End: &gcal.EventDateTime{
			DateTime: evt.End.Format(time.RFC3339),
			TimeZone: evt.TimeZone,
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			Overrides:       overrides,
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: evt.PrivateProperties(),
		},
	}
}

func toRemoteEvent(item *gcal.Event) RemoteEvent {
	re := RemoteEvent{ID: item.Id, Summary: item.Summary}
	if item.ExtendedProperties != nil {
		re.Key = item.ExtendedProperties.Private[FixtureIDKey]
	}
	if item.Start != nil && item.Start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.Start.DateTime); err == nil {
			re.Start = t
		}
	}
	return re
}

// classify wraps err and marks credential failures with ErrAuth: token exchange errors,
// 401 responses and 403 responses that are not quota related.
func classify(err error, format string, args ...interface{}) error {
	wrapped := errors.Wrapf(err, format, args...)
	if isAuthFailure(err) {
		return errors.Mark(wrapped, ErrAuth)
	}
	return wrapped
}

func isAuthFailure(err error) bool {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return true
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case http.StatusUnauthorized:
		return true
	case http.StatusForbidden:
		for _, item := range apiErr.Errors {
			if quotaReasons[item.Reason] {
				return false
			}
		}
		return true
	}
	return false
}

var quotaReasons = map[string]bool{
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
}
