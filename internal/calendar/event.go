package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/fixture-sync/internal/match"
)

const (
	// SyncMarkerKey is the private extended property flagging events owned by fixture-sync.
	SyncMarkerKey = "palmeirasSync"
	// FixtureIDKey is the private extended property holding the fixture's Unique Key.
	FixtureIDKey = "fixtureId"

	// MatchDuration is the fixed length of a fixture event.
	MatchDuration = 2 * time.Hour

	homeGlyph      = "🏠"
	awayGlyph      = "✈️"
	broadcastGlyph = "📺"
	unknownVenue   = "A definir"
)

// ReminderMinutes are the popup reminders set on every fixture event.
var ReminderMinutes = []int64{60, 15}

// Event is the calendar payload for one fixture.
type Event struct {
	Key         string
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	TimeZone    string
	Reminders   []int64
}

// PrivateProperties returns the extended properties that tag the event as synced.
func (e *Event) PrivateProperties() map[string]string {
	return map[string]string{
		SyncMarkerKey: "true",
		FixtureIDKey:  e.Key,
	}
}

// BuildEvent creates the calendar payload for a match. Start and end are expressed in the
// civil timezone tz.
func BuildEvent(m *match.Match, tz *time.Location) *Event {
	if tz == nil {
		tz = time.UTC
	}
	start := m.Date.In(tz)

	return &Event{
		Key:         m.Key(),
		Summary:     Summary(m),
		Description: Description(m, tz),
		Location:    venue(m),
		Start:       start,
		End:         start.Add(MatchDuration),
		TimeZone:    tz.String(),
		Reminders:   append([]int64(nil), ReminderMinutes...),
	}
}

// Summary builds the event title, e.g. "🏠 Palmeiras x Corinthians 📺 Globo".
func Summary(m *match.Match) string {
	glyph := awayGlyph
	if m.IsHome {
		glyph = homeGlyph
	}
	summary := fmt.Sprintf("%s %s x %s", glyph, m.Team, m.Opponent)
	if m.Broadcast != "" {
		summary += fmt.Sprintf(" %s %s", broadcastGlyph, m.Broadcast)
	}
	return summary
}

// Description builds the multi-line event body.
func Description(m *match.Match, tz *time.Location) string {
	side := "Fora"
	if m.IsHome {
		side = "Casa"
	}
	broadcast := m.Broadcast
	if broadcast == "" {
		broadcast = unknownVenue
	}

	lines := []string{
		fmt.Sprintf("🏆 Competição: %s", m.Competition),
		fmt.Sprintf("⚽ Adversário: %s", m.Opponent),
		fmt.Sprintf("🏟️ Local: %s", venue(m)),
		fmt.Sprintf("📍 Mando: %s", side),
		fmt.Sprintf("📺 Transmissão: %s", broadcast),
		fmt.Sprintf("🕒 Horário: %s", m.Date.In(tz).Format("02/01/2006 15:04 MST")),
		"",
		fmt.Sprintf("ID: %s", m.Key()),
	}
	if m.Source != "" {
		lines = append(lines, fmt.Sprintf("Fonte: %s", m.Source))
	}
	return strings.Join(lines, "\n")
}

func venue(m *match.Match) string {
	if m.Location == "" {
		return unknownVenue
	}
	return m.Location
}
