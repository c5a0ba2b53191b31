package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/fixture-sync/internal/match"
)

const (
	icsProdID   = "-//fixture-sync//fixture-sync//PT"
	icsUIDHost  = "fixture-sync"
	icsMaxOctet = 75
)

// GenerateICS renders matches as an iCalendar (.ics) document carrying the same summary,
// description, duration and reminders as the events written to Google Calendar.
// Returns an empty string when there are no matches.
func GenerateICS(matches []*match.Match, tz *time.Location, calendarName string, now time.Time) string {
	if len(matches) == 0 {
		return ""
	}

	var ics strings.Builder
	w := func(format string, args ...interface{}) {
		ics.WriteString(foldICSLine(fmt.Sprintf(format, args...)))
		ics.WriteString("\r\n")
	}

	w("BEGIN:VCALENDAR")
	w("VERSION:2.0")
	w("PRODID:%s", icsProdID)
	w("CALSCALE:GREGORIAN")
	w("METHOD:PUBLISH")
	if calendarName != "" {
		w("X-WR-CALNAME:%s", escapeICS(calendarName))
	}
	if tz != nil {
		w("X-WR-TIMEZONE:%s", tz.String())
	}

	stamp := formatICSTime(now)
	for _, m := range matches {
		evt := BuildEvent(m, tz)

		w("BEGIN:VEVENT")
		// UID is the fixture key so re-imports replace rather than duplicate
		w("UID:%s@%s", evt.Key, icsUIDHost)
		w("DTSTAMP:%s", stamp)
		w("DTSTART:%s", formatICSTime(evt.Start))
		w("DTEND:%s", formatICSTime(evt.End))
		w("SUMMARY:%s", escapeICS(evt.Summary))
		w("DESCRIPTION:%s", escapeICS(evt.Description))
		w("LOCATION:%s", escapeICS(evt.Location))
		if m.Source != "" {
			w("URL:%s", m.Source)
		}
		w("STATUS:CONFIRMED")
		w("TRANSP:OPAQUE")
		for _, minutes := range evt.Reminders {
			w("BEGIN:VALARM")
			w("ACTION:DISPLAY")
			w("DESCRIPTION:%s", escapeICS(evt.Summary))
			w("TRIGGER:-PT%dM", minutes)
			w("END:VALARM")
		}
		w("END:VEVENT")
	}

	w("END:VCALENDAR")
	return ics.String()
}

// formatICSTime formats a time.Time as an iCalendar datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar format
func escapeICS(s string) string {
	// Replace special characters according to RFC 5545
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// foldICSLine splits content lines longer than 75 octets, never inside a UTF-8 sequence.
func foldICSLine(line string) string {
	if len(line) <= icsMaxOctet {
		return line
	}

	var b strings.Builder
	limit := icsMaxOctet
	width := 0
	for _, r := range line {
		size := len(string(r))
		if width+size > limit {
			b.WriteString("\r\n ")
			width = 0
			// continuation lines lose one octet to the leading space
			limit = icsMaxOctet - 1
		}
		b.WriteRune(r)
		width += size
	}
	return b.String()
}
