package match

import (
	"regexp"
	"strconv"
	"time"

	_ "time/tzdata" // kickoff conversion must not depend on the host zoneinfo
)

// DefaultTimezone is the civil timezone the source publishes kickoff times in.
const DefaultTimezone = "America/Sao_Paulo"

var (
	// "10/1 – 20h30", "05/01 - 16h", "3/2—21h45"
	kickoffPattern = regexp.MustCompile(`(\d{1,2})\s*/\s*(\d{1,2})\s*[-–—]\s*(\d{1,2})\s*h\s*(\d{2})?`)
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Kickoff is a wall-clock fixture time as published by the source.
type Kickoff struct {
	Day, Month, Hour, Minute int
}

// ParseKickoff extracts a kickoff from "D/M – HHhMM" text.
// Returns false when the text holds no valid token.
func ParseKickoff(text string) (Kickoff, bool) {
	m := kickoffPattern.FindStringSubmatch(text)
	if m == nil {
		return Kickoff{}, false
	}

	k := Kickoff{}
	k.Day, _ = strconv.Atoi(m[1])
	k.Month, _ = strconv.Atoi(m[2])
	k.Hour, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		k.Minute, _ = strconv.Atoi(m[4])
	}

	if k.Month < 1 || k.Month > 12 || k.Day < 1 || k.Day > 31 || k.Hour > 23 || k.Minute > 59 {
		return Kickoff{}, false
	}
	return k, true
}

// YearFromCompetition returns a four-digit year embedded in a competition label, e.g.
// "Brasileirão 2026".
func YearFromCompetition(competition string) (int, bool) {
	s := yearPattern.FindString(competition)
	if s == "" {
		return 0, false
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return year, true
}

// Instant converts the kickoff into an absolute time for the given year, reading the wall
// clock in loc. The offset applied is the one loc defines for that date.
func (k Kickoff) Instant(year int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, time.Month(k.Month), k.Day, k.Hour, k.Minute, 0, 0, loc)
	// time.Date normalizes overflow such as 31/2; reject instead of shifting the fixture.
	if t.Day() != k.Day || int(t.Month()) != k.Month {
		return time.Time{}, false
	}
	return t, true
}

// ResolveDateInYear turns a kickoff text into an instant in a year the source printed
// alongside it. No rollover is applied.
func ResolveDateInYear(text string, year int, loc *time.Location) (time.Time, bool) {
	k, ok := ParseKickoff(text)
	if !ok {
		return time.Time{}, false
	}
	t, ok := k.Instant(year, loc)
	if !ok {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// ResolveDate turns a kickoff text into an instant. The year comes from the competition
// label when present, else from now. A kickoff already in the past during December is
// read as next year's fixture.
func ResolveDate(text, competition string, loc *time.Location, now time.Time) (time.Time, bool) {
	k, ok := ParseKickoff(text)
	if !ok {
		return time.Time{}, false
	}

	localNow := now.In(loc)
	year, ok := YearFromCompetition(competition)
	if !ok {
		year = localNow.Year()
	}

	t, ok := k.Instant(year, loc)
	if !ok {
		return time.Time{}, false
	}

	if t.Before(now) && localNow.Month() == time.December {
		if next, ok := k.Instant(year+1, loc); ok {
			t = next
		}
	}
	return t.UTC(), true
}
