package match

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidDate is returned by New when the kickoff is the zero time.
	ErrInvalidDate = errors.New("match: kickoff date is not set")
	// ErrEmptyOpponent is returned by New when the opponent is blank.
	ErrEmptyOpponent = errors.New("match: opponent is empty")
)

// DefaultTeam is the tracked team when none is configured.
const DefaultTeam = "Palmeiras"

// Fragment is a raw fixture row as extracted from a source page.
type Fragment struct {
	DateTimeText  string `json:"date_time_text"`
	OpponentText  string `json:"opponent_text"`
	LocationText  string `json:"location_text"`
	BroadcastText string `json:"broadcast_text"`
	ExtraText     string `json:"extra_text,omitempty"` // Whole-row text, used for home/away hints
	Year          int    `json:"year,omitempty"` // Printed next to the date; 0 when the source omits it
	Competition   string `json:"competition"`
	SourceURL     string `json:"source_url"`
}

// Match represents one scheduled fixture of the tracked team
type Match struct {
	Team        string    `json:"team"`
	Date        time.Time `json:"date"`
	Opponent    string    `json:"opponent"`
	IsHome      bool      `json:"is_home"`
	Competition string    `json:"competition"`
	Location    string    `json:"location,omitempty"`
	Broadcast   string    `json:"broadcast,omitempty"`
	Source      string    `json:"source"`
}

// New creates a validated Match. Text fields are trimmed and an empty team falls back to
// DefaultTeam.
func New(team string, date time.Time, opponent string, isHome bool, competition, location, broadcast, source string) (*Match, error) {
	if date.IsZero() {
		return nil, ErrInvalidDate
	}
	opponent = strings.TrimSpace(opponent)
	if opponent == "" {
		return nil, ErrEmptyOpponent
	}
	team = strings.TrimSpace(team)
	if team == "" {
		team = DefaultTeam
	}

	return &Match{
		Team:        team,
		Date:        date.UTC(),
		Opponent:    opponent,
		IsHome:      isHome,
		Competition: strings.TrimSpace(competition),
		Location:    strings.TrimSpace(location),
		Broadcast:   strings.TrimSpace(broadcast),
		Source:      source,
	}, nil
}

// Key returns the Unique Key of the match.
func (m *Match) Key() string {
	return UniqueKey(m.Team, m.Opponent, m.Competition)
}

// UniqueKey builds the stable fixture identity "{team}_vs_{opponent}_{competition}".
// The key stays the same when the kickoff date or time changes.
func UniqueKey(team, opponent, competition string) string {
	return normalizeKeyPart(team) + "_vs_" + normalizeKeyPart(opponent) + "_" + normalizeKeyPart(competition)
}

// normalizeKeyPart lowercases s, turns whitespace runs into a single underscore and
// drops everything outside [a-z0-9_].
func normalizeKeyPart(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	joined := strings.Join(fields, "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
