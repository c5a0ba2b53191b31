package match

import (
	"strings"
	"time"
)

// DefaultHomeKeywords are venue names that mark a home fixture.
var DefaultHomeKeywords = []string{
	"allianz parque",
	"arena palmeiras",
	"palestra itália",
	"palestra italia",
}

// DefaultChannels maps lowercase broadcast tokens (names and the numeric codes some
// listings use) to display names.
var DefaultChannels = map[string]string{
	"globo":        "Globo",
	"tv globo":     "Globo",
	"rede globo":   "Globo",
	"sportv":       "SporTV",
	"sportv 2":     "SporTV 2",
	"premiere":     "Premiere",
	"globoplay":    "Globoplay",
	"record":       "Record",
	"band":         "Band",
	"espn":         "ESPN",
	"espn 4":       "ESPN 4",
	"disney+":      "Disney+",
	"star+":        "Disney+",
	"paramount+":   "Paramount+",
	"prime":        "Prime Video",
	"prime video":  "Prime Video",
	"amazon":       "Prime Video",
	"tnt":          "TNT Sports",
	"max":          "Max",
	"cazetv":       "CazéTV",
	"cazétv":       "CazéTV",
	"youtube":      "YouTube",
	"palmeiras tv": "Palmeiras TV",

	"4":   "Globo",
	"5":   "Globo",
	"39":  "SporTV",
	"40":  "SporTV 2",
	"111": "Premiere",
	"70":  "ESPN",
}

// Normalizer builds canonical matches from raw fragments.
type Normalizer struct {
	team         string
	location     *time.Location
	homeKeywords []string
	channels     map[string]string
	now          func() time.Time
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithHomeKeywords replaces the home venue keywords. An empty list keeps the defaults.
func WithHomeKeywords(keywords []string) NormalizerOption {
	return func(n *Normalizer) {
		if lowered := lowerAll(keywords); len(lowered) > 0 {
			n.homeKeywords = lowered
		}
	}
}

// WithChannels adds or overrides broadcast channel mappings.
func WithChannels(extra map[string]string) NormalizerOption {
	return func(n *Normalizer) {
		for k, v := range extra {
			n.channels[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
}

// WithClock sets the function used for "now".
func WithClock(now func() time.Time) NormalizerOption {
	return func(n *Normalizer) {
		n.now = now
	}
}

// NewNormalizer creates a Normalizer for team reading kickoff times in loc.
func NewNormalizer(team string, loc *time.Location, opts ...NormalizerOption) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	n := &Normalizer{
		team:         team,
		location:     loc,
		homeKeywords: lowerAll(DefaultHomeKeywords),
		channels:     make(map[string]string, len(DefaultChannels)),
		now:          time.Now,
	}
	for k, v := range DefaultChannels {
		n.channels[k] = v
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Location returns the civil timezone kickoff times are read in.
func (n *Normalizer) Location() *time.Location {
	return n.location
}

// Normalize converts a fragment into a Match. It returns false when the kickoff text
// cannot be parsed or the opponent is empty; such fragments are dropped.
func (n *Normalizer) Normalize(f Fragment) (*Match, bool) {
	var (
		date time.Time
		ok   bool
	)
	if f.Year > 0 {
		date, ok = ResolveDateInYear(f.DateTimeText, f.Year, n.location)
	} else {
		date, ok = ResolveDate(f.DateTimeText, f.Competition, n.location, n.now())
	}
	if !ok {
		return nil, false
	}

	isHome := n.IsHomeVenue(f.LocationText) || n.IsHomeVenue(f.ExtraText)

	m, err := New(n.team, date, f.OpponentText, isHome, f.Competition, f.LocationText, n.NormalizeBroadcast(f.BroadcastText), f.SourceURL)
	if err != nil {
		return nil, false
	}
	return m, true
}

// IsHomeVenue reports whether text mentions a home venue keyword.
// Anything else, including empty text, counts as away.
func (n *Normalizer) IsHomeVenue(text string) bool {
	lower := strings.ToLower(text)
	if lower == "" {
		return false
	}
	for _, kw := range n.homeKeywords {
		if kw != "" && strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NormalizeBroadcast splits raw broadcast text on commas and pipes, maps each token to its
// display name and joins the result with ", ". Unknown tokens are kept verbatim.
func (n *Normalizer) NormalizeBroadcast(raw string) string {
	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '|'
	})

	seen := make(map[string]bool, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.Join(strings.Fields(tok), " ")
		if tok == "" {
			continue
		}
		name, ok := n.channels[strings.ToLower(tok)]
		if !ok {
			name = tok
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return strings.Join(out, ", ")
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
