package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/fixture-sync/internal/match"
)

var (
	dateKeywords      = []string{"data", "date", "dia"}
	timeKeywords      = []string{"hora", "horário", "horario", "time"}
	opponentKeywords  = []string{"adversário", "adversario", "opponent", "rival", "confronto"}
	locationKeywords  = []string{"local", "estádio", "estadio", "venue", "stadium"}
	broadcastKeywords = []string{"transmissão", "transmissao", "tv", "broadcast", "canal"}

	upcomingHeadings = []string{"próximos jogos", "proximos jogos", "próximas partidas", "proximas partidas", "upcoming games", "upcoming matches"}

	placeholderOpponents = map[string]bool{
		"":            true,
		"-":           true,
		"–":           true,
		"?":           true,
		"tbd":         true,
		"a definir":   true,
		"a confirmar": true,
		"indefinido":  true,
	}

	// "10/01 • 20:30", "SÁB 10/01/2026 às 20h30", "10/1 20h"
	dateTokenPattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?\D{0,12}?(\d{1,2})\s*[:hH]\s*(\d{2})?`)

	imageLabelPrefix = regexp.MustCompile(`(?i)^(escudo|logo|bandeira)( d[aeo]s?)?\s+`)
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// IsScheduleTable reports whether a table's text looks like a fixture list: it must mention
// a date term plus a time or opponent term.
func IsScheduleTable(text string) bool {
	lower := strings.ToLower(text)
	return containsAny(lower, dateKeywords) && (containsAny(lower, timeKeywords) || containsAny(lower, opponentKeywords))
}

// isHeaderTerm reports whether a cell consists only of column-title words, e.g. "Data",
// "Data/Hora" or "Adversário".
func isHeaderTerm(cell string) bool {
	words := headerWords(cell)
	if len(words) == 0 {
		return false
	}
	for _, w := range words {
		if w == "e" || w == "&" {
			continue
		}
		if columnKind(w) == columnUnknown {
			return false
		}
	}
	return true
}

// IsHeaderRow reports whether a row repeats the column titles instead of holding data: no
// cell carries a date token and most non-empty cells are column titles.
func IsHeaderRow(cells []string) bool {
	filled, titles := 0, 0
	for _, c := range cells {
		if c == "" {
			continue
		}
		if dateTokenPattern.MatchString(c) {
			return false
		}
		filled++
		if isHeaderTerm(c) {
			titles++
		}
	}
	return titles > 0 && titles*2 > filled
}

// IsPlaceholderOpponent reports whether an opponent cell holds no real team name.
func IsPlaceholderOpponent(text string) bool {
	return placeholderOpponents[strings.ToLower(collapseSpace(text))]
}

// IsUpcomingHeading reports whether a heading introduces the free-form upcoming games list.
func IsUpcomingHeading(text string) bool {
	return containsAny(strings.ToLower(collapseSpace(text)), upcomingHeadings)
}

// HasDateToken reports whether text carries exactly one day/month plus time token.
func HasDateToken(text string) bool {
	return len(dateTokenPattern.FindAllString(text, 2)) == 1
}

// CanonicalDateTime rewrites a date/time token into the "D/M – HHhMM" form the normalizer
// reads. Text that already parses, or that has no token, is returned unchanged.
func CanonicalDateTime(text string) string {
	text = collapseSpace(text)
	if _, ok := match.ParseKickoff(text); ok {
		return text
	}
	m := dateTokenPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	minute := m[5]
	if minute == "" {
		minute = "00"
	}
	return fmt.Sprintf("%s/%s – %sh%s", m[1], m[2], m[4], minute)
}

// TokenYear returns the year written in a date token ("10/01/2027 às 20h"), or 0 when the
// token has none. Two-digit years are read as 20xx.
func TokenYear(text string) int {
	m := dateTokenPattern.FindStringSubmatch(text)
	if m == nil || m[3] == "" {
		return 0
	}
	year, err := strconv.Atoi(m[3])
	if err != nil {
		return 0
	}
	if year < 100 {
		year += 2000
	}
	return year
}

// cleanImageLabel strips "Escudo do"-style prefixes from an image's alt text.
func cleanImageLabel(alt string) string {
	return strings.TrimSpace(imageLabelPrefix.ReplaceAllString(collapseSpace(alt), ""))
}

type column int

const (
	columnUnknown column = iota
	columnDate
	columnTime
	columnOpponent
	columnLocation
	columnBroadcast
)

// columnKind classifies a header word.
func columnKind(word string) column {
	word = strings.ToLower(strings.TrimSpace(word))
	for _, group := range []struct {
		kind  column
		words []string
	}{
		{columnDate, dateKeywords},
		{columnTime, timeKeywords},
		{columnOpponent, opponentKeywords},
		{columnLocation, locationKeywords},
		{columnBroadcast, broadcastKeywords},
	} {
		for _, w := range group.words {
			if word == w {
				return group.kind
			}
		}
	}
	switch word {
	case "jogo", "partida", "match":
		return columnOpponent
	}
	return columnUnknown
}

// classifyHeaderCell returns the kinds a header cell announces, e.g. "Data/Hora" gives
// date and time.
func classifyHeaderCell(cell string) []column {
	var kinds []column
	for _, w := range headerWords(cell) {
		if k := columnKind(w); k != columnUnknown {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// headerWords splits a header cell into lowercase words. "Onde assistir" counts as one
// broadcast word.
func headerWords(cell string) []string {
	lower := strings.ToLower(collapseSpace(cell))
	lower = strings.ReplaceAll(lower, "onde assistir", "tv")
	return strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '/' || r == '-' || r == '|' || r == ':'
	})
}
