package scraper

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/fixture-sync/internal/logger"
	"github.com/pfrederiksen/fixture-sync/internal/match"
)

const (
	freeformLocationSelector  = `[class*="local"], [class*="venue"], [class*="estadio"], [class*="stadium"]`
	freeformBroadcastSelector = `[class*="transmiss"], [class*="broadcast"], [class*="tv"], [class*="canal"]`
)

// Parser extracts fixture fragments from a source page
type Parser struct {
	team string
}

// NewParser creates a Parser for the tracked team. The team name is used to tell the
// opponent apart when a row shows both sides.
func NewParser(team string) *Parser {
	if strings.TrimSpace(team) == "" {
		team = match.DefaultTeam
	}
	return &Parser{team: team}
}

// ParseFixtures parses a page for the default team.
func ParseFixtures(r io.Reader, competition, sourceURL string) ([]match.Fragment, error) {
	return NewParser(match.DefaultTeam).Parse(r, competition, sourceURL)
}

// Parse extracts fragments from HTML. Rows that do not look like fixtures are skipped; a
// page without fixtures yields an empty slice and no error.
func (p *Parser) Parse(r io.Reader, competition, sourceURL string) ([]match.Fragment, error) {
	doc, err := NewDocument(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing HTML")
	}

	fragments := make([]match.Fragment, 0)

	// Strategy 1: tables whose text reads like a schedule
	doc.SelectContaining("table", IsScheduleTable).Each(func(_ int, table *goquery.Selection) {
		fragments = append(fragments, p.parseTable(table, competition, sourceURL)...)
	})

	// Strategy 2: the free-form "upcoming games" section
	doc.SelectContaining("h1, h2, h3, h4", IsUpcomingHeading).Each(func(_ int, heading *goquery.Selection) {
		fragments = append(fragments, p.parseUpcoming(heading, competition, sourceURL)...)
	})

	logger.Debug("Parsed source page", logger.Fields{
		"source":    sourceURL,
		"fragments": len(fragments),
	})

	return fragments, nil
}

// columnLayout maps fixture fields to cell indexes.
type columnLayout struct {
	date, time, opponent, location, broadcast int
}

// defaultLayout is used when a table has no recognizable header: date/time, opponent,
// location, broadcast.
var defaultLayout = columnLayout{date: 0, time: -1, opponent: 1, location: 2, broadcast: 3}

// layoutFromHeader builds a columnLayout from header cells. It returns false unless both a
// date and an opponent column were found.
func layoutFromHeader(cells []string) (columnLayout, bool) {
	layout := columnLayout{date: -1, time: -1, opponent: -1, location: -1, broadcast: -1}
	for i, cell := range cells {
		for _, kind := range classifyHeaderCell(cell) {
			switch kind {
			case columnDate:
				if layout.date < 0 {
					layout.date = i
				}
			case columnTime:
				if layout.time < 0 && layout.date != i {
					layout.time = i
				}
			case columnOpponent:
				if layout.opponent < 0 {
					layout.opponent = i
				}
			case columnLocation:
				if layout.location < 0 {
					layout.location = i
				}
			case columnBroadcast:
				if layout.broadcast < 0 {
					layout.broadcast = i
				}
			}
		}
	}
	return layout, layout.date >= 0 && layout.opponent >= 0
}

func rowCells(row *goquery.Selection) []string {
	cells := make([]string, 0)
	row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cleanText(cell))
	})
	return cells
}

func cellAt(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

// parseTable extracts fragments from a schedule table
func (p *Parser) parseTable(table *goquery.Selection, competition, sourceURL string) []match.Fragment {
	fragments := make([]match.Fragment, 0)
	layout := defaultLayout

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		// Nested tables are handled on their own
		if ClosestTag(row, "table").Get(0) != table.Get(0) {
			return
		}

		cells := rowCells(row)
		if IsHeaderRow(cells) {
			if l, ok := layoutFromHeader(cells); ok {
				layout = l
			}
			return
		}
		if len(cells) < 3 {
			return
		}

		dateTime := cellAt(cells, layout.date)
		if layout.time >= 0 {
			dateTime = dateTime + " " + cellAt(cells, layout.time)
		}

		opponent := p.opponentFromCell(row, cells, layout.opponent)
		if IsPlaceholderOpponent(opponent) || isHeaderTerm(opponent) {
			return
		}

		fragments = append(fragments, match.Fragment{
			DateTimeText:  CanonicalDateTime(dateTime),
			Year:          TokenYear(dateTime),
			OpponentText:  opponent,
			LocationText:  cellAt(cells, layout.location),
			BroadcastText: cellAt(cells, layout.broadcast),
			ExtraText:     strings.Join(cells, " "),
			Competition:   competition,
			SourceURL:     sourceURL,
		})
	})

	return fragments
}

// opponentFromCell reads the opponent, handling "Palmeiras x Santos" cells and cells that
// only show a crest image.
func (p *Parser) opponentFromCell(row *goquery.Selection, cells []string, idx int) string {
	text := cellAt(cells, idx)
	if text == "" && idx >= 0 {
		if img := row.Find("td, th").Eq(idx).Find("img[alt]"); img.Length() > 0 {
			text = p.opponentFromImages(img)
		}
	}
	return p.stripTeam(text)
}

// stripTeam removes the tracked team from "A x B" / "A vs B" text.
func (p *Parser) stripTeam(text string) string {
	lower := strings.ToLower(text)
	for _, sep := range []string{" x ", " vs. ", " vs ", " × "} {
		i := strings.Index(lower, sep)
		if i < 0 {
			continue
		}
		left := strings.TrimSpace(text[:i])
		right := strings.TrimSpace(text[i+len(sep):])
		if p.isTeam(left) {
			return right
		}
		if p.isTeam(right) {
			return left
		}
	}
	return text
}

func (p *Parser) isTeam(name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(p.team))
}

// opponentFromImages returns the first image label that does not name the tracked team.
func (p *Parser) opponentFromImages(imgs *goquery.Selection) string {
	opponent := ""
	imgs.EachWithBreak(func(_ int, img *goquery.Selection) bool {
		alt := cleanImageLabel(img.AttrOr("alt", ""))
		if alt == "" || p.isTeam(alt) {
			return true
		}
		opponent = alt
		return false
	})
	return opponent
}

// parseUpcoming extracts fragments from the free-form section that follows heading. Each
// crest image climbs to the nearest ancestor holding one date token; that ancestor is a row.
func (p *Parser) parseUpcoming(heading *goquery.Selection, competition, sourceURL string) []match.Fragment {
	container := ClosestTag(heading, "section", "article", "main")
	if container.Length() == 0 {
		container = heading.Parent()
	}

	fragments := make([]match.Fragment, 0)
	seen := make(map[*html.Node]bool)

	container.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		row := Closest(img, HasDateToken)
		key := nodeKey(row)
		if key == nil || seen[key] {
			return
		}
		seen[key] = true

		// Rows inside schedule tables were already handled by the table strategy
		if table := ClosestTag(row, "table"); table.Length() > 0 && IsScheduleTable(table.Text()) {
			return
		}

		opponent := p.opponentFromImages(row.Find("img[alt]"))
		if IsPlaceholderOpponent(opponent) {
			return
		}

		text := cleanText(row)
		token := dateTokenPattern.FindString(text)
		fragments = append(fragments, match.Fragment{
			DateTimeText:  CanonicalDateTime(token),
			Year:          TokenYear(token),
			OpponentText:  opponent,
			LocationText:  cleanText(row.Find(freeformLocationSelector).First()),
			BroadcastText: cleanText(row.Find(freeformBroadcastSelector).First()),
			ExtraText:     text,
			Competition:   competition,
			SourceURL:     sourceURL,
		})
	})

	return fragments
}
