package cli

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/fixture-sync/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate        SortOrder = "date"
	SortByOpponent    SortOrder = "opponent"
	SortByCompetition SortOrder = "competition"
)

// ParseSortOrder validates a --sort value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case SortByDate, SortByOpponent, SortByCompetition:
		return o, nil
	}
	return "", errors.Newf("invalid sort order: %s (must be 'date', 'opponent' or 'competition')", s)
}

// sortMatches sorts a slice of matches based on the specified sort order
func sortMatches(matches []*match.Match, sortOrder SortOrder) {
	switch sortOrder {
	case SortByDate:
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Date.Before(matches[j].Date)
		})
	case SortByOpponent:
		sort.SliceStable(matches, func(i, j int) bool {
			a, b := strings.ToLower(matches[i].Opponent), strings.ToLower(matches[j].Opponent)
			if a != b {
				return a < b
			}
			// If opponents are equal, sort by date
			return matches[i].Date.Before(matches[j].Date)
		})
	case SortByCompetition:
		sort.SliceStable(matches, func(i, j int) bool {
			if matches[i].Competition != matches[j].Competition {
				return matches[i].Competition < matches[j].Competition
			}
			// If competitions are equal, sort by date
			return matches[i].Date.Before(matches[j].Date)
		})
	}
}
