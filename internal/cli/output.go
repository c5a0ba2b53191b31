package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/pfrederiksen/fixture-sync/internal/match"
	"github.com/pfrederiksen/fixture-sync/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatText, FormatJSON:
		return f, nil
	}
	return "", errors.Newf("invalid format: %s (must be 'text' or 'json')", s)
}

// FixturesResult is the JSON shape of a fixture listing.
type FixturesResult struct {
	CheckedAt time.Time      `json:"checked_at"`
	Count     int            `json:"count"`
	Fixtures  []*match.Match `json:"fixtures"`
}

// WriteRun writes a run record in the specified format
func WriteRun(w io.Writer, run *storage.Run, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, run)
	case FormatText:
		return writeRunText(w, run)
	default:
		return errors.Newf("unknown format: %s", format)
	}
}

// WriteFixtures writes upcoming fixtures in the specified format. Text output shows
// kickoff times in tz.
func WriteFixtures(w io.Writer, result *FixturesResult, format OutputFormat, tz *time.Location, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeFixturesText(w, result, tz, verbose)
	default:
		return errors.Newf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeRunText(w io.Writer, run *storage.Run) error {
	fmt.Fprintf(w, "Run:      %s\n", run.ID)
	fmt.Fprintf(w, "Status:   %s\n", run.Status)
	fmt.Fprintf(w, "Started:  %s\n", run.StartTime.Format(time.RFC3339))
	if run.EndTime != nil {
		fmt.Fprintf(w, "Finished: %s (%s)\n", run.EndTime.Format(time.RFC3339), run.Duration)
	}
	fmt.Fprintf(w, "Fixtures: %d found, %d created, %d updated, %d skipped\n",
		run.Found, run.Created, run.Updated, run.Skipped)
	if run.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", run.Message)
	}

	if len(run.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(run.Errors))
		for _, e := range run.Errors {
			fmt.Fprintf(w, "  %s: %s\n", e.Fixture, e.Error)
		}
	}
	return nil
}

// writeFixturesText outputs fixtures as human-readable text
func writeFixturesText(w io.Writer, result *FixturesResult, tz *time.Location, verbose bool) error {
	if tz == nil {
		tz = time.UTC
	}
	if result.Count == 0 {
		fmt.Fprintln(w, "No upcoming fixtures found.")
		return nil
	}

	for _, m := range result.Fixtures {
		side := "away"
		if m.IsHome {
			side = "home"
		}
		fmt.Fprintf(w, "%s  %s x %s (%s) - %s\n",
			m.Date.In(tz).Format("02/01 15:04"), m.Team, m.Opponent, side, m.Competition)
		if verbose {
			fmt.Fprintf(w, "     Key: %s\n", m.Key())
			if m.Location != "" {
				fmt.Fprintf(w, "     Location: %s\n", m.Location)
			}
			if m.Broadcast != "" {
				fmt.Fprintf(w, "     Broadcast: %s\n", m.Broadcast)
			}
			if m.Source != "" {
				fmt.Fprintf(w, "     Source: %s\n", m.Source)
			}
		}
	}
	fmt.Fprintf(w, "\nTotal: %d fixtures\n", result.Count)

	return nil
}
