package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/fixture-sync/internal/calendar"
	"github.com/pfrederiksen/fixture-sync/internal/match"
	"github.com/pfrederiksen/fixture-sync/internal/scraper"
)

// Parses a saved source page and writes its upcoming fixtures to an .ics file, so the
// parser and event layout can be checked without network or credentials.
//
// Usage: go run ./scripts/test-calendar.go page.html "Brasileirão 2026"
func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: test-calendar <page.html> <competition>")
		os.Exit(2)
	}
	path, competition := os.Args[1], os.Args[2]

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening page: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fragments, err := scraper.ParseFixtures(f, competition, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing page: %v\n", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(match.DefaultTimezone)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading timezone: %v\n", err)
		os.Exit(1)
	}

	normalizer := match.NewNormalizer(match.DefaultTeam, loc)
	var matches []*match.Match
	for _, frag := range fragments {
		if m, ok := normalizer.Normalize(frag); ok {
			matches = append(matches, m)
		}
	}
	upcoming := match.Process(matches, time.Now())

	fmt.Printf("Parsed %d fragments, %d matches, %d upcoming\n", len(fragments), len(matches), len(upcoming))
	for _, m := range upcoming {
		fmt.Printf("  %s  %s\n", m.Date.In(loc).Format("02/01 15:04"), calendar.Summary(m))
	}
	if len(upcoming) == 0 {
		return
	}

	icsContent := calendar.GenerateICS(upcoming, loc, match.DefaultTeam, time.Now())

	// Write to file (owner read/write only for security)
	filename := "test-fixtures.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
}
