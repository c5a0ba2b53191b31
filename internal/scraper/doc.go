// Package scraper fetches fixture pages and extracts raw fixture rows from their HTML.
//
// The Fetcher retrieves a page with browser-like headers and linear backoff, reporting
// 404/410 responses as "not published yet" instead of failing. The Parser sniffs the page
// for schedule tables and for a free-form "upcoming games" section, turning every usable
// row into a match.Fragment. Rows that do not look like fixtures are skipped silently.
package scraper
