// Package match provides the canonical fixture record and the steps that turn scraped
// fragments into the final set of fixtures to synchronize.
//
// A Match is identified by a Unique Key derived from the tracked team, the opponent and the
// competition. The key deliberately ignores the kickoff date, so a rescheduled fixture keeps
// pointing at the same calendar event. The Normalizer converts raw fragments into matches
// (timezone-correct kickoff, home/away inference, broadcast channel names) and Process
// filters, deduplicates and orders them.
package match
