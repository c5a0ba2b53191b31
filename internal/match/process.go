package match

import (
	"sort"
	"time"
)

// Process returns the fixtures to synchronize: only matches strictly after now, one match
// per Unique Key (the earliest kickoff wins), ordered by kickoff.
func Process(matches []*Match, now time.Time) []*Match {
	byKey := make(map[string]*Match, len(matches))
	for _, m := range matches {
		if m == nil || !m.Date.After(now) {
			continue
		}
		key := m.Key()
		if existing, ok := byKey[key]; ok && !m.Date.Before(existing.Date) {
			continue
		}
		byKey[key] = m
	}

	result := make([]*Match, 0, len(byKey))
	for _, m := range byKey {
		result = append(result, m)
	}

	// Sort by kickoff, then key for consistent output
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Key() < result[j].Key()
	})

	return result
}
