package match

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMatch(t *testing.T, opponent, competition string, date time.Time) *Match {
	t.Helper()
	m, err := New("Palmeiras", date, opponent, false, competition, "", "", "test")
	require.NoError(t, err)
	return m
}

func keys(matches []*Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Key()+"@"+m.Date.Format(time.RFC3339))
	}
	return out
}

func TestProcess_DedupKeepsEarliest(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	later := mustMatch(t, "Flamengo", "Brasileirão 2026", time.Date(2026, 4, 12, 19, 0, 0, 0, time.UTC))
	earlier := mustMatch(t, "Flamengo", "Brasileirão 2026", time.Date(2026, 4, 10, 19, 0, 0, 0, time.UTC))

	got := Process([]*Match{later, earlier}, now)

	require.Len(t, got, 1)
	assert.Same(t, earlier, got[0])
}

func TestProcess_PastFilterIsStrict(t *testing.T) {
	now := time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC)
	past := mustMatch(t, "Santos", "Paulistão 2026", now.Add(-time.Hour))
	exact := mustMatch(t, "Bragantino", "Paulistão 2026", now)
	future := mustMatch(t, "Grêmio", "Brasileirão 2026", now.Add(time.Minute))

	got := Process([]*Match{past, exact, future}, now)

	require.Len(t, got, 1)
	assert.Same(t, future, got[0])
}

func TestProcess_SortedAndIdempotent(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	input := []*Match{
		mustMatch(t, "Cruzeiro", "Brasileirão 2026", time.Date(2026, 5, 3, 21, 0, 0, 0, time.UTC)),
		mustMatch(t, "Boca Juniors", "Libertadores 2026", time.Date(2026, 4, 20, 0, 30, 0, 0, time.UTC)),
		mustMatch(t, "Bahia", "Brasileirão 2026", time.Date(2026, 5, 3, 21, 0, 0, 0, time.UTC)),
		nil,
		mustMatch(t, "Boca Juniors", "Libertadores 2026", time.Date(2026, 4, 27, 0, 30, 0, 0, time.UTC)),
	}

	first := Process(input, now)
	second := Process(first, now)

	want := []string{
		"palmeiras_vs_boca_juniors_libertadores_2026@2026-04-20T00:30:00Z",
		"palmeiras_vs_bahia_brasileiro_2026@2026-05-03T21:00:00Z",
		"palmeiras_vs_cruzeiro_brasileiro_2026@2026-05-03T21:00:00Z",
	}
	if diff := cmp.Diff(want, keys(first)); diff != "" {
		t.Errorf("Process() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(keys(first), keys(second)); diff != "" {
		t.Errorf("Process() not idempotent (-first +second):\n%s", diff)
	}
}

func TestProcess_Empty(t *testing.T) {
	assert.Empty(t, Process(nil, time.Now()))
}
