package match

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueKey(t *testing.T) {
	tests := []struct {
		name        string
		team        string
		opponent    string
		competition string
		want        string
	}{
		{
			name:        "simple names",
			team:        "Palmeiras",
			opponent:    "Corinthians",
			competition: "Brasileirão 2026",
			want:        "palmeiras_vs_corinthians_brasileiro_2026",
		},
		{
			name:        "whitespace runs collapse",
			team:        "Palmeiras",
			opponent:    "  São   Paulo ",
			competition: "Copa do Brasil",
			want:        "palmeiras_vs_so_paulo_copa_do_brasil",
		},
		{
			name:        "punctuation stripped",
			team:        "Palmeiras",
			opponent:    "Atlético-MG",
			competition: "CONMEBOL Libertadores (2026)",
			want:        "palmeiras_vs_atlticomg_conmebol_libertadores_2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UniqueKey(tt.team, tt.opponent, tt.competition))
		})
	}
}

func TestUniqueKey_StableUnderDateShift(t *testing.T) {
	first, err := New("Palmeiras", time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC), "Corinthians", true, "Brasileirão 2026", "Allianz Parque", "", "a")
	require.NoError(t, err)
	second, err := New("Palmeiras", time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC), "Corinthians", true, "Brasileirão 2026", "Allianz Parque", "", "b")
	require.NoError(t, err)

	assert.Equal(t, first.Key(), second.Key())
}

func TestNew(t *testing.T) {
	kickoff := time.Date(2026, 4, 10, 19, 0, 0, 0, time.FixedZone("BRT", -3*3600))

	m, err := New("", kickoff, "  Santos ", false, " Paulistão 2026 ", " Vila Belmiro ", "Premiere", "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, DefaultTeam, m.Team)
	assert.Equal(t, "Santos", m.Opponent)
	assert.Equal(t, "Paulistão 2026", m.Competition)
	assert.Equal(t, "Vila Belmiro", m.Location)
	assert.Equal(t, time.UTC, m.Date.Location())
	assert.True(t, m.Date.Equal(kickoff))
}

func TestNew_Validation(t *testing.T) {
	_, err := New("Palmeiras", time.Time{}, "Santos", false, "", "", "", "")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = New("Palmeiras", time.Now(), "   ", false, "", "", "", "")
	assert.ErrorIs(t, err, ErrEmptyOpponent)
}
