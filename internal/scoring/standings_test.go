package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-backend/internal/models"
)

func committed(week int, t1, t2 string, pts1, pts2 float64) models.Match {
	return models.Match{
		Week: week, Team1ID: t1, Team2ID: t2,
		Status: models.StatusCommitted,
		Result: &models.MatchResult{Team1ID: t1, Team2ID: t2, Pts1: pts1, Pts2: pts2},
	}
}

func fourTeams() []models.Team {
	return []models.Team{
		{ID: "t1", Name: "One"},
		{ID: "t2", Name: "Two"},
		{ID: "t3", Name: "Three"},
		{ID: "t4", Name: "Four"},
	}
}

func TestCalcStandings(t *testing.T) {
	matches := map[string]models.Match{
		"w1_m0": committed(1, "t1", "t2", 5.5, 3.5),
		"w1_m1": committed(1, "t3", "t4", 4.5, 4.5),
		"w2_m0": committed(2, "t1", "t3", 6, 3),
		// Pending results never count.
		"w3_m0": {Week: 3, Team1ID: "t2", Team2ID: "t4", Status: models.StatusPending},
	}

	standings := CalcStandings(matches, fourTeams())
	require.Len(t, standings, 4)

	assert.Equal(t, "t1", standings[0].TeamID)
	assert.Equal(t, 11.5, standings[0].Pts)
	assert.Equal(t, 2, standings[0].Wins)
	assert.Equal(t, 2, standings[0].Played)

	// t3 (7.5) over t4 (4.5) and t2 (3.5).
	assert.Equal(t, "t3", standings[1].TeamID)
	assert.Equal(t, 1, standings[1].Ties)
	assert.Equal(t, "t4", standings[2].TeamID)
	assert.Equal(t, "t2", standings[3].TeamID)
	assert.Equal(t, 1, standings[3].Losses)
}

func TestCalcStandingsWinsBreakPointTies(t *testing.T) {
	matches := map[string]models.Match{
		// t1: one win worth 8. t2: two ties worth 4 each.
		"w1_m0": committed(1, "t1", "t3", 8, 2),
		"w2_m0": committed(2, "t2", "t3", 4, 4),
		"w3_m0": committed(3, "t2", "t4", 4, 4),
	}

	standings := CalcStandings(matches, fourTeams())
	assert.Equal(t, "t1", standings[0].TeamID)
	assert.Equal(t, "t2", standings[1].TeamID)
}

func TestCalcPlayerStats(t *testing.T) {
	cfg := leagueConfig()
	history := map[string][]models.Round{
		"a-hi": {
			{Date: "2026-06-01", GrossScore: 44},
			{Date: "2026-06-08", GrossScore: 40},
		},
	}
	// Card against the test nine (pars 4,4,3,5,4,4,3,5,4): an eagle, a
	// birdie, three pars, two bogeys, two doubles.
	matches := map[string]models.Match{
		"w1_m0": {
			Week: 1, Nine: models.SideFront,
			Team1ID: "t1", Team2ID: "t2",
			Status: models.StatusCommitted,
			Scores: map[string][]int{
				"a-hi": {2, 3, 3, 5, 4, 5, 4, 7, 6},
			},
			Result: &models.MatchResult{Team1ID: "t1", Team2ID: "t2", Pts1: 12, Pts2: 8},
		},
	}

	stats := CalcPlayerStats(cfg, matches, history)
	require.Len(t, stats, 4)

	var ahi *PlayerStats
	for i := range stats {
		if stats[i].PlayerID == "a-hi" {
			ahi = &stats[i]
		}
	}
	require.NotNil(t, ahi)

	assert.Equal(t, 2, ahi.RoundsPlayed)
	assert.Equal(t, 42.0, ahi.ScoringAvg)
	assert.Equal(t, 40, ahi.LowRound)

	assert.Equal(t, 1, ahi.Eagles)
	assert.Equal(t, 1, ahi.Birdies)
	assert.Equal(t, 3, ahi.Pars)
	assert.Equal(t, 2, ahi.Bogeys)
	assert.Equal(t, 2, ahi.Doubles)
	assert.Equal(t, 9, ahi.HolesPlayed)

	assert.Equal(t, 1, ahi.MatchWins)
	assert.Equal(t, 12.0, ahi.MatchPts)
	assert.Equal(t, 1.0, ahi.WinPct)

	// Teammate shares the team record without the scorecard buckets.
	var alo *PlayerStats
	for i := range stats {
		if stats[i].PlayerID == "a-lo" {
			alo = &stats[i]
		}
	}
	require.NotNil(t, alo)
	assert.Equal(t, 1, alo.MatchWins)
	assert.Zero(t, alo.HolesPlayed)
}
