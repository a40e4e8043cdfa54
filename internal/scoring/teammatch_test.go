package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-backend/internal/models"
)

// leagueConfig is a two-team scratch league so nets equal gross and
// results are easy to reason about by hand.
func leagueConfig() *models.Config {
	cfg := testConfig()
	cfg.Handicap.System = "scratch"
	cfg.PointValues = &models.PointValues{Hole: 1, LowNet: 1}
	cfg.Teams = []models.Team{
		{
			ID: "t1", Name: "Slicers",
			Players: []models.Player{
				{ID: "a-hi", Name: "Al", HiLo: "HI"},
				{ID: "a-lo", Name: "Amy", HiLo: "LO"},
			},
		},
		{
			ID: "t2", Name: "Hookers",
			Players: []models.Player{
				{ID: "b-hi", Name: "Bo", HiLo: "HI"},
				{ID: "b-lo", Name: "Bea", HiLo: "LO"},
			},
		},
	}
	return cfg
}

func fullMatch(scores map[string][]int) *models.Match {
	return &models.Match{
		Week: 1, Nine: models.SideFront,
		Team1ID: "t1", Team2ID: "t2",
		Status: models.StatusPending,
		Scores: scores,
	}
}

func TestComputeResultBothTeamsPresent(t *testing.T) {
	cfg := leagueConfig()
	m := fullMatch(map[string][]int{
		"a-hi": nineOf(4), // beats b-hi on every hole
		"b-hi": nineOf(5),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5), // ties a-lo everywhere
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 10.0, res.HiPts1)
	assert.Equal(t, 0.0, res.HiPts2)
	assert.Equal(t, 5.0, res.LoPts1)
	assert.Equal(t, 5.0, res.LoPts2)
	assert.Equal(t, 15.0, res.Pts1)
	assert.Equal(t, 5.0, res.Pts2)
}

func TestComputeResultTeamNetBonus(t *testing.T) {
	cfg := leagueConfig()
	cfg.PointValues.TeamNet = 2

	m := fullMatch(map[string][]int{
		"a-hi": nineOf(4),
		"b-hi": nineOf(5),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)

	// Team 1 combined net 81 vs 90.
	assert.Equal(t, 2.0, res.TeamBonus1)
	assert.Equal(t, 0.0, res.TeamBonus2)
	assert.Equal(t, 17.0, res.Pts1)
}

func TestComputeResultTeamNetBonusSplitOnTie(t *testing.T) {
	cfg := leagueConfig()
	cfg.PointValues.TeamNet = 2

	m := fullMatch(map[string][]int{
		"a-hi": nineOf(5),
		"b-hi": nineOf(5),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.TeamBonus1)
	assert.Equal(t, 1.0, res.TeamBonus2)
	assert.Equal(t, res.Pts1, res.Pts2)
}

func TestComputeResultForfeit(t *testing.T) {
	cfg := leagueConfig()
	cfg.AbsentRule = models.AbsentForfeit

	// b-hi never turned in a card.
	m := fullMatch(map[string][]int{
		"a-hi": nineOf(4),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)

	// Present side takes the full sub-match ceiling.
	assert.Equal(t, 10.0, res.HiPts1)
	assert.Equal(t, 0.0, res.HiPts2)
	// The LO sub-match plays out normally.
	assert.Equal(t, 5.0, res.LoPts1)
	assert.Equal(t, 5.0, res.LoPts2)
}

func TestComputeResultHalfPts(t *testing.T) {
	cfg := leagueConfig()
	cfg.AbsentRule = models.AbsentHalfPts

	m := fullMatch(map[string][]int{
		"a-hi": nineOf(4),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.HiPts1)
	assert.Equal(t, 5.0, res.HiPts2)
}

func TestComputeResultBlindAvgFill(t *testing.T) {
	cfg := leagueConfig()
	cfg.AbsentRule = models.AbsentBlindAvg

	history := map[string][]models.Round{
		"b-hi": {{Date: "2026-06-01", GrossScore: 45}},
	}

	m := fullMatch(map[string][]int{
		"a-hi": nineOf(4),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	// b-hi's card is filled with the league average, 45 spread as all
	// fives, so a-hi sweeps.
	res, err := ComputeResult(m, cfg, history)
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.HiPts1)
	assert.Equal(t, 0.0, res.HiPts2)
}

func TestComputeResultPlaysBoth(t *testing.T) {
	cfg := leagueConfig()
	cfg.AbsentRule = models.AbsentPlaysBoth

	// b-hi is absent; b-lo's card runs in both sub-matches.
	m := fullMatch(map[string][]int{
		"a-hi": nineOf(6),
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)

	// HI sub-match: b-lo's fives beat a-hi's sixes.
	assert.Equal(t, 0.0, res.HiPts1)
	assert.Equal(t, 10.0, res.HiPts2)
	// LO sub-match ties.
	assert.Equal(t, 5.0, res.LoPts1)
	assert.Equal(t, 5.0, res.LoPts2)
}

func TestComputeResultPlaysBothDoubleAbsence(t *testing.T) {
	cfg := leagueConfig()
	cfg.AbsentRule = models.AbsentPlaysBoth

	// Absences on both sides are outside what plays_both covers; the
	// scorer falls back to blind-average fills rather than failing.
	m := fullMatch(map[string][]int{
		"a-lo": nineOf(5),
		"b-lo": nineOf(5),
	})

	res, err := ComputeResult(m, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, res.Pts1, res.Pts2)
}

func TestComputeResultDeterministic(t *testing.T) {
	cfg := leagueConfig()
	cfg.Handicap.System = "custom"

	history := map[string][]models.Round{
		"a-hi": {{Date: "2026-06-01", GrossScore: 48}},
		"a-lo": {{Date: "2026-06-01", GrossScore: 41}},
		"b-hi": {{Date: "2026-06-01", GrossScore: 50}},
		"b-lo": {{Date: "2026-06-01", GrossScore: 43}},
	}
	m := fullMatch(map[string][]int{
		"a-hi": {5, 6, 4, 7, 5, 5, 4, 6, 5},
		"a-lo": {4, 5, 3, 6, 4, 5, 3, 5, 4},
		"b-hi": {6, 5, 5, 6, 6, 5, 4, 7, 5},
		"b-lo": {5, 4, 4, 5, 5, 4, 3, 6, 4},
	})

	first, err := ComputeResult(m, cfg, history)
	require.NoError(t, err)
	second, err := ComputeResult(m, cfg, history)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeResultUnknownTeam(t *testing.T) {
	cfg := leagueConfig()
	m := fullMatch(nil)
	m.Team2ID = "nope"
	_, err := ComputeResult(m, cfg, nil)
	assert.Error(t, err)
}
