package league

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-backend/internal/models"
)

func TestGenerateScheduleRoundRobin(t *testing.T) {
	teams := []string{"t1", "t2", "t3", "t4"}
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	schedule := GenerateSchedule(teams, 3, start)
	require.Len(t, schedule, 3)

	pairs := map[[2]string]int{}
	for wi, wk := range schedule {
		assert.Equal(t, wi+1, wk.Week)
		assert.Len(t, wk.Matchups, 2)

		// No team plays twice in a week.
		seen := map[string]bool{}
		for _, mu := range wk.Matchups {
			for _, id := range mu {
				assert.False(t, seen[id], "week %d: %s paired twice", wk.Week, id)
				seen[id] = true
			}
			a, b := mu[0], mu[1]
			if a > b {
				a, b = b, a
			}
			pairs[[2]string{a, b}]++
		}
	}

	// Every pairing appears exactly once over a full cycle.
	assert.Len(t, pairs, 6)
	for pair, n := range pairs {
		assert.Equal(t, 1, n, "pair %v", pair)
	}
}

func TestGenerateScheduleDatesAndNines(t *testing.T) {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) // a Wednesday

	schedule := GenerateSchedule([]string{"t1", "t2"}, 4, start)
	require.Len(t, schedule, 4)

	assert.Equal(t, "2026-04-01", schedule[0].Date)
	assert.Equal(t, "2026-04-08", schedule[1].Date)
	assert.Equal(t, "2026-04-22", schedule[3].Date)

	assert.Equal(t, models.SideFront, schedule[0].Nine)
	assert.Equal(t, models.SideBack, schedule[1].Nine)
	assert.Equal(t, models.SideFront, schedule[2].Nine)
}

func TestGenerateScheduleOddTeamCountByes(t *testing.T) {
	teams := []string{"t1", "t2", "t3"}
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	schedule := GenerateSchedule(teams, 3, start)
	require.Len(t, schedule, 3)

	byes := map[string]int{}
	for _, wk := range schedule {
		// One matchup per week, one team sits.
		require.Len(t, wk.Matchups, 1)
		playing := map[string]bool{}
		for _, id := range wk.Matchups[0] {
			playing[id] = true
		}
		for _, id := range teams {
			if !playing[id] {
				byes[id]++
			}
		}
	}

	// Over a full cycle every team sits exactly once.
	for _, id := range teams {
		assert.Equal(t, 1, byes[id], "team %s", id)
	}
}

func TestGenerateScheduleDegenerate(t *testing.T) {
	start := time.Now()
	assert.Nil(t, GenerateSchedule([]string{"t1"}, 3, start))
	assert.Nil(t, GenerateSchedule([]string{"t1", "t2"}, 0, start))
}

func TestBuildSeasonMatches(t *testing.T) {
	cfg := &models.Config{
		Teams: []models.Team{
			{ID: "t1", Name: "One"},
			{ID: "t2", Name: "Two"},
		},
		Schedule: []models.ScheduleWeek{
			{Week: 1, Date: "2026-04-01", Nine: models.SideFront, Matchups: [][2]string{{"t1", "t2"}}},
			{Week: 2, Date: "2026-04-08", Nine: models.SideBack, Matchups: [][2]string{{"t2", "t1"}}},
		},
	}

	matches := BuildSeasonMatches(cfg)
	require.Len(t, matches, 2)

	m, ok := matches["w1_m0"]
	require.True(t, ok)
	assert.Equal(t, models.StatusDraft, m.Status)
	assert.Equal(t, "One", m.Team1Name)
	assert.Equal(t, "Two", m.Team2Name)
	assert.Equal(t, models.SideFront, m.Nine)
	assert.Equal(t, "2026-04-01", m.Date)

	m, ok = matches["w2_m0"]
	require.True(t, ok)
	assert.Equal(t, "t2", m.Team1ID)
	assert.Equal(t, models.SideBack, m.Nine)
}
