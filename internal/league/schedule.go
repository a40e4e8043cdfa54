package league

import (
	"time"

	"league-backend/internal/models"
)

// GenerateSchedule builds a season schedule by the circle method: one
// team is fixed and the rest rotate, so every team plays every other
// team once per full cycle. The rotation repeats until weeks are filled.
// Odd team counts get a bye slot (the team paired with it sits out and
// no matchup is emitted). Nines alternate front/back week over week.
func GenerateSchedule(teamIDs []string, weeks int, start time.Time) []models.ScheduleWeek {
	if len(teamIDs) < 2 || weeks <= 0 {
		return nil
	}

	ids := append([]string(nil), teamIDs...)
	if len(ids)%2 == 1 {
		ids = append(ids, "") // bye slot
	}
	n := len(ids)

	schedule := make([]models.ScheduleWeek, 0, weeks)
	for w := 0; w < weeks; w++ {
		round := w % (n - 1)
		wk := models.ScheduleWeek{
			Week: w + 1,
			Date: start.AddDate(0, 0, 7*w).Format("2006-01-02"),
			Nine: models.SideFront,
		}
		if w%2 == 1 {
			wk.Nine = models.SideBack
		}

		// Fixed team at index 0, the others rotated by round.
		rotate := func(i int) string {
			if i == 0 {
				return ids[0]
			}
			return ids[1+((i-1+round)%(n-1))]
		}
		for i := 0; i < n/2; i++ {
			a, b := rotate(i), rotate(n-1-i)
			if a == "" || b == "" {
				continue
			}
			wk.Matchups = append(wk.Matchups, [2]string{a, b})
		}
		schedule = append(schedule, wk)
	}
	return schedule
}

// BuildSeasonMatches turns the config's schedule into draft match
// documents keyed w{week}_m{index}. Existing matches are never
// overwritten by the caller; this only produces the initial set.
func BuildSeasonMatches(cfg *models.Config) map[string]models.Match {
	matches := make(map[string]models.Match)
	for _, wk := range cfg.Schedule {
		for i, mu := range wk.Matchups {
			key := models.MatchKey(wk.Week, i)
			matches[key] = models.Match{
				Week:      wk.Week,
				Date:      wk.Date,
				Nine:      wk.Nine,
				Team1ID:   mu[0],
				Team2ID:   mu[1],
				Team1Name: teamName(cfg, mu[0]),
				Team2Name: teamName(cfg, mu[1]),
				Status:    models.StatusDraft,
			}
		}
	}
	return matches
}

func teamName(cfg *models.Config, teamID string) string {
	if t := cfg.Team(teamID); t != nil {
		return t.Name
	}
	return ""
}
