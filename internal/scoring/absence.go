package scoring

import (
	"math"
	"sort"

	"league-backend/internal/models"
)

// SpreadScore distributes a gross total evenly across the nine:
// floor(total/9) on every hole, with the remainder added one stroke at a
// time to the first holes.
func SpreadScore(gross int) []int {
	holes := make([]int, models.HolesPerNine)
	if gross <= 0 {
		return holes
	}
	base := gross / models.HolesPerNine
	rem := gross - base*models.HolesPerNine
	for i := range holes {
		holes[i] = base
		if i < rem {
			holes[i]++
		}
	}
	return holes
}

// AbsentScore synthesizes a nine-hole gross array for a player with no
// submitted round, per the league's absence policy. forfeit and half_pts
// return all zeros; the team scorer skips those sub-matches rather than
// scoring a zero gross. plays_both never reaches this function (the
// present partner's card is substituted upstream).
func AbsentScore(playerID string, cfg *models.Config, allRounds map[string][]models.Round) []int {
	rule := cfg.AbsenceRule()
	par := cfg.Par(models.SideFront)
	rounds := playerRoundsNewestFirst(allRounds[playerID])

	switch rule {
	case models.AbsentDuplicatePrev:
		if len(rounds) > 0 {
			return SpreadScore(rounds[0].GrossScore)
		}
		return SpreadScore(leagueAverage(allRounds, par+5))

	case models.AbsentBlindAvg:
		return SpreadScore(leagueAverage(allRounds, par+5))

	case models.AbsentWorstScore:
		lookback := cfg.AbsentWorstLookback
		if lookback <= 0 {
			lookback = 4
		}
		if len(rounds) > lookback {
			rounds = rounds[:lookback]
		}
		if len(rounds) == 0 {
			worst := leagueWorst(allRounds)
			if worst == 0 {
				worst = par + 9
			}
			return SpreadScore(worst)
		}
		worst := 0
		for _, r := range rounds {
			if r.GrossScore > worst {
				worst = r.GrossScore
			}
		}
		return SpreadScore(worst)

	case models.AbsentFixedScore:
		if cfg.AbsentFixedScore > 0 {
			return SpreadScore(cfg.AbsentFixedScore)
		}
		return SpreadScore(par + 5)

	case models.AbsentLastScore:
		if len(rounds) > 0 {
			return SpreadScore(rounds[0].GrossScore)
		}
		return SpreadScore(par + 5)

	case models.AbsentVsPar:
		return SpreadScore(par)

	default: // forfeit, half_pts
		return make([]int, models.HolesPerNine)
	}
}

// playerRoundsNewestFirst filters to positive gross scores and orders
// newest first (ISO dates sort lexically).
func playerRoundsNewestFirst(rounds []models.Round) []models.Round {
	out := make([]models.Round, 0, len(rounds))
	for _, r := range rounds {
		if r.GrossScore > 0 {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// leagueAverage is the rounded mean gross across every committed round of
// every player, or fallback when the league has no history.
func leagueAverage(allRounds map[string][]models.Round, fallback int) int {
	total, count := 0, 0
	for _, rounds := range allRounds {
		for _, r := range rounds {
			if r.GrossScore > 0 {
				total += r.GrossScore
				count++
			}
		}
	}
	if count == 0 {
		return fallback
	}
	return int(math.Round(float64(total) / float64(count)))
}

// leagueWorst is the highest gross ever recorded in the league, 0 if none.
func leagueWorst(allRounds map[string][]models.Round) int {
	worst := 0
	for _, rounds := range allRounds {
		for _, r := range rounds {
			if r.GrossScore > worst {
				worst = r.GrossScore
			}
		}
	}
	return worst
}
