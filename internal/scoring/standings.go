package scoring

import (
	"sort"

	"league-backend/internal/models"
)

// CalcStandings folds every committed match with a result into team
// standings, sorted by points descending with wins as the tiebreaker.
// Remaining ties keep the config's team order. Standings are derived,
// never stored.
func CalcStandings(matches map[string]models.Match, teams []models.Team) []models.Standing {
	byTeam := make(map[string]*models.Standing, len(teams))
	out := make([]models.Standing, len(teams))
	for i, t := range teams {
		out[i] = models.Standing{TeamID: t.ID, TeamName: t.Name}
		byTeam[t.ID] = &out[i]
	}

	for _, m := range matches {
		if m.Status != models.StatusCommitted || m.Result == nil {
			continue
		}
		r := m.Result
		if s := byTeam[r.Team1ID]; s != nil {
			s.Pts += r.Pts1
			s.Played++
			switch {
			case r.Pts1 > r.Pts2:
				s.Wins++
			case r.Pts2 > r.Pts1:
				s.Losses++
			default:
				s.Ties++
			}
		}
		if s := byTeam[r.Team2ID]; s != nil {
			s.Pts += r.Pts2
			s.Played++
			switch {
			case r.Pts2 > r.Pts1:
				s.Wins++
			case r.Pts1 > r.Pts2:
				s.Losses++
			default:
				s.Ties++
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pts != out[j].Pts {
			return out[i].Pts > out[j].Pts
		}
		return out[i].Wins > out[j].Wins
	})
	return out
}

// PlayerStats are a player's season statistics, derived from their round
// history and every committed match they appear in.
type PlayerStats struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`

	RoundsPlayed int     `json:"roundsPlayed"`
	ScoringAvg   float64 `json:"scoringAvg"`
	LowRound     int     `json:"lowRound"`

	Eagles      int `json:"eagles"`
	Birdies     int `json:"birdies"`
	Pars        int `json:"pars"`
	Bogeys      int `json:"bogeys"`
	Doubles     int `json:"doubles"` // double bogey or worse
	HolesPlayed int `json:"holesPlayed"`

	MatchWins   int     `json:"matchWins"`
	MatchLosses int     `json:"matchLosses"`
	MatchTies   int     `json:"matchTies"`
	MatchPts    float64 `json:"matchPts"`
	WinPct      float64 `json:"winPct"`
}

// CalcPlayerStats computes per-player season stats for every rostered
// player: scoring average and low round from round history, hole-by-hole
// buckets from committed match scorecards, and the team-level match
// record.
func CalcPlayerStats(cfg *models.Config, matches map[string]models.Match, rounds map[string][]models.Round) []PlayerStats {
	var out []PlayerStats
	for _, team := range cfg.Teams {
		for _, p := range team.Players {
			st := PlayerStats{
				PlayerID: p.ID, Name: p.Name,
				TeamID: team.ID, TeamName: team.Name,
			}

			for _, r := range rounds[p.ID] {
				if r.GrossScore <= 0 {
					continue
				}
				st.RoundsPlayed++
				st.ScoringAvg += float64(r.GrossScore)
				if st.LowRound == 0 || r.GrossScore < st.LowRound {
					st.LowRound = r.GrossScore
				}
			}
			if st.RoundsPlayed > 0 {
				st.ScoringAvg = round1(st.ScoringAvg / float64(st.RoundsPlayed))
			}

			for _, m := range matches {
				if m.Status != models.StatusCommitted {
					continue
				}
				scores, ok := m.Scores[p.ID]
				if !ok {
					continue
				}
				nine := m.Nine
				if nine == "" {
					nine = models.SideFront
				}
				holes := cfg.Course.Holes(nine)
				for i, s := range scores {
					if s <= 0 || i >= len(holes) {
						continue
					}
					st.HolesPlayed++
					switch diff := s - holes[i].Par; {
					case diff <= -2:
						st.Eagles++
					case diff == -1:
						st.Birdies++
					case diff == 0:
						st.Pars++
					case diff == 1:
						st.Bogeys++
					default:
						st.Doubles++
					}
				}
			}

			for _, m := range matches {
				if m.Status != models.StatusCommitted || m.Result == nil {
					continue
				}
				var myPts, opPts float64
				switch team.ID {
				case m.Result.Team1ID:
					myPts, opPts = m.Result.Pts1, m.Result.Pts2
				case m.Result.Team2ID:
					myPts, opPts = m.Result.Pts2, m.Result.Pts1
				default:
					continue
				}
				st.MatchPts += myPts
				switch {
				case myPts > opPts:
					st.MatchWins++
				case myPts < opPts:
					st.MatchLosses++
				default:
					st.MatchTies++
				}
			}
			if total := st.MatchWins + st.MatchLosses + st.MatchTies; total > 0 {
				st.WinPct = float64(st.MatchWins) / float64(total)
			}

			out = append(out, st)
		}
	}
	return out
}
