package scoring

import (
	"league-backend/internal/models"
)

// BracketMatch is one pairing in the playoff bracket. Team names default
// to "TBD" until the feeding matches commit.
type BracketMatch struct {
	Seed1   int                 `json:"seed1,omitempty"`
	Seed2   int                 `json:"seed2,omitempty"`
	Team1   string              `json:"team1"`
	Team2   string              `json:"team2"`
	Team1ID string              `json:"team1Id,omitempty"`
	Team2ID string              `json:"team2Id,omitempty"`
	Week    int                 `json:"week"`
	Result  *models.MatchResult `json:"result,omitempty"`
}

// BracketRound is one column of the bracket (quarterfinals, semifinals,
// championship).
type BracketRound struct {
	Label   string         `json:"label"`
	Matches []BracketMatch `json:"matches"`
}

// BuildBracket seeds the playoff bracket from current standings: 8 seeds
// pair 1v8, 4v5, 2v7, 3v6; 4 seeds pair 1v4, 2v3. Winners advance by
// comparing the committed result of the matched-up playoff-week match;
// slots stay TBD until that match commits. Returns nil when the league
// has no playoff week or fewer than 4 teams.
func BuildBracket(cfg *models.Config, matches map[string]models.Match) []BracketRound {
	if len(cfg.Teams) < 4 {
		return nil
	}
	start := 0
	for _, w := range cfg.Schedule {
		if cfg.IsPlayoffWeek(w.Week) && (start == 0 || w.Week < start) {
			start = w.Week
		}
	}
	if start == 0 {
		return nil
	}

	standings := CalcStandings(matches, cfg.Teams)
	n := len(standings)
	if n > 8 {
		n = 8
	}
	seeded := standings[:n]

	seedMatch := func(a, b, week int) BracketMatch {
		m := BracketMatch{
			Seed1: a + 1, Seed2: b + 1,
			Team1: "TBD", Team2: "TBD",
			Week: week,
		}
		if a < len(seeded) {
			m.Team1, m.Team1ID = seeded[a].TeamName, seeded[a].TeamID
		}
		if b < len(seeded) {
			m.Team2, m.Team2ID = seeded[b].TeamName, seeded[b].TeamID
		}
		m.Result = findPlayoffResult(matches, m.Team1ID, m.Team2ID, week)
		return m
	}

	var rounds []BracketRound
	if n >= 8 {
		qf := []BracketMatch{
			seedMatch(0, 7, start),
			seedMatch(3, 4, start),
			seedMatch(1, 6, start),
			seedMatch(2, 5, start),
		}
		rounds = append(rounds, BracketRound{Label: "Quarterfinals", Matches: qf})

		sf := []BracketMatch{
			advance(matches, qf[0], qf[1], start+1),
			advance(matches, qf[2], qf[3], start+1),
		}
		rounds = append(rounds, BracketRound{Label: "Semifinals", Matches: sf})

		champ := advance(matches, sf[0], sf[1], start+2)
		rounds = append(rounds, BracketRound{Label: "Championship", Matches: []BracketMatch{champ}})
	} else {
		sf := []BracketMatch{
			seedMatch(0, 3, start),
			seedMatch(1, 2, start),
		}
		rounds = append(rounds, BracketRound{Label: "Semifinals", Matches: sf})

		champ := advance(matches, sf[0], sf[1], start+1)
		rounds = append(rounds, BracketRound{Label: "Championship", Matches: []BracketMatch{champ}})
	}
	return rounds
}

// findPlayoffResult locates the committed result between two teams in a
// given week, normalized so pts1 belongs to team1ID. Nil until committed.
func findPlayoffResult(matches map[string]models.Match, team1ID, team2ID string, week int) *models.MatchResult {
	if team1ID == "" || team2ID == "" {
		return nil
	}
	for _, m := range matches {
		if m.Week != week || m.Status != models.StatusCommitted || m.Result == nil {
			continue
		}
		if m.Team1ID == team1ID && m.Team2ID == team2ID {
			r := *m.Result
			return &r
		}
		if m.Team1ID == team2ID && m.Team2ID == team1ID {
			r := *m.Result
			r.Team1ID, r.Team2ID = m.Team2ID, m.Team1ID
			r.Pts1, r.Pts2 = m.Result.Pts2, m.Result.Pts1
			return &r
		}
	}
	return nil
}

// advance builds the next-round pairing from two feeder matches, filling
// winners where results exist and TBD otherwise.
func advance(matches map[string]models.Match, m1, m2 BracketMatch, week int) BracketMatch {
	next := BracketMatch{Team1: "TBD", Team2: "TBD", Week: week}
	if w, seed, id := winner(m1); id != "" {
		next.Team1, next.Seed1, next.Team1ID = w, seed, id
	}
	if w, seed, id := winner(m2); id != "" {
		next.Team2, next.Seed2, next.Team2ID = w, seed, id
	}
	if next.Team1ID != "" && next.Team2ID != "" {
		next.Result = findPlayoffResult(matches, next.Team1ID, next.Team2ID, week)
	}
	return next
}

func winner(m BracketMatch) (name string, seed int, teamID string) {
	if m.Result == nil {
		return "", 0, ""
	}
	if m.Result.Pts1 > m.Result.Pts2 {
		return m.Team1, m.Seed1, m.Team1ID
	}
	return m.Team2, m.Seed2, m.Team2ID
}
