package scoring

import (
	"sort"

	"league-backend/internal/models"
)

// SkinHole is one hole of a weekly skins competition.
type SkinHole struct {
	Hole       int    `json:"hole"`
	Par        int    `json:"par"`
	Winner     string `json:"winner,omitempty"`
	WinnerName string `json:"winnerName,omitempty"`
	Score      int    `json:"score,omitempty"`
	Pot        int    `json:"pot"`
	Carryover  bool   `json:"carryover"`
}

// WeekSkins is the skins outcome for one week. When a buy-in is
// configured, Pot is buyIn times the entrants and Payouts divides it
// evenly per skin won.
type WeekSkins struct {
	Week       int                `json:"week"`
	Holes      []SkinHole         `json:"holes"`
	TotalSkins int                `json:"totalSkins"`
	Players    map[string]int     `json:"players"`
	Pot        float64            `json:"pot,omitempty"`
	Payouts    map[string]float64 `json:"payouts,omitempty"`
}

// missing hole scores never win a skin
const skinsNoScore = 99

// CalcWeeklySkins runs the per-hole low-score competition across every
// player in every committed match of a week. A unique minimum wins
// 1+carry skins; a tie carries the pot to the next hole. With skinsNet
// enabled, each player's full handicap allocation is subtracted hole by
// hole before comparing.
func CalcWeeklySkins(week int, allMatches map[string]models.Match, cfg *models.Config, rounds map[string][]models.Round) WeekSkins {
	out := WeekSkins{Week: week, Players: map[string]int{}}

	// Deterministic match order regardless of map iteration.
	keys := make([]string, 0, len(allMatches))
	for k, m := range allMatches {
		if m.Week == week && m.Status == models.StatusCommitted && len(m.Scores) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return out
	}
	sort.Strings(keys)

	nine := allMatches[keys[0]].Nine
	if nine == "" {
		nine = models.SideFront
	}
	holes := cfg.Course.Holes(nine)

	// Hole-by-hole stroke allocations for net skins, one per player.
	var strokes map[string][]int
	if cfg.SkinsNet {
		strokes = make(map[string][]int)
		for _, k := range keys {
			for pid := range allMatches[k].Scores {
				if _, ok := strokes[pid]; ok {
					continue
				}
				hcp := CalcHandicapAdj(rounds[pid], cfg, pid)
				strokes[pid] = AllocateStrokes(hcp, holes)
			}
		}
	}

	carry := 0
	for i, hole := range holes {
		minScore := 0
		winner := ""
		tied := false
		first := true
		for _, k := range keys {
			m := allMatches[k]
			pids := make([]string, 0, len(m.Scores))
			for pid := range m.Scores {
				pids = append(pids, pid)
			}
			sort.Strings(pids)
			for _, pid := range pids {
				score := skinsNoScore
				if i < len(m.Scores[pid]) && m.Scores[pid][i] > 0 {
					score = m.Scores[pid][i]
					if s := strokes[pid]; s != nil {
						score -= s[i]
					}
				}
				switch {
				case first || score < minScore:
					minScore, winner, tied, first = score, pid, false, false
				case score == minScore:
					tied = true
				}
			}
		}

		if !tied && winner != "" && minScore < skinsNoScore {
			pot := 1 + carry
			carry = 0
			out.Players[winner] += pot
			out.TotalSkins += pot
			out.Holes = append(out.Holes, SkinHole{
				Hole: hole.Hole, Par: hole.Par,
				Winner: winner, WinnerName: cfg.PlayerName(winner),
				Score: minScore, Pot: pot,
			})
		} else {
			carry++
			out.Holes = append(out.Holes, SkinHole{
				Hole: hole.Hole, Par: hole.Par, Carryover: true,
			})
		}
	}

	if cfg.SkinsBuyIn > 0 && out.TotalSkins > 0 {
		entrants := map[string]bool{}
		for _, k := range keys {
			for pid := range allMatches[k].Scores {
				entrants[pid] = true
			}
		}
		out.Pot = cfg.SkinsBuyIn * float64(len(entrants))
		perSkin := out.Pot / float64(out.TotalSkins)
		out.Payouts = make(map[string]float64, len(out.Players))
		for pid, n := range out.Players {
			out.Payouts[pid] = perSkin * float64(n)
		}
	}

	return out
}

// SeasonSkinsEntry is one row of the season skins leaderboard.
type SeasonSkinsEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Skins    int    `json:"skins"`
}

// CalcSeasonSkins sums per-player skin counts across every week with at
// least one committed match, sorted by count descending.
func CalcSeasonSkins(cfg *models.Config, allMatches map[string]models.Match, rounds map[string][]models.Round) []SeasonSkinsEntry {
	weeks := map[int]bool{}
	for _, m := range allMatches {
		if m.Status == models.StatusCommitted {
			weeks[m.Week] = true
		}
	}

	totals := map[string]int{}
	for week := range weeks {
		ws := CalcWeeklySkins(week, allMatches, cfg, rounds)
		for pid, n := range ws.Players {
			totals[pid] += n
		}
	}

	out := make([]SeasonSkinsEntry, 0, len(totals))
	for pid, n := range totals {
		out = append(out, SeasonSkinsEntry{PlayerID: pid, Name: cfg.PlayerName(pid), Skins: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Skins != out[j].Skins {
			return out[i].Skins > out[j].Skins
		}
		return out[i].Name < out[j].Name
	})
	return out
}
