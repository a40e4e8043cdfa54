package scoring

import (
	"fmt"

	"league-backend/internal/models"
)

// subMatch is one HI-vs-HI or LO-vs-LO pairing ready to score.
type subMatch struct {
	s1, s2           []int
	h1, h2           float64
	absent1, absent2 bool
}

// ComputeResult scores a full team matchup: the HI and LO sub-matches plus
// the optional team-net bonus. Absent players are resolved per the
// league's absence policy before scoring: plays_both substitutes the
// present partner's card and handicap into both sub-matches, forfeit and
// half_pts skip the affected sub-match, and the remaining rules fill in a
// synthetic card. The result is deterministic for a given (config, scores,
// rounds) triple.
func ComputeResult(m *models.Match, cfg *models.Config, allRounds map[string][]models.Round) (*models.MatchResult, error) {
	t1 := cfg.Team(m.Team1ID)
	t2 := cfg.Team(m.Team2ID)
	if t1 == nil || t2 == nil {
		return nil, fmt.Errorf("match %s vs %s references unknown team", m.Team1ID, m.Team2ID)
	}
	t1lo, t1hi := t1.HiLoPair()
	t2lo, t2hi := t2.HiLoPair()
	if t1lo == nil || t1hi == nil || t2lo == nil || t2hi == nil {
		return nil, fmt.Errorf("teams %s and %s must each roster two players", t1.Name, t2.Name)
	}

	nine := m.Nine
	if nine == "" {
		nine = models.SideFront
	}
	holes := cfg.Course.Holes(nine)
	pv := cfg.Points()
	rule := cfg.AbsenceRule()

	hcp := func(p *models.Player) float64 {
		return PlayerHandicap(p, allRounds[p.ID], cfg)
	}
	absent := func(p *models.Player) bool {
		return !m.HasScores(p.ID)
	}

	t1hiAbs, t1loAbs := absent(t1hi), absent(t1lo)
	t2hiAbs, t2loAbs := absent(t2hi), absent(t2lo)

	playsBoth := rule == models.AbsentPlaysBoth
	if playsBoth && (t1hiAbs || t1loAbs) && (t2hiAbs || t2loAbs) {
		// Double absence is unsupported for plays_both; fall back to
		// conservative blind-average fills on both sides.
		playsBoth = false
		rule = models.AbsentBlindAvg
	}

	fill := func(p *models.Player, isAbsent bool) []int {
		if !isAbsent {
			return m.Scores[p.ID]
		}
		switch rule {
		case models.AbsentForfeit, models.AbsentHalfPts, models.AbsentPlaysBoth:
			return make([]int, models.HolesPerNine)
		default:
			fillCfg := *cfg
			fillCfg.AbsentRule = rule
			return AbsentScore(p.ID, &fillCfg, allRounds)
		}
	}

	hi := subMatch{
		s1: fill(t1hi, t1hiAbs), s2: fill(t2hi, t2hiAbs),
		h1: hcp(t1hi), h2: hcp(t2hi),
		absent1: t1hiAbs, absent2: t2hiAbs,
	}
	lo := subMatch{
		s1: fill(t1lo, t1loAbs), s2: fill(t2lo, t2loAbs),
		h1: hcp(t1lo), h2: hcp(t2lo),
		absent1: t1loAbs, absent2: t2loAbs,
	}

	if playsBoth {
		// The present partner's card and handicap run in both
		// sub-matches for the side with the absence.
		if t1hiAbs {
			hi.s1, hi.h1, hi.absent1 = m.Scores[t1lo.ID], hcp(t1lo), false
		} else if t1loAbs {
			lo.s1, lo.h1, lo.absent1 = m.Scores[t1hi.ID], hcp(t1hi), false
		}
		if t2hiAbs {
			hi.s2, hi.h2, hi.absent2 = m.Scores[t2lo.ID], hcp(t2lo), false
		} else if t2loAbs {
			lo.s2, lo.h2, lo.absent2 = m.Scores[t2hi.ID], hcp(t2hi), false
		}
	}

	hiRes, hiScored, err := scoreSub(hi, rule, holes, pv)
	if err != nil {
		return nil, fmt.Errorf("scoring HI sub-match: %w", err)
	}
	loRes, loScored, err := scoreSub(lo, rule, holes, pv)
	if err != nil {
		return nil, fmt.Errorf("scoring LO sub-match: %w", err)
	}

	// Team-net bonus goes to the lower combined net, split on ties. Only
	// awarded when both sub-matches produced real nets.
	var teamBonus1, teamBonus2 float64
	if pv.TeamNet > 0 && hiScored && loScored {
		combined1 := hiRes.TotalNet1 + loRes.TotalNet1
		combined2 := hiRes.TotalNet2 + loRes.TotalNet2
		switch {
		case combined1 < combined2:
			teamBonus1 = pv.TeamNet
		case combined2 < combined1:
			teamBonus2 = pv.TeamNet
		default:
			teamBonus1, teamBonus2 = pv.TeamNet/2, pv.TeamNet/2
		}
	}

	return &models.MatchResult{
		Team1ID:    m.Team1ID,
		Team2ID:    m.Team2ID,
		Pts1:       round1(hiRes.Pts1 + loRes.Pts1 + teamBonus1),
		Pts2:       round1(hiRes.Pts2 + loRes.Pts2 + teamBonus2),
		HiPts1:     hiRes.Pts1,
		HiPts2:     hiRes.Pts2,
		LoPts1:     loRes.Pts1,
		LoPts2:     loRes.Pts2,
		TeamBonus1: teamBonus1,
		TeamBonus2: teamBonus2,
	}, nil
}

// scoreSub scores one sub-match, special-casing the forfeit and half_pts
// policies: a forfeited sub-match awards the present side the sub-match
// ceiling, half_pts splits that ceiling, and a sub-match with both players
// absent scores nothing. The bool reports whether CalcMatch actually ran.
func scoreSub(sm subMatch, rule models.AbsentRule, holes []models.HoleDef, pv models.PointValues) (MatchScore, bool, error) {
	ceiling := 9*pv.Hole + pv.LowNet
	skip := rule == models.AbsentForfeit || rule == models.AbsentHalfPts

	if sm.absent1 && sm.absent2 {
		return MatchScore{MaxPts: ceiling}, false, nil
	}
	if skip && (sm.absent1 || sm.absent2) {
		res := MatchScore{MaxPts: ceiling}
		if rule == models.AbsentHalfPts {
			res.Pts1, res.Pts2 = ceiling/2, ceiling/2
		} else if sm.absent1 {
			res.Pts2 = ceiling
		} else {
			res.Pts1 = ceiling
		}
		return res, false, nil
	}

	res, err := CalcMatch(sm.s1, sm.s2, sm.h1, sm.h2, holes, pv)
	return res, err == nil, err
}
