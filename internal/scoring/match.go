package scoring

import (
	"fmt"

	"league-backend/internal/models"
)

// HoleResult is one hole of a scored sub-match.
type HoleResult struct {
	Hole     int     `json:"hole"`
	Net1     int     `json:"net1"`
	Net2     int     `json:"net2"`
	Strokes1 int     `json:"strokes1"`
	Strokes2 int     `json:"strokes2"`
	Pts1     float64 `json:"pts1"`
	Pts2     float64 `json:"pts2"`
	Birdie1  float64 `json:"birdie1"`
	Birdie2  float64 `json:"birdie2"`
}

// MatchScore is the outcome of a single two-player sub-match.
type MatchScore struct {
	Pts1        float64      `json:"pts1"`
	Pts2        float64      `json:"pts2"`
	HoleResults []HoleResult `json:"holeResults"`
	Bonus1      float64      `json:"bonus1"`
	Bonus2      float64      `json:"bonus2"`
	TotalNet1   int          `json:"totalNet1"`
	TotalNet2   int          `json:"totalNet2"`
	MaxPts      float64      `json:"maxPts"`
}

// CalcMatch scores one two-player sub-match over nine holes. Only the
// higher-handicap side receives strokes (the differential). Hole points go
// to the lower net, split on ties; birdie/eagle bonuses are gross-based;
// the low-net bonus compares nine-hole net totals. A zero gross score
// means the hole was not entered.
//
// Score slices shorter than nine are treated as unentered tails; anything
// longer is a contract violation.
func CalcMatch(scores1, scores2 []int, hcp1, hcp2 float64, holes []models.HoleDef, pv models.PointValues) (MatchScore, error) {
	if len(holes) != models.HolesPerNine {
		return MatchScore{}, fmt.Errorf("expected %d holes, got %d", models.HolesPerNine, len(holes))
	}
	if len(scores1) > len(holes) || len(scores2) > len(holes) {
		return MatchScore{}, fmt.Errorf("score array longer than hole count (%d/%d vs %d)", len(scores1), len(scores2), len(holes))
	}

	holePts := pv.Hole
	lowNetPts := pv.LowNet
	birdiePts := pv.Birdie
	eaglePts := pv.Eagle

	strokes1 := AllocateStrokes(maxf(0, hcp1-hcp2), holes)
	strokes2 := AllocateStrokes(maxf(0, hcp2-hcp1), holes)

	at := func(s []int, i int) int {
		if i < len(s) {
			return s[i]
		}
		return 0
	}

	res := MatchScore{
		HoleResults: make([]HoleResult, len(holes)),
		MaxPts:      9*holePts + lowNetPts,
	}

	for i, hole := range holes {
		gross1 := at(scores1, i)
		gross2 := at(scores2, i)
		net1 := gross1 - strokes1[i]
		net2 := gross2 - strokes2[i]
		par := hole.Par
		if par == 0 {
			par = 4
		}

		var hp1, hp2 float64
		switch {
		case net1 < net2:
			hp1 = holePts
		case net2 < net1:
			hp2 = holePts
		default:
			hp1, hp2 = holePts/2, holePts/2
		}

		bb1 := grossBonus(gross1, par, birdiePts, eaglePts)
		bb2 := grossBonus(gross2, par, birdiePts, eaglePts)

		res.Pts1 += hp1 + bb1
		res.Pts2 += hp2 + bb2
		res.HoleResults[i] = HoleResult{
			Hole: hole.Hole, Net1: net1, Net2: net2,
			Strokes1: strokes1[i], Strokes2: strokes2[i],
			Pts1: hp1, Pts2: hp2,
			Birdie1: bb1, Birdie2: bb2,
		}
	}

	for i := range holes {
		res.TotalNet1 += at(scores1, i) - strokes1[i]
		res.TotalNet2 += at(scores2, i) - strokes2[i]
	}
	if lowNetPts > 0 {
		switch {
		case res.TotalNet1 < res.TotalNet2:
			res.Bonus1 = lowNetPts
		case res.TotalNet2 < res.TotalNet1:
			res.Bonus2 = lowNetPts
		default:
			res.Bonus1, res.Bonus2 = lowNetPts/2, lowNetPts/2
		}
	}
	res.Pts1 = round1(res.Pts1 + res.Bonus1)
	res.Pts2 = round1(res.Pts2 + res.Bonus2)

	return res, nil
}

// grossBonus awards the birdie or eagle bonus for a gross score against
// par. Only entered scores qualify; an eagle without a configured eagle
// value pays the birdie value instead.
func grossBonus(gross, par int, birdiePts, eaglePts float64) float64 {
	if gross <= 0 {
		return 0
	}
	if gross <= par-2 {
		if eaglePts > 0 {
			return eaglePts
		}
		if birdiePts > 0 {
			return birdiePts
		}
		return 0
	}
	if gross == par-1 && birdiePts > 0 {
		return birdiePts
	}
	return 0
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
