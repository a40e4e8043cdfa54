// Package scoring holds the league's pure computation engine: handicaps,
// stroke allocation, match points, absence fills, standings, skins, and
// playoff seeding. Nothing in this package touches storage; every function
// is a pure fold over (config, matches, rounds) and safe to call
// concurrently.
package scoring

import (
	"math"
	"sort"

	"league-backend/internal/models"
)

// round1 rounds to one decimal place, the precision all league points and
// handicaps are kept at.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// CalcHandicap computes a player's current handicap index from their round
// history per the league's handicap policy. Rounds with non-positive gross
// scores are ignored entirely. Returns 0 when no eligible rounds exist;
// the result is always within [0, policy.Max].
func CalcHandicap(rounds []models.Round, cfg *models.Config) float64 {
	pol := cfg.Handicap
	numRounds := pol.Rounds
	if numRounds <= 0 {
		numRounds = 5
	}
	factor := pol.Factor
	if factor <= 0 {
		factor = 0.9
	}
	maxHcp := pol.Max
	if maxHcp <= 0 {
		maxHcp = 18
	}

	eligible := make([]models.Round, 0, len(rounds))
	for _, r := range rounds {
		if r.GrossScore > 0 {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		return 0
	}

	// Most recent first; stable so same-date rounds keep history order.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Date > eligible[j].Date
	})
	if len(eligible) > numRounds {
		eligible = eligible[:numRounds]
	}

	// WHS differentials when both slope and rating are configured,
	// otherwise raw gross scores for the league formula.
	slope, rating := cfg.Course.Slope, cfg.Course.Rating
	useWHS := slope > 0 && rating > 0
	values := make([]float64, 0, len(eligible))
	for _, r := range eligible {
		if useWHS {
			values = append(values, (113/slope)*(float64(r.GrossScore)-rating/2))
		} else {
			values = append(values, float64(r.GrossScore))
		}
	}

	// Drop outliers before averaging, but only with enough rounds to
	// leave at least one value behind.
	if pol.Drop != "" && pol.Drop != "none" && len(values) > 2 {
		sort.Float64s(values)
		if pol.Drop == "low" || pol.Drop == "both" {
			values = values[1:]
		}
		if pol.Drop == "high" || pol.Drop == "both" {
			values = values[:len(values)-1]
		}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))

	var hcp float64
	if useWHS {
		hcp = round1(avg * factor)
	} else {
		par := float64(cfg.Par(models.SideFront))
		hcp = round1((avg - par) * factor)
	}

	return clamp(hcp, 0, maxHcp)
}

// CalcHandicapAdj is CalcHandicap with the administrator's manual per-player
// adjustment applied post-clamp and the sum re-clamped.
func CalcHandicapAdj(rounds []models.Round, cfg *models.Config, playerID string) float64 {
	base := CalcHandicap(rounds, cfg)
	adj := cfg.ManualAdj[playerID]
	maxHcp := cfg.Handicap.Max
	if maxHcp <= 0 {
		maxHcp = 18
	}
	return clamp(base+adj, 0, maxHcp)
}

// PlayerHandicap dispatches on the configured handicap system: scratch
// leagues play off zero, manual leagues use the seeded handicap plus any
// adjustment, everything else runs the formula over round history.
func PlayerHandicap(p *models.Player, rounds []models.Round, cfg *models.Config) float64 {
	if p == nil {
		return 0
	}
	maxHcp := cfg.Handicap.Max
	if maxHcp <= 0 {
		maxHcp = 18
	}
	switch cfg.Handicap.System {
	case "scratch":
		return 0
	case "manual":
		return clamp(p.SeedHcp+cfg.ManualAdj[p.ID], 0, maxHcp)
	default:
		return CalcHandicapAdj(rounds, cfg, p.ID)
	}
}

// SeedHandicap estimates a starting handicap from imported gross scores:
// the average of the best 5, less par 35, scaled by factor, clamped to
// [0, 18]. Used before any league rounds exist.
func SeedHandicap(grossScores []int, factor float64) float64 {
	if len(grossScores) == 0 {
		return 0
	}
	if factor <= 0 {
		factor = 0.9
	}
	sorted := append([]int(nil), grossScores...)
	sort.Ints(sorted)
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	sum := 0
	for _, s := range sorted {
		sum += s
	}
	avg := float64(sum) / float64(len(sorted))
	return clamp(round1((avg-35)*factor), 0, 18)
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
