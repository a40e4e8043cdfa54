package scoring

import (
	"math"
	"sort"

	"league-backend/internal/models"
)

// AllocateStrokes distributes a handicap differential across the nine by
// difficulty rank: one stroke per hole in stroke-index order (1 = hardest
// first), wrapping around until the rounded differential is exhausted. A
// differential over 9 therefore gives every hole a stroke before any hole
// gets a second. The result is index-aligned to holes and sums to the
// rounded differential.
func AllocateStrokes(hcp float64, holes []models.HoleDef) []int {
	strokes := make([]int, len(holes))
	remaining := int(math.Round(hcp))
	if remaining <= 0 || len(holes) == 0 {
		return strokes
	}

	order := make([]int, len(holes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return holes[order[a]].StrokeIndex < holes[order[b]].StrokeIndex
	})

	for s := 0; s < remaining; s++ {
		strokes[order[s%len(order)]]++
	}
	return strokes
}
