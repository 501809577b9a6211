package es

import (
	"fmt"
	"sort"
)

// CenteredRanks replaces each score by its rank among the batch,
// rescaled linearly into [-0.5, +0.5]. Ties are broken by stable
// ascending sort order, so equal scores keep their input order.
func CenteredRanks(scores []float64) []float64 {
	n := len(scores)
	if n == 0 {
		return nil
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] < scores[order[j]]
	})

	denom := float64(n - 1)
	if denom < 1 {
		denom = 1
	}
	ranks := make([]float64, n)
	for rank, idx := range order {
		ranks[idx] = float64(rank)/denom - 0.5
	}
	return ranks
}

// MirrorPairDifference folds rank weights of antithetic pairs
// (positive, negative) into single scalars positive - negative,
// halving the weight vector to align with the positive-half gradient
// noise.
func MirrorPairDifference(weights []float64) ([]float64, error) {
	if len(weights)%2 != 0 {
		return nil, fmt.Errorf("%w: %d weights", ErrOddMirroredSamples, len(weights))
	}
	out := make([]float64, len(weights)/2)
	for i := range out {
		out[i] = weights[2*i] - weights[2*i+1]
	}
	return out, nil
}
