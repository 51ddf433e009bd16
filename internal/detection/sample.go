package detection

import (
	"math/rand"
	"sort"
)

// SampleIndices picks k distinct indices from [0, n) and returns them
// sorted. k is capped at n. A nil rng uses the global source.
func SampleIndices(n, k int, rng *rand.Rand) []int {
	k = min(max(k, 0), max(n, 0))
	if k == 0 {
		return nil
	}

	perm := rand.Perm //nolint:gosec // G404: sampling plot images, not crypto
	if rng != nil {
		perm = rng.Perm
	}
	idx := perm(n)[:k]
	sort.Ints(idx)
	return idx
}
