package overflow

import (
	"github.com/outofforest/phdb/types"
)

// MaxCandidates is the maximum number of subpages evicted from one page.
const MaxCandidates = 3

// subset is the group of slots considered for eviction, ordered by (sum, slots...).
type subset struct {
	sum   types.Units
	slots [MaxCandidates]types.SlotIndex
	n     int
}

func (s subset) Slots() []types.SlotIndex {
	return append([]types.SlotIndex(nil), s.slots[:s.n]...)
}

// lessSubset compares subsets of equal cardinality as (sum, slot0, slot1, ...) tuples.
func lessSubset(a, b subset) bool {
	if a.sum != b.sum {
		return a.sum < b.sum
	}
	for i := range a.n {
		if a.slots[i] != b.slots[i] {
			return a.slots[i] < b.slots[i]
		}
	}
	return false
}

// Candidates selects the smallest group of slots whose sizes add up to at least excess.
// Groups of one, two and three slots are tried in this order. Within the cardinality the group with the smallest
// (sum, slots...) tuple wins, so the exact match is always preferred.
// False is returned if no group of up to MaxCandidates slots covers the excess.
func Candidates(sizes []types.Units, excess types.Units) ([]types.SlotIndex, bool) {
	for n := 1; n <= MaxCandidates; n++ {
		if best, found := bestSubset(sizes, excess, n); found {
			return best.Slots(), true
		}
	}
	return nil, false
}

func bestSubset(sizes []types.Units, excess types.Units, n int) (subset, bool) {
	var best subset
	var found bool
	current := subset{n: n}

	// walk visits subsets in lexicographic order of slots, returns true when exact match is found.
	var walk func(depth, start int) bool
	walk = func(depth, start int) bool {
		if depth == n {
			if current.sum < excess {
				return false
			}
			if !found || lessSubset(current, best) {
				best = current
				found = true
			}
			return current.sum == excess
		}

		for i := start; i < len(sizes); i++ {
			current.slots[depth] = types.SlotIndex(i)
			current.sum += sizes[i]
			exact := walk(depth+1, i+1)
			current.sum -= sizes[i]
			if exact {
				return true
			}
		}
		return false
	}
	walk(0, 0)

	return best, found
}
