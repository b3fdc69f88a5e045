package overflow

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/outofforest/mass"
	"github.com/outofforest/phdb/types"
)

// Input is the state of the table taken by resolver.
type Input struct {
	Sizes  [][types.SlotsPerPage]types.Units
	Counts [][types.SlotsPerPage]uint64
	Limit  types.Units

	// Prior is the assignment being replaced. Identity is assumed if it is empty.
	Prior types.Assignment
}

// Result is the outcome of the resolution.
type Result struct {
	Prior       types.Assignment
	Current     types.Assignment
	Relocations []types.Relocation
	Moved       uint64
}

type candidate struct {
	Size      types.Units
	ItemCount uint64
	ID        types.SubpageID
}

type hole struct {
	Capacity types.Units
	Page     types.PageIndex
}

func compareCandidates(a, b *candidate) int {
	return cmp.Or(
		cmp.Compare(a.Size, b.Size),
		cmp.Compare(a.ID.Page, b.ID.Page),
		cmp.Compare(a.ID.Slot, b.ID.Slot),
	)
}

func compareHoles(a, b hole) int {
	return cmp.Or(
		cmp.Compare(a.Capacity, b.Capacity),
		cmp.Compare(a.Page, b.Page),
	)
}

// Resolve computes the assignment where no page exceeds the limit.
// Pages above the limit evict subpages selected by Candidates. Evicted subpages are matched, largest first, with the
// smallest hole able to host them.
func Resolve(input Input) (Result, error) {
	if len(input.Sizes) != len(input.Counts) {
		return Result{}, errors.Errorf("sizes cover %d pages but counts cover %d", len(input.Sizes), len(input.Counts))
	}

	pageCount := uint64(len(input.Sizes))
	prior := input.Prior
	if prior.PageCount() == 0 {
		prior = types.NewIdentityAssignment(pageCount)
	}

	candidates, holes, err := classify(input)
	if err != nil {
		return Result{}, err
	}

	relocations, err := match(candidates, holes)
	if err != nil {
		return Result{}, err
	}

	current, err := types.NewIdentityAssignment(pageCount).Apply(relocations)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Prior:       prior,
		Current:     current,
		Relocations: relocations,
		Moved: lo.SumBy(relocations, func(r types.Relocation) uint64 {
			return r.ItemCount
		}),
	}, nil
}

func classify(input Input) ([]*candidate, []hole, error) {
	massCandidate := mass.New[candidate](types.SlotsPerPage)

	var candidates []*candidate
	var holes []hole
	for p, sizes := range input.Sizes {
		page := types.PageIndex(p)
		sum := lo.Sum(sizes[:])
		switch {
		case sum > input.Limit:
			excess := sum - input.Limit
			slots, found := Candidates(sizes[:], excess)
			if !found {
				return nil, nil, errors.WithStack(&InsufficientCandidateError{
					Page:   page,
					Sizes:  slices.Clone(sizes[:]),
					Limit:  input.Limit,
					Excess: excess,
				})
			}
			for _, slot := range slots {
				c := massCandidate.New()
				*c = candidate{
					Size:      sizes[slot],
					ItemCount: input.Counts[p][slot],
					ID:        types.SubpageID{Page: page, Slot: slot},
				}
				candidates = append(candidates, c)
			}
		case sum < input.Limit:
			holes = append(holes, hole{Capacity: input.Limit - sum, Page: page})
		}
	}

	return candidates, holes, nil
}

func match(candidates []*candidate, holes []hole) ([]types.Relocation, error) {
	// Candidates only shrink from the end, so sorting them once keeps them ordered.
	slices.SortFunc(candidates, compareCandidates)

	relocations := make([]types.Relocation, 0, len(candidates))
	for len(candidates) > 0 {
		slices.SortFunc(holes, compareHoles)

		c := candidates[len(candidates)-1]
		hi, _ := slices.BinarySearchFunc(holes, c.Size, func(h hole, size types.Units) int {
			return cmp.Compare(h.Capacity, size)
		})
		if hi == len(holes) {
			var largest types.Units
			if len(holes) > 0 {
				largest = holes[len(holes)-1].Capacity
			}
			return nil, errors.WithStack(&InsufficientHoleError{
				Subpage:     c.ID,
				Size:        c.Size,
				LargestHole: largest,
			})
		}

		relocations = append(relocations, types.Relocation{
			Subpage:   c.ID,
			DestPage:  holes[hi].Page,
			Size:      c.Size,
			ItemCount: c.ItemCount,
		})

		holes[hi].Capacity -= c.Size
		if holes[hi].Capacity == 0 {
			holes = slices.Delete(holes, hi, hi+1)
		}
		candidates = candidates[:len(candidates)-1]
	}

	return relocations, nil
}
