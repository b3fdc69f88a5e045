package overflow

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/outofforest/phdb/types"
)

const limit = 20

func input(pages ...map[types.SlotIndex]types.Units) Input {
	in := Input{
		Sizes:  make([][types.SlotsPerPage]types.Units, 0, len(pages)),
		Counts: make([][types.SlotsPerPage]uint64, 0, len(pages)),
		Limit:  limit,
	}
	for _, page := range pages {
		var s [types.SlotsPerPage]types.Units
		var c [types.SlotsPerPage]uint64
		for slot, size := range page {
			s[slot] = size
			// Any number works here, it is used to verify that counts and not sizes are accumulated.
			c[slot] = uint64(size) * 3
		}
		in.Sizes = append(in.Sizes, s)
		in.Counts = append(in.Counts, c)
	}
	return in
}

func destinationFills(in Input, a types.Assignment) []types.Units {
	fills := make([]types.Units, a.PageCount())
	for dest, id := range a.Iterator() {
		fills[dest] += in.Sizes[id.Page][id.Slot]
	}
	return fills
}

func TestResolveBalanced(t *testing.T) {
	requireT := require.New(t)

	in := input(
		map[types.SlotIndex]types.Units{0: 5, 7: 5},
		map[types.SlotIndex]types.Units{3: 20},
		map[types.SlotIndex]types.Units{},
	)
	result, err := Resolve(in)
	requireT.NoError(err)
	requireT.Empty(result.Relocations)
	requireT.Zero(result.Moved)
	requireT.True(result.Current.IsIdentity())
	requireT.True(result.Prior.IsIdentity())
}

func TestResolveSingletonToHole(t *testing.T) {
	requireT := require.New(t)

	in := input(
		map[types.SlotIndex]types.Units{0: 12, 1: 8, 2: 10},
		map[types.SlotIndex]types.Units{4: 10},
	)
	result, err := Resolve(in)
	requireT.NoError(err)
	requireT.Equal([]types.Relocation{
		{
			Subpage:   types.SubpageID{Page: 0, Slot: 2},
			DestPage:  1,
			Size:      10,
			ItemCount: 30,
		},
	}, result.Relocations)
	requireT.EqualValues(in.Counts[0][2], result.Moved)

	page1 := result.Current.Page(1)
	requireT.Len(page1, types.SlotsPerPage+1)
	requireT.Equal(types.SubpageID{Page: 0, Slot: 2}, page1[types.SlotsPerPage])
	requireT.NotContains(result.Current.Page(0), types.SubpageID{Page: 0, Slot: 2})
	requireT.Len(result.Current.Page(0), types.SlotsPerPage-1)
	requireT.Equal([]types.Units{20, 20}, destinationFills(in, result.Current))
}

func TestResolveLargestCandidateTakesSmallestSufficientHole(t *testing.T) {
	requireT := require.New(t)

	in := input(
		map[types.SlotIndex]types.Units{0: 9, 1: 8, 2: 8},
		map[types.SlotIndex]types.Units{0: 10, 1: 10, 2: 6},
		map[types.SlotIndex]types.Units{0: 11},
		map[types.SlotIndex]types.Units{0: 13},
		map[types.SlotIndex]types.Units{0: 20},
	)
	result, err := Resolve(in)
	requireT.NoError(err)
	requireT.Equal([]types.Relocation{
		{
			Subpage:   types.SubpageID{Page: 0, Slot: 1},
			DestPage:  2,
			Size:      8,
			ItemCount: 24,
		},
		{
			Subpage:   types.SubpageID{Page: 1, Slot: 2},
			DestPage:  3,
			Size:      6,
			ItemCount: 18,
		},
	}, result.Relocations)
	requireT.EqualValues(24+18, result.Moved)
	requireT.Equal([]types.Units{17, 20, 19, 19, 20}, destinationFills(in, result.Current))
}

func TestResolveCandidateOrderTieBreak(t *testing.T) {
	requireT := require.New(t)

	// Both candidates have the same size, the one from the higher page is matched first.
	in := input(
		map[types.SlotIndex]types.Units{0: 15, 1: 7},
		map[types.SlotIndex]types.Units{0: 15, 5: 7},
		map[types.SlotIndex]types.Units{},
	)
	result, err := Resolve(in)
	requireT.NoError(err)
	requireT.Equal([]types.SubpageID{
		{Page: 1, Slot: 5},
		{Page: 0, Slot: 1},
	}, lo.Map(result.Relocations, func(r types.Relocation, _ int) types.SubpageID {
		return r.Subpage
	}))
	requireT.Equal([]types.PageIndex{2, 2}, lo.Map(result.Relocations, func(r types.Relocation, _ int) types.PageIndex {
		return r.DestPage
	}))
}

func TestResolveHoleTieBreakByPage(t *testing.T) {
	requireT := require.New(t)

	in := input(
		map[types.SlotIndex]types.Units{0: 15, 1: 10},
		map[types.SlotIndex]types.Units{0: 10},
		map[types.SlotIndex]types.Units{0: 10},
	)
	result, err := Resolve(in)
	requireT.NoError(err)
	requireT.Len(result.Relocations, 1)
	requireT.EqualValues(1, result.Relocations[0].DestPage)
}

func TestResolveNoHole(t *testing.T) {
	requireT := require.New(t)

	in := input(map[types.SlotIndex]types.Units{0: 30})
	_, err := Resolve(in)
	requireT.Error(err)

	var holeErr *InsufficientHoleError
	requireT.True(errors.As(err, &holeErr))
	requireT.Equal(types.SubpageID{Page: 0, Slot: 0}, holeErr.Subpage)
	requireT.EqualValues(30, holeErr.Size)
	requireT.Zero(holeErr.LargestHole)
}

func TestResolveHoleTooSmall(t *testing.T) {
	requireT := require.New(t)

	in := input(
		map[types.SlotIndex]types.Units{0: 15, 1: 12},
		map[types.SlotIndex]types.Units{0: 5, 1: 5},
		map[types.SlotIndex]types.Units{0: 10},
	)
	_, err := Resolve(in)

	var holeErr *InsufficientHoleError
	requireT.True(errors.As(err, &holeErr))
	requireT.EqualValues(12, holeErr.Size)
	requireT.EqualValues(10, holeErr.LargestHole)
}

func TestResolveNoCandidates(t *testing.T) {
	requireT := require.New(t)

	page := map[types.SlotIndex]types.Units{}
	for slot := range types.SlotIndex(types.SlotsPerPage) {
		page[slot] = 2
	}
	in := input(map[types.SlotIndex]types.Units{}, page)
	_, err := Resolve(in)

	var candidateErr *InsufficientCandidateError
	requireT.True(errors.As(err, &candidateErr))
	requireT.EqualValues(1, candidateErr.Page)
	requireT.EqualValues(12, candidateErr.Excess)
	requireT.EqualValues(limit, candidateErr.Limit)

	var holeErr *InsufficientHoleError
	requireT.False(errors.As(err, &holeErr))
}

func TestResolveKeepsPrior(t *testing.T) {
	requireT := require.New(t)

	in := input(
		map[types.SlotIndex]types.Units{0: 12, 1: 10},
		map[types.SlotIndex]types.Units{},
	)
	first, err := Resolve(in)
	requireT.NoError(err)
	requireT.False(first.Current.IsIdentity())

	in.Prior = first.Current
	second, err := Resolve(in)
	requireT.NoError(err)
	requireT.True(second.Prior.Equal(first.Current))
	requireT.True(second.Current.Equal(first.Current))
	requireT.True(first.Prior.IsIdentity())
}

func TestResolveMismatchedInput(t *testing.T) {
	requireT := require.New(t)

	in := input(map[types.SlotIndex]types.Units{})
	in.Counts = nil
	_, err := Resolve(in)
	requireT.Error(err)
}

func TestResolveRandomTables(t *testing.T) {
	requireT := require.New(t)

	r := rand.New(rand.NewSource(7))
	for range 100 {
		in := Input{Limit: 200}
		for range 64 {
			var s [types.SlotsPerPage]types.Units
			var c [types.SlotsPerPage]uint64
			for slot := range s {
				s[slot] = types.Units(3 + r.Intn(14))
				c[slot] = uint64(s[slot])
			}
			in.Sizes = append(in.Sizes, s)
			in.Counts = append(in.Counts, c)
		}

		result, err := Resolve(in)
		requireT.NoError(err)

		for _, fill := range destinationFills(in, result.Current) {
			requireT.LessOrEqual(fill, in.Limit)
		}

		again, err := Resolve(in)
		requireT.NoError(err)
		requireT.True(result.Current.Equal(again.Current))
		requireT.Equal(result.Relocations, again.Relocations)
		requireT.Equal(result.Moved, again.Moved)
	}
}
