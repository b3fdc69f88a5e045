package layout

import (
	"cmp"
	"slices"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/outofforest/photon"
	"github.com/outofforest/phdb/types"
)

// Resolve computes the position of every subpage.
// Subpages are packed one after another, in assignment order, starting right after the page header.
// Entries are returned ordered by source page and slot.
func Resolve(
	assignment types.Assignment,
	sizes [][types.SlotsPerPage]types.Units,
	headerUnits types.Units,
) []types.Entry {
	entries := make([]types.Entry, 0, len(sizes)*types.SlotsPerPage)

	var dest types.PageIndex
	cursor := headerUnits
	for d, id := range assignment.Iterator() {
		if d != dest {
			dest = d
			cursor = headerUnits
		}

		length := sizes[id.Page][id.Slot]
		entries = append(entries, types.Entry{
			SourcePage: id.Page,
			SourceSlot: id.Slot,
			DestPage:   d,
			Offset:     cursor,
			Length:     length,
		})
		cursor += length
	}

	slices.SortFunc(entries, func(a, b types.Entry) int {
		return cmp.Or(
			cmp.Compare(a.SourcePage, b.SourcePage),
			cmp.Compare(a.SourceSlot, b.SourceSlot),
		)
	})

	return entries
}

// Validate verifies that every subpage of pageCount pages is assigned exactly once.
func Validate(assignment types.Assignment, pageCount uint64) error {
	if assignment.PageCount() != pageCount {
		return errors.Errorf("assignment covers %d pages, expected %d", assignment.PageCount(), pageCount)
	}

	seen := bitset.New(uint(pageCount * types.SlotsPerPage))
	for _, id := range assignment.Iterator() {
		if uint64(id.Page) >= pageCount || id.Slot >= types.SlotsPerPage {
			return errors.Errorf("subpage %d:%d out of range", id.Page, id.Slot)
		}
		bit := uint(uint64(id.Page)*types.SlotsPerPage + uint64(id.Slot))
		if seen.Test(bit) {
			return errors.Errorf("subpage %d:%d assigned more than once", id.Page, id.Slot)
		}
		seen.Set(bit)
	}

	if missing := pageCount*types.SlotsPerPage - uint64(seen.Count()); missing > 0 {
		return errors.Errorf("%d subpages are not assigned", missing)
	}
	return nil
}

// Fills returns the total length of entries laid out on each destination page.
func Fills(entries []types.Entry, pageCount uint64) []types.Units {
	fills := make([]types.Units, pageCount)
	for _, e := range entries {
		fills[e.DestPage] += e.Length
	}
	return fills
}

// Checksum returns fingerprint of the layout, identical layouts produce identical checksums.
func Checksum(entries []types.Entry) [32]byte {
	hasher := blake3.New()
	for _, e := range entries {
		r := checksumRecord{
			SourcePage: uint64(e.SourcePage),
			SourceSlot: uint64(e.SourceSlot),
			DestPage:   uint64(e.DestPage),
			Offset:     uint64(e.Offset),
			Length:     uint64(e.Length),
		}
		// Hash writer never returns an error.
		_, _ = hasher.Write(photon.NewFromValue(&r).B)
	}

	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}

// checksumRecord has no padding so its bytes are fully defined.
type checksumRecord struct {
	SourcePage uint64
	SourceSlot uint64
	DestPage   uint64
	Offset     uint64
	Length     uint64
}
