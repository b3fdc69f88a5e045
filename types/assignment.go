package types

import (
	"slices"

	"github.com/pkg/errors"
)

// NewIdentityAssignment returns the assignment where every subpage lives on its owner page.
func NewIdentityAssignment(pageCount uint64) Assignment {
	pages := make([][]SubpageID, pageCount)
	for p := range pageCount {
		list := make([]SubpageID, 0, SlotsPerPage)
		for s := range SlotIndex(SlotsPerPage) {
			list = append(list, SubpageID{Page: PageIndex(p), Slot: s})
		}
		pages[p] = list
	}
	return Assignment{pages: pages}
}

// Assignment maps destination page to the ordered list of subpages laid out on it.
// The value is immutable, modifications return new assignment.
type Assignment struct {
	pages [][]SubpageID
}

// PageCount returns number of destination pages.
func (a Assignment) PageCount() uint64 {
	return uint64(len(a.pages))
}

// Page returns copy of the subpage list laid out on the destination page.
func (a Assignment) Page(page PageIndex) []SubpageID {
	return slices.Clone(a.pages[page])
}

// Iterator iterates over destination pages and their subpages in assignment order.
func (a Assignment) Iterator() func(func(PageIndex, SubpageID) bool) {
	return func(yield func(PageIndex, SubpageID) bool) {
		for p, list := range a.pages {
			for _, id := range list {
				if !yield(PageIndex(p), id) {
					return
				}
			}
		}
	}
}

// IsIdentity tells if every subpage lives on its owner page in slot order.
func (a Assignment) IsIdentity() bool {
	for p, list := range a.pages {
		if len(list) != SlotsPerPage {
			return false
		}
		for s, id := range list {
			if id.Page != PageIndex(p) || id.Slot != SlotIndex(s) {
				return false
			}
		}
	}
	return true
}

// Equal compares two assignments, including order of subpages.
func (a Assignment) Equal(b Assignment) bool {
	return slices.EqualFunc(a.pages, b.pages, slices.Equal[[]SubpageID])
}

// Move returns new assignment where subpage is removed from its current page and appended to the destination.
func (a Assignment) Move(id SubpageID, dest PageIndex) (Assignment, error) {
	if uint64(dest) >= a.PageCount() {
		return Assignment{}, errors.Errorf("destination page %d out of range", dest)
	}

	pages := make([][]SubpageID, len(a.pages))
	found := false
	for p, list := range a.pages {
		if i := slices.Index(list, id); i >= 0 {
			list = slices.Delete(slices.Clone(list), i, i+1)
			found = true
		}
		pages[p] = list
	}
	if !found {
		return Assignment{}, errors.Errorf("subpage %d:%d is not assigned", id.Page, id.Slot)
	}
	pages[dest] = append(slices.Clone(pages[dest]), id)

	return Assignment{pages: pages}, nil
}

// Apply returns new assignment with relocations applied in order.
func (a Assignment) Apply(relocations []Relocation) (Assignment, error) {
	pages := make([][]SubpageID, len(a.pages))
	for p, list := range a.pages {
		pages[p] = slices.Clone(list)
	}

	for _, r := range relocations {
		if uint64(r.DestPage) >= uint64(len(pages)) {
			return Assignment{}, errors.Errorf("destination page %d out of range", r.DestPage)
		}
		var found bool
		for p, list := range pages {
			if i := slices.Index(list, r.Subpage); i >= 0 {
				pages[p] = slices.Delete(list, i, i+1)
				found = true
				break
			}
		}
		if !found {
			return Assignment{}, errors.Errorf("subpage %d:%d is not assigned", r.Subpage.Page, r.Subpage.Slot)
		}
		pages[r.DestPage] = append(pages[r.DestPage], r.Subpage)
	}

	return Assignment{pages: pages}, nil
}
