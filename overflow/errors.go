package overflow

import (
	"fmt"

	"github.com/outofforest/phdb/types"
)

// InsufficientCandidateError is returned if page overflow can't be covered by evicting up to MaxCandidates
// subpages. It means that the page size is too small comparing to the item size and padding unit.
type InsufficientCandidateError struct {
	Page   types.PageIndex
	Sizes  []types.Units
	Limit  types.Units
	Excess types.Units
}

func (e *InsufficientCandidateError) Error() string {
	return fmt.Sprintf("no suitable candidates on page %d: sizes %v, sum %d - limit %d = %d",
		e.Page, e.Sizes, e.Limit+e.Excess, e.Limit, e.Excess)
}

// InsufficientHoleError is returned if there is no hole big enough to host the evicted subpage.
// It means that the table as a whole has too little spare capacity.
type InsufficientHoleError struct {
	Subpage     types.SubpageID
	Size        types.Units
	LargestHole types.Units
}

func (e *InsufficientHoleError) Error() string {
	return fmt.Sprintf("no hole for subpage %d:%d of size %d, largest hole is %d",
		e.Subpage.Page, e.Subpage.Slot, e.Size, e.LargestHole)
}
