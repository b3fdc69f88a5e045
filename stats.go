package phdb

import (
	"fmt"

	"github.com/outofforest/phdb/types"
)

// Stats summarizes the table.
type Stats struct {
	TotalItems       uint64
	PageCount        uint64
	SlotsPerPage     uint64
	ItemSlotsPerPage uint64
	UnitsPerPage     types.Units
	MinPageFill      types.Units
	MaxPageFill      types.Units
	MeanPageFill     float64
	SpaceRatio       float64
	MovedItemCount   uint64
}

// MovedRatio returns fraction of items moved by overflow resolution.
func (s Stats) MovedRatio() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return float64(s.MovedItemCount) / float64(s.TotalItems)
}

// String formats stats in one line.
func (s Stats) String() string {
	str := fmt.Sprintf("size: %d #page:%d #pack/page:%d (min:%d max:%d avg:%.1f) space_ratio:%.3f",
		s.TotalItems, s.PageCount, s.UnitsPerPage, s.MinPageFill, s.MaxPageFill, s.MeanPageFill, s.SpaceRatio)
	if s.MovedItemCount > 0 {
		str += fmt.Sprintf(" move: %d/%d %.4f", s.MovedItemCount, s.TotalItems, s.MovedRatio())
	}
	return str
}

// Stats returns table statistics. Page fills are computed for owner pages, relocations don't change them.
func (t *Table) Stats() Stats {
	fill := t.store.Fill()
	return Stats{
		TotalItems:       t.store.TotalItems(),
		PageCount:        t.config.PageCount,
		SlotsPerPage:     types.SlotsPerPage,
		ItemSlotsPerPage: t.geometry.ItemSlotsPerPage(t.config.ItemSize),
		UnitsPerPage:     t.geometry.UnitsPerPage(),
		MinPageFill:      fill.Min,
		MaxPageFill:      fill.Max,
		MeanPageFill:     fill.Mean,
		SpaceRatio:       t.store.SpaceRatio(),
		MovedItemCount:   t.moved,
	}
}
