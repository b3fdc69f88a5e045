package pack

import (
	"github.com/pkg/errors"

	"github.com/outofforest/phdb/types"
)

// Default geometry values.
const (
	DefaultPageSize    = 4096
	DefaultHeaderSize  = 64
	DefaultPaddingUnit = 16
)

// DefaultGeometry is the geometry of 4KB pages with 64-byte header and 16-byte allocation granularity.
var DefaultGeometry = Geometry{
	PageSize:    DefaultPageSize,
	HeaderSize:  DefaultHeaderSize,
	PaddingUnit: DefaultPaddingUnit,
}

// CeilDiv divides x by p rounding up.
func CeilDiv(x, p uint64) uint64 {
	return (x + p - 1) / p
}

// PackedSize returns the number of padding units occupied by subpage storing itemCount items of itemSize bytes.
// Subpage consists of the index region taking one unit per paddingUnit items and the data region.
func PackedSize(itemCount, itemSize, paddingUnit uint64) types.Units {
	return types.Units(CeilDiv(itemCount, paddingUnit) + CeilDiv(itemSize*itemCount, paddingUnit))
}

// Geometry describes the byte layout of the page.
type Geometry struct {
	PageSize    uint64
	HeaderSize  uint64
	PaddingUnit uint64
}

// Validate verifies that geometry describes usable page.
func (g Geometry) Validate() error {
	switch {
	case g.PaddingUnit == 0:
		return errors.New("padding unit must be greater than zero")
	case g.PageSize < g.PaddingUnit:
		return errors.Errorf("page size %d is smaller than padding unit %d", g.PageSize, g.PaddingUnit)
	case g.HeaderSize >= g.PageSize:
		return errors.Errorf("header size %d must be smaller than page size %d", g.HeaderSize, g.PageSize)
	}
	return nil
}

// Limit returns the capacity of the page available for subpages.
func (g Geometry) Limit() types.Units {
	return types.Units((g.PageSize - g.HeaderSize) / g.PaddingUnit)
}

// HeaderUnits returns the offset of the first subpage.
func (g Geometry) HeaderUnits() types.Units {
	return types.Units(CeilDiv(g.HeaderSize, g.PaddingUnit))
}

// UnitsPerPage returns number of padding units in the whole page.
func (g Geometry) UnitsPerPage() types.Units {
	return types.Units(g.PageSize / g.PaddingUnit)
}

// ItemSlotsPerPage estimates how many items fit the page if every subpage is filled evenly.
func (g Geometry) ItemSlotsPerPage(itemSize uint64) uint64 {
	return uint64(g.Limit()) / (itemSize + 1) * g.PaddingUnit
}

// PackedSize returns packed size of subpage using geometry's padding unit.
func (g Geometry) PackedSize(itemCount, itemSize uint64) types.Units {
	return PackedSize(itemCount, itemSize, g.PaddingUnit)
}
