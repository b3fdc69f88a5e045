package types

const (
	// UInt64Length is the number of bytes taken by uint64.
	UInt64Length = 8

	// BitsPerSlot is the number of key bits addressing the subpage inside a page.
	BitsPerSlot = 4

	// SlotsPerPage is the number of subpages in every page.
	SlotsPerPage = 1 << BitsPerSlot

	// PageShift is the number of low key bits not used for page selection.
	PageShift = 12

	// SlotShift is the position of the slot bits inside the key.
	SlotShift = PageShift - BitsPerSlot

	// SlotMask extracts bits used for slot selection before shifting.
	SlotMask = 1<<PageShift - 1
)

type (
	// Key is the opaque item key.
	Key uint32

	// PageIndex is the index of the page.
	PageIndex uint64

	// SlotIndex is the index of the subpage inside the page.
	SlotIndex uint8

	// Units counts allocation-granularity units (padding units).
	Units uint64
)

// SubpageID identifies subpage by its owner page and slot. It never changes, even if subpage is relocated.
type SubpageID struct {
	Page PageIndex
	Slot SlotIndex
}

// Entry is the resolved position of a subpage.
type Entry struct {
	SourcePage PageIndex
	SourceSlot SlotIndex
	DestPage   PageIndex
	Offset     Units
	Length     Units
}

// Relocated tells if subpage lives outside its owner page.
func (e Entry) Relocated() bool {
	return e.SourcePage != e.DestPage
}

// End returns the first unit after the entry.
func (e Entry) End() Units {
	return e.Offset + e.Length
}

// ByteOffset converts offset to bytes.
func (e Entry) ByteOffset(paddingUnit uint64) uint64 {
	return uint64(e.Offset) * paddingUnit
}

// ByteLength converts length to bytes.
func (e Entry) ByteLength(paddingUnit uint64) uint64 {
	return uint64(e.Length) * paddingUnit
}

// Relocation describes subpage moved to another page.
type Relocation struct {
	Subpage   SubpageID
	DestPage  PageIndex
	Size      Units
	ItemCount uint64
}
