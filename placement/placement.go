package placement

import (
	"github.com/outofforest/phdb/types"
)

// Locate returns the page and the slot the key is placed in.
// Page count must be greater than zero.
func Locate(key types.Key, pageCount uint64) (types.PageIndex, types.SlotIndex) {
	page := types.PageIndex(uint64(key>>types.PageShift) % pageCount)
	slot := types.SlotIndex((key & types.SlotMask) >> types.SlotShift)
	return page, slot
}

// LocateID returns the identifier of the subpage the key is placed in.
func LocateID(key types.Key, pageCount uint64) types.SubpageID {
	page, slot := Locate(key, pageCount)
	return types.SubpageID{Page: page, Slot: slot}
}

// KeyFor builds the key landing in the requested page and slot. Lower bits are filled with low.
func KeyFor(page types.PageIndex, slot types.SlotIndex, low uint8) types.Key {
	return types.Key(uint32(page)<<types.PageShift | uint32(slot)<<types.SlotShift | uint32(low))
}
