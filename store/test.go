package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outofforest/phdb/pack"
	"github.com/outofforest/phdb/placement"
	"github.com/outofforest/phdb/types"
)

// NewForTest creates store with default geometry for unit tests.
func NewForTest(t *testing.T, pageCount, itemSize uint64) *Store {
	s, err := New(Config{
		Geometry:  pack.DefaultGeometry,
		ItemSize:  itemSize,
		PageCount: pageCount,
	})
	require.NoError(t, err)
	return s
}

// Populate inserts n items into the subpage.
func Populate(s *Store, id types.SubpageID, n uint64) {
	for i := range n {
		s.Insert(placement.KeyFor(id.Page, id.Slot, uint8(i)))
	}
}
