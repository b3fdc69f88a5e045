package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityAssignment(t *testing.T) {
	requireT := require.New(t)

	a := NewIdentityAssignment(3)
	requireT.EqualValues(3, a.PageCount())
	requireT.True(a.IsIdentity())

	var n int
	for dest, id := range a.Iterator() {
		requireT.Equal(dest, id.Page)
		n++
	}
	requireT.Equal(3*SlotsPerPage, n)
}

func TestAssignmentMoveIsImmutable(t *testing.T) {
	requireT := require.New(t)

	a := NewIdentityAssignment(2)
	id := SubpageID{Page: 0, Slot: 4}

	b, err := a.Move(id, 1)
	requireT.NoError(err)

	requireT.True(a.IsIdentity())
	requireT.False(b.IsIdentity())
	requireT.False(a.Equal(b))
	requireT.NotContains(b.Page(0), id)
	requireT.Equal(id, b.Page(1)[SlotsPerPage])

	_, err = a.Move(id, 2)
	requireT.Error(err)
	_, err = a.Move(SubpageID{Page: 5}, 0)
	requireT.Error(err)
}

func TestAssignmentPageReturnsCopy(t *testing.T) {
	requireT := require.New(t)

	a := NewIdentityAssignment(1)
	page := a.Page(0)
	page[0] = SubpageID{Page: 10, Slot: 10}

	requireT.True(a.IsIdentity())
}

func TestAssignmentApply(t *testing.T) {
	requireT := require.New(t)

	a := NewIdentityAssignment(3)
	relocations := []Relocation{
		{Subpage: SubpageID{Page: 0, Slot: 1}, DestPage: 2},
		{Subpage: SubpageID{Page: 1, Slot: 15}, DestPage: 2},
		{Subpage: SubpageID{Page: 0, Slot: 3}, DestPage: 1},
	}

	b, err := a.Apply(relocations)
	requireT.NoError(err)
	requireT.True(a.IsIdentity())

	page2 := b.Page(2)
	requireT.Equal([]SubpageID{{Page: 0, Slot: 1}, {Page: 1, Slot: 15}}, page2[SlotsPerPage:])
	requireT.Equal([]SubpageID{{Page: 0, Slot: 3}}, b.Page(1)[SlotsPerPage-1:])
	requireT.Len(b.Page(0), SlotsPerPage-2)

	var moved Assignment
	for _, r := range relocations {
		if moved.PageCount() == 0 {
			moved = a
		}
		moved, err = moved.Move(r.Subpage, r.DestPage)
		requireT.NoError(err)
	}
	requireT.True(b.Equal(moved))

	_, err = a.Apply([]Relocation{{Subpage: SubpageID{Page: 0, Slot: 1}, DestPage: 3}})
	requireT.Error(err)
}
