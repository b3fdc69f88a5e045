package store

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/outofforest/phdb/pack"
	"github.com/outofforest/phdb/placement"
	"github.com/outofforest/phdb/types"
)

// Config stores page store configuration.
type Config struct {
	Geometry  pack.Geometry
	ItemSize  uint64
	PageCount uint64
}

// Validate verifies the configuration.
func (c Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if c.PageCount == 0 {
		return errors.New("page count must be greater than zero")
	}
	if c.ItemSize == 0 {
		return errors.New("item size must be greater than zero")
	}
	return nil
}

// New creates new page store.
func New(config Config) (*Store, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Store{
		config: config,
		counts: make([][types.SlotsPerPage]uint64, config.PageCount),
		sizes:  make([][types.SlotsPerPage]types.Units, config.PageCount),
	}, nil
}

// Store keeps item counts and packed sizes of all the subpages.
type Store struct {
	config     Config
	counts     [][types.SlotsPerPage]uint64
	sizes      [][types.SlotsPerPage]types.Units
	totalItems uint64
}

// Config returns store configuration.
func (s *Store) Config() Config {
	return s.config
}

// PageCount returns number of pages.
func (s *Store) PageCount() uint64 {
	return s.config.PageCount
}

// TotalItems returns number of inserted items.
func (s *Store) TotalItems() uint64 {
	return s.totalItems
}

// Insert places the key in its subpage.
func (s *Store) Insert(key types.Key) types.SubpageID {
	id := placement.LocateID(key, s.config.PageCount)
	s.counts[id.Page][id.Slot]++
	s.sizes[id.Page][id.Slot] = s.config.Geometry.PackedSize(s.counts[id.Page][id.Slot], s.config.ItemSize)
	s.totalItems++
	return id
}

// Count returns number of items stored in the subpage.
func (s *Store) Count(id types.SubpageID) uint64 {
	return s.counts[id.Page][id.Slot]
}

// Size returns packed size of the subpage.
func (s *Store) Size(id types.SubpageID) types.Units {
	return s.sizes[id.Page][id.Slot]
}

// Counts returns copy of item counts.
func (s *Store) Counts() [][types.SlotsPerPage]uint64 {
	return append([][types.SlotsPerPage]uint64(nil), s.counts...)
}

// Sizes returns copy of packed sizes.
func (s *Store) Sizes() [][types.SlotsPerPage]types.Units {
	return append([][types.SlotsPerPage]types.Units(nil), s.sizes...)
}

// PageFill returns total packed size of subpages owned by the page.
func (s *Store) PageFill(page types.PageIndex) types.Units {
	return lo.Sum(s.sizes[page][:])
}

// PageFills returns total packed size of every page.
func (s *Store) PageFills() []types.Units {
	return lo.Times(len(s.sizes), func(page int) types.Units {
		return s.PageFill(types.PageIndex(page))
	})
}

// Fill aggregates page fills.
func (s *Store) Fill() Fill {
	fills := s.PageFills()
	sum := lo.Sum(fills)
	return Fill{
		Min:  lo.Min(fills),
		Max:  lo.Max(fills),
		Mean: float64(sum) / float64(len(fills)),
	}
}

// SpaceRatio returns the ratio between bytes of inserted items and bytes of all pages.
func (s *Store) SpaceRatio() float64 {
	return float64(s.totalItems*s.config.ItemSize) / float64(s.config.PageCount*s.config.Geometry.PageSize)
}

// Fill summarizes page fills.
type Fill struct {
	Min  types.Units
	Max  types.Units
	Mean float64
}
