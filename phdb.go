package phdb

import (
	"context"

	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/phdb/layout"
	"github.com/outofforest/phdb/overflow"
	"github.com/outofforest/phdb/pack"
	"github.com/outofforest/phdb/store"
	"github.com/outofforest/phdb/types"
)

// Config stores table configuration.
type Config struct {
	PageSize    uint64
	HeaderSize  uint64
	PaddingUnit uint64
	ItemSize    uint64
	PageCount   uint64
}

// DefaultConfig is the configuration of 1MB table of 4KB pages storing 20-byte items.
var DefaultConfig = Config{
	PageSize:    pack.DefaultPageSize,
	HeaderSize:  pack.DefaultHeaderSize,
	PaddingUnit: pack.DefaultPaddingUnit,
	ItemSize:    20,
	PageCount:   256,
}

// PageCountForMemory returns number of pages fitting in memory of the given size.
func PageCountForMemory(memorySize, pageSize uint64) uint64 {
	return memorySize / pageSize
}

// Geometry returns page geometry defined by the config.
func (c Config) Geometry() pack.Geometry {
	return pack.Geometry{
		PageSize:    c.PageSize,
		HeaderSize:  c.HeaderSize,
		PaddingUnit: c.PaddingUnit,
	}
}

// New creates new table.
func New(config Config) (*Table, error) {
	s, err := store.New(store.Config{
		Geometry:  config.Geometry(),
		ItemSize:  config.ItemSize,
		PageCount: config.PageCount,
	})
	if err != nil {
		return nil, err
	}

	return &Table{
		config:     config,
		geometry:   config.Geometry(),
		store:      s,
		assignment: types.NewIdentityAssignment(config.PageCount),
	}, nil
}

// Table simulates the layout of paged hash table.
// It is not safe for concurrent use.
type Table struct {
	config     Config
	geometry   pack.Geometry
	store      *store.Store
	assignment types.Assignment
	moved      uint64
}

// Resolution is the outcome of overflow resolution.
type Resolution struct {
	MovedItemCount uint64
	Relocations    []types.Relocation
	Prior          types.Assignment
	Current        types.Assignment
}

// Config returns table configuration.
func (t *Table) Config() Config {
	return t.config
}

// Insert inserts item with the key.
func (t *Table) Insert(key types.Key) {
	t.store.Insert(key)
}

// InsertKeys inserts items with the keys.
func (t *Table) InsertKeys(keys ...types.Key) {
	for _, key := range keys {
		t.store.Insert(key)
	}
}

// ResolveOverflow relocates subpages so no page exceeds its capacity.
// On error table stays unchanged. Errors are *overflow.InsufficientCandidateError or *overflow.InsufficientHoleError.
func (t *Table) ResolveOverflow(ctx context.Context) (Resolution, error) {
	log := logger.Get(ctx)

	result, err := overflow.Resolve(overflow.Input{
		Sizes:  t.store.Sizes(),
		Counts: t.store.Counts(),
		Limit:  t.geometry.Limit(),
		Prior:  t.assignment,
	})
	if err != nil {
		return Resolution{}, err
	}
	if err := layout.Validate(result.Current, t.config.PageCount); err != nil {
		return Resolution{}, err
	}

	for _, r := range result.Relocations {
		log.Debug("Subpage relocated",
			zap.Uint64("page", uint64(r.Subpage.Page)),
			zap.Uint8("slot", uint8(r.Subpage.Slot)),
			zap.Uint64("destination", uint64(r.DestPage)),
			zap.Uint64("size", uint64(r.Size)),
			zap.Uint64("items", r.ItemCount))
	}

	t.assignment = result.Current
	t.moved = result.Moved

	log.Info("Overflow resolved",
		zap.Int("relocations", len(result.Relocations)),
		zap.Uint64("movedItems", result.Moved),
		zap.Uint64("totalItems", t.store.TotalItems()))

	return Resolution{
		MovedItemCount: result.Moved,
		Relocations:    result.Relocations,
		Prior:          result.Prior,
		Current:        result.Current,
	}, nil
}

// Layout returns position of every subpage, ordered by source page and slot.
func (t *Table) Layout() []types.Entry {
	return layout.Resolve(t.assignment, t.store.Sizes(), t.geometry.HeaderUnits())
}

// Assignment returns current assignment of subpages to pages.
func (t *Table) Assignment() types.Assignment {
	return t.assignment
}

// Count returns number of items in the subpage.
func (t *Table) Count(id types.SubpageID) uint64 {
	return t.store.Count(id)
}

// Size returns packed size of the subpage.
func (t *Table) Size(id types.SubpageID) types.Units {
	return t.store.Size(id)
}
