package test

import (
	"context"
	"math/rand"
	"sort"
	"testing"

	"github.com/samber/lo"

	"github.com/outofforest/logger"
	"github.com/outofforest/phdb/types"
)

// Context returns context carrying logger, for unit tests.
func Context(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), logger.New(logger.DefaultConfig)))
	t.Cleanup(cancel)
	return ctx
}

// RandomKeys generates n pseudo-random keys.
func RandomKeys(seed int64, n uint64) []types.Key {
	r := rand.New(rand.NewSource(seed))
	keys := make([]types.Key, 0, n)
	for range n {
		keys = append(keys, types.Key(r.Uint32()))
	}
	return keys
}

// RelocatedEntries returns entries placed outside their owner pages, sorted by destination and offset.
func RelocatedEntries(entries []types.Entry) []types.Entry {
	relocated := lo.Filter(entries, func(e types.Entry, _ int) bool {
		return e.Relocated()
	})

	sort.Slice(relocated, func(i, j int) bool {
		if relocated[i].DestPage != relocated[j].DestPage {
			return relocated[i].DestPage < relocated[j].DestPage
		}
		return relocated[i].Offset < relocated[j].Offset
	})
	return relocated
}
