package sim

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/outofforest/logger"
	"github.com/outofforest/parallel"
	"github.com/outofforest/phdb"
	"github.com/outofforest/phdb/layout"
	"github.com/outofforest/phdb/placement"
	"github.com/outofforest/phdb/types"
)

const keyBufferSize = 1024

// Config stores simulation configuration.
type Config struct {
	ItemSize   uint64
	MemorySize uint64
	Ratio      float64
	Seed       int64
	Frames     uint64
	Hash       placement.Algorithm
}

// DefaultConfig fills 1MB table of 20-byte items up to 87% and renders 40 frames while loading.
var DefaultConfig = Config{
	ItemSize:   20,
	MemorySize: 1024 * 1024,
	Ratio:      0.87,
	Seed:       0,
	Frames:     40,
	Hash:       placement.XXHash,
}

// Items returns number of items inserted by the simulation.
func (c Config) Items() uint64 {
	if c.ItemSize == 0 || !(c.Ratio > 0) || math.IsInf(c.Ratio, 0) {
		return 0
	}
	return uint64(float64(c.MemorySize) * c.Ratio / float64(c.ItemSize))
}

// Validate verifies the configuration.
func (c Config) Validate() error {
	switch {
	case c.ItemSize == 0:
		return errors.New("item size must be greater than zero")
	case math.IsNaN(c.Ratio) || math.IsInf(c.Ratio, 0):
		return errors.Errorf("ratio %f must be finite", c.Ratio)
	case c.Ratio <= 0:
		return errors.Errorf("ratio %f must be greater than zero", c.Ratio)
	case c.MemorySize < phdb.DefaultConfig.PageSize:
		return errors.Errorf("memory size %d is smaller than page size %d", c.MemorySize, phdb.DefaultConfig.PageSize)
	case c.Frames == 0:
		return errors.New("number of frames must be greater than zero")
	case c.Items() == 0:
		return errors.New("simulation would insert no items")
	}
	_, err := placement.NewHasher[uint64](c.Hash, 0)
	return err
}

// Table returns configuration of the simulated table.
func (c Config) Table() phdb.Config {
	config := phdb.DefaultConfig
	config.ItemSize = c.ItemSize
	config.PageCount = phdb.PageCountForMemory(c.MemorySize, config.PageSize)
	return config
}

// Stage is the stage of the simulation a frame is taken at.
type Stage byte

// Stages.
const (
	StageEmpty Stage = iota
	StageLoading
	StageLoaded
	StageResolved
)

func (s Stage) String() string {
	switch s {
	case StageEmpty:
		return "empty"
	case StageLoading:
		return "loading"
	case StageLoaded:
		return "loaded"
	case StageResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Frame is the snapshot of the table passed to the renderer.
type Frame struct {
	Index    uint64
	Stage    Stage
	Inserted uint64
	Stats    phdb.Stats
	Layout   []types.Entry
}

// Sink receives frames.
type Sink interface {
	Frame(ctx context.Context, frame Frame) error
}

// SinkFunc adapts function to Sink.
type SinkFunc func(ctx context.Context, frame Frame) error

// Frame calls the function.
func (f SinkFunc) Frame(ctx context.Context, frame Frame) error {
	return f(ctx, frame)
}

// Summary describes completed simulation.
type Summary struct {
	RunID      uuid.UUID
	Frames     uint64
	Stats      phdb.Stats
	Resolution phdb.Resolution
	Checksum   [32]byte
	MaxFill    types.Units
}

// Run inserts keys hashed from a seeded counter into the table, resolves overflow and reports frames to the sink.
// Resolver errors are returned unchanged together with the summary of the loaded table.
func Run(ctx context.Context, config Config, sink Sink) (Summary, error) {
	if err := config.Validate(); err != nil {
		return Summary{}, err
	}

	table, err := phdb.New(config.Table())
	if err != nil {
		return Summary{}, err
	}
	hasher, err := placement.NewHasher[uint64](config.Hash, uint64(config.Seed))
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		RunID: uuid.New(),
	}
	log := logger.Get(ctx).With(zap.Stringer("runID", summary.RunID))
	n := config.Items()

	log.Info("Simulation started",
		zap.Uint64("items", n),
		zap.Uint64("pages", table.Config().PageCount),
		zap.Uint64("itemSize", config.ItemSize),
		zap.Int64("seed", config.Seed),
		zap.Stringer("hash", config.Hash))

	emit := func(ctx context.Context, stage Stage, inserted uint64) error {
		frame := Frame{
			Index:    summary.Frames,
			Stage:    stage,
			Inserted: inserted,
			Stats:    table.Stats(),
			Layout:   table.Layout(),
		}
		summary.Frames++
		return sink.Frame(ctx, frame)
	}

	if err := emit(ctx, StageEmpty, 0); err != nil {
		return summary, err
	}

	keyCh := make(chan types.Key, keyBufferSize)
	err = parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("generator", parallel.Continue, func(ctx context.Context) error {
			defer close(keyCh)

			for i := range n {
				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case keyCh <- hasher.Key(i):
				}
			}
			return nil
		})
		spawn("inserter", parallel.Continue, func(ctx context.Context) error {
			var inserted, progress uint64
			for key := range keyCh {
				table.Insert(key)
				inserted++

				if p := (inserted - 1) * config.Frames / n; p > progress {
					progress = p
					if err := emit(ctx, StageLoading, inserted); err != nil {
						return err
					}
				}
			}
			return errors.WithStack(ctx.Err())
		})
		return nil
	})
	if err != nil {
		return summary, err
	}

	if err := emit(ctx, StageLoaded, n); err != nil {
		return summary, err
	}

	summary.Stats = table.Stats()
	log.Info("Table loaded", zap.Stringer("stats", summary.Stats))

	resolution, err := table.ResolveOverflow(ctx)
	if err != nil {
		log.Error("Overflow resolution failed", zap.Error(err))
		return summary, err
	}
	summary.Resolution = resolution
	summary.Stats = table.Stats()
	entries := table.Layout()
	summary.Checksum = layout.Checksum(entries)
	summary.MaxFill = lo.Max(layout.Fills(entries, table.Config().PageCount))

	if err := emit(ctx, StageResolved, n); err != nil {
		return summary, err
	}

	log.Info("Simulation finished",
		zap.Stringer("stats", summary.Stats),
		zap.Uint64("maxFill", uint64(summary.MaxFill)),
		zap.Uint64("frames", summary.Frames))

	return summary, nil
}
