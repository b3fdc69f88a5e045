package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/outofforest/logger"
	"github.com/outofforest/phdb"
	"github.com/outofforest/phdb/placement"
	"github.com/outofforest/phdb/sim"
	"github.com/outofforest/phdb/types"
)

type options struct {
	ItemSize uint64
	Memory   string
	Ratio    float64
	Seed     int64
	Frames   uint64
	Hash     string
	JSON     bool
	Quiet    bool
}

func newRootCmd() *cobra.Command {
	opts := options{
		ItemSize: sim.DefaultConfig.ItemSize,
		Memory:   humanize.IBytes(sim.DefaultConfig.MemorySize),
		Ratio:    sim.DefaultConfig.Ratio,
		Seed:     sim.DefaultConfig.Seed,
		Frames:   sim.DefaultConfig.Frames,
		Hash:     sim.DefaultConfig.Hash.String(),
	}

	cmd := &cobra.Command{
		Use:   "phdbsim",
		Short: "Simulate the page layout of paged hash table",
		Long: `phdbsim fills a paged hash table with pseudo-random keys, relocates subpages
of overflowing pages into spare capacity of other pages and reports the layout.

Example:
  phdbsim
  phdbsim --item-size 32 --memory 4MiB --ratio 0.85
  phdbsim --seed 7 --hash murmur3 --json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().Uint64Var(&opts.ItemSize, "item-size", opts.ItemSize, "Size of the item in bytes")
	cmd.Flags().StringVar(&opts.Memory, "memory", opts.Memory, "Size of the table, e.g. 1MiB")
	cmd.Flags().Float64Var(&opts.Ratio, "ratio", opts.Ratio, "Ratio of item bytes to table bytes")
	cmd.Flags().Int64Var(&opts.Seed, "seed", opts.Seed, "Seed of the key generator")
	cmd.Flags().Uint64Var(&opts.Frames, "frames", opts.Frames, "Number of frames reported while loading")
	cmd.Flags().StringVar(&opts.Hash, "hash", opts.Hash, "Hash function deriving keys: xxhash or murmur3")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output final stats and layout in JSON format")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress frame output")

	return cmd
}

func execute() {
	ctx := logger.WithLogger(context.Background(), logger.New(logger.DefaultConfig))
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type report struct {
	RunID       string             `json:"runID"`
	Hash        string             `json:"hash"`
	Checksum    string             `json:"checksum"`
	MaxFill     types.Units        `json:"maxFill"`
	Stats       phdb.Stats         `json:"stats"`
	Relocations []types.Relocation `json:"relocations"`
	Layout      []types.Entry      `json:"layout"`
}

func run(ctx context.Context, out io.Writer, opts options) error {
	memory, err := humanize.ParseBytes(opts.Memory)
	if err != nil {
		return errors.Wrapf(err, "invalid memory size %q", opts.Memory)
	}
	hash, err := placement.ParseAlgorithm(opts.Hash)
	if err != nil {
		return err
	}

	config := sim.Config{
		ItemSize:   opts.ItemSize,
		MemorySize: memory,
		Ratio:      opts.Ratio,
		Seed:       opts.Seed,
		Frames:     opts.Frames,
		Hash:       hash,
	}

	var final sim.Frame
	sink := sim.SinkFunc(func(ctx context.Context, frame sim.Frame) error {
		final = frame
		if opts.Quiet || opts.JSON {
			return nil
		}
		_, err := fmt.Fprintf(out, "[%03d %-8s] %s\n", frame.Index, frame.Stage, frame.Stats)
		return errors.WithStack(err)
	})

	summary, err := sim.Run(ctx, config, sink)
	if err != nil {
		return err
	}

	if !opts.JSON {
		if opts.Quiet {
			return nil
		}
		p := message.NewPrinter(language.English)
		_, err := p.Fprintf(out, "moved %d of %d items (%.2f%%), max page fill %d of %d units, run %s\n",
			summary.Stats.MovedItemCount, summary.Stats.TotalItems, 100*summary.Stats.MovedRatio(),
			summary.MaxFill, summary.Stats.UnitsPerPage, summary.RunID)
		return errors.WithStack(err)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return errors.WithStack(encoder.Encode(report{
		RunID:       summary.RunID.String(),
		Hash:        hash.String(),
		Checksum:    fmt.Sprintf("%x", summary.Checksum),
		MaxFill:     summary.MaxFill,
		Stats:       summary.Stats,
		Relocations: summary.Resolution.Relocations,
		Layout:      final.Layout,
	}))
}
