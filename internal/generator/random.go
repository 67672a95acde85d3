package generator

import (
	"errors"
	"math/rand"
	"time"
)

// allStampShapes is the pool the randomized options draw a stamp subset
// from.
var allStampShapes = [][2]int{
	{1, 3}, {3, 1}, {2, 2}, {1, 4}, {4, 1}, {2, 3}, {3, 2},
	{1, 5}, {5, 1}, {2, 4}, {4, 2}, {3, 3}, {1, 6}, {6, 1},
	{2, 5}, {5, 2}, {3, 4}, {1, 7}, {7, 1}, {1, 8}, {8, 1},
}

// RandomizedOptions draws a fully randomized parameter set: board size,
// density, stamp subset, minimum cell ratio, and partition preference.
// Used by hosts that want varied puzzles rather than a fixed difficulty.
func RandomizedOptions(rng *rand.Rand) *Options {
	w := 8 + rng.Intn(11)
	h := 8 + rng.Intn(9)
	area := (w - 2) * (h - 2)

	opts := DefaultOptions("")
	opts.Width = w
	opts.Height = h
	opts.Seed = rng.Int63()

	opts.Topology.Density = 0.55 + 0.13*rng.Float64()
	opts.Topology.NumStamps = (8 + rng.Intn(13)) * area / 100
	opts.Topology.MaxSectorLength = 9
	island := true
	opts.Topology.IslandMode = &island
	opts.Topology.MinCells = int(float64(area) * (0.18 + 0.17*rng.Float64()))
	opts.Topology.MaxRunLen = 6 + rng.Intn(4)
	opts.Topology.MaxPatchSize = 2 + rng.Intn(3)

	shapes := make([][2]int, len(allStampShapes))
	copy(shapes, allStampShapes)
	rng.Shuffle(len(shapes), func(i, j int) { shapes[i], shapes[j] = shapes[j], shapes[i] })
	n := 5 + rng.Intn(8)
	opts.Topology.Stamps = shapes[:min(n, len(shapes))]

	switch rng.Intn(3) {
	case 0:
		opts.Fill.SetPartitionPreference("")
	case 1:
		opts.Fill.SetPartitionPreference("few")
	default:
		opts.Fill.SetPartitionPreference("unique")
	}

	return opts
}

// GenerateRandom produces one puzzle from randomized options, retrying up
// to five times with raised density and stamp count when an attempt fails.
func GenerateRandom(rng *rand.Rand, timeout time.Duration) (*Puzzle, error) {
	opts := RandomizedOptions(rng)
	if timeout > 0 {
		opts.Timeout = timeout
	}

	var lastErr error
	for retry := 0; retry < 5; retry++ {
		gen := New(opts)
		puzzle, err := gen.Generate()
		if err == nil {
			return puzzle, nil
		}
		if errors.Is(err, ErrGenerationTimeout) {
			return nil, err
		}
		lastErr = err
		opts.Topology.Density = min(0.75, opts.Topology.Density+0.05)
		opts.Topology.NumStamps = opts.Topology.NumStamps * 6 / 5
		opts.Seed = rng.Int63()
	}
	return nil, lastErr
}
