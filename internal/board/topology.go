package board

import (
	"fmt"

	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

const topologyRetries = 60

// GenerateTopology lays out a centrally-symmetric pattern of WHITE cells
// satisfying the structural rules: run lengths in [2, 9], one 4-connected
// component, every run preceded by a BLOCK inside the grid.  It retries up
// to 60 times and reports whether a valid topology was produced.  On
// success the sector tables are freshly identified.
func (b *Board) GenerateTopology(params TopologyParams) bool {
	p := params
	b.ApplyTopologyDefaults(&p)

	// Fallbacks for fields the difficulty table leaves unset: every field
	// for difficulties outside the table, Density for every difficulty, and
	// IslandMode from medium up.
	stamps := p.Stamps
	if stamps == nil {
		stamps = [][2]int{{1, 3}, {3, 1}, {2, 2}, {3, 3}}
	}
	numStamps := p.NumStamps
	if numStamps == 0 {
		numStamps = 20
	}
	minCells := p.MinCells
	if minCells == 0 {
		minCells = 12
	}
	maxRunLen := p.MaxRunLen
	if maxRunLen == 0 {
		maxRunLen = 9
	}
	maxPatchSize := p.MaxPatchSize
	if maxPatchSize == 0 {
		maxPatchSize = 5
	}
	islandMode := true
	if p.IslandMode != nil {
		islandMode = *p.IslandMode
	}
	density := p.Density
	if density == 0 {
		density = 0.60
	}
	maxSectorLength := p.MaxSectorLength
	if maxSectorLength == 0 {
		maxSectorLength = 9
	}

	for attempt := 0; attempt < topologyRetries; attempt++ {
		b.Whites = b.Whites[:0]
		b.SectorsH = b.SectorsH[:0]
		b.SectorsV = b.SectorsV[:0]

		b.Log.Step(genlog.StageTopology, genlog.SubStart,
			fmt.Sprintf("Starting topology generation attempt %d with density=%.2f", attempt+1, density),
			b.GridState(nil))

		// All block, all unset.
		for r := 0; r < b.Height; r++ {
			for c := 0; c < b.Width; c++ {
				cell := &b.cells[r][c]
				cell.Type = Block
				cell.Value = EmptyValue
				cell.ClueH = NoClue
				cell.ClueV = NoClue
				cell.SectorH = nil
				cell.SectorV = nil
			}
		}

		var seeded bool
		if islandMode {
			// Central 2x2 seed guarantees a connected core to stamp around.
			b.stampRect(b.Height/2-1, b.Width/2-1, 2, 2)
			seeded = b.generateStamps(stamps, numStamps)
			b.Log.Step(genlog.StageTopology, genlog.SubStampPlacement,
				"Generated stamps (island mode)", b.GridState(nil))
		} else {
			if b.placeRandomSeed() {
				b.Log.Step(genlog.StageTopology, genlog.SubSeedPlacement,
					"Placed random seed", b.GridState(nil))
				b.growLattice(density, maxSectorLength)
				b.Log.Step(genlog.StageTopology, genlog.SubLatticeGrowth,
					"Grew lattice", b.GridState(nil))
				b.CollectWhites()
				seeded = len(b.Whites) > 0
			}
		}
		if !seeded {
			b.Log.Step(genlog.StageTopology, genlog.SubValidationFailed,
				"Initial generation failed", b.GridState(nil))
			continue
		}

		// Stabilization: run the filter passes to a fixed point.
		changed := true
		for iter := 0; changed && iter < 20; iter++ {
			changed = false
			if !islandMode {
				changed = b.BreakLargePatches(maxPatchSize) || changed
				changed = b.StabilizeGrid(false) || changed
			} else {
				changed = b.SliceLongRuns(maxRunLen) || changed
				if p.MaxRunLenSoft > 0 && p.MaxRunLenSoftProb > 0 {
					changed = b.sliceSoftRuns(p.MaxRunLenSoft, p.MaxRunLenSoftProb) || changed
				}
				changed = b.BreakLargePatches(maxPatchSize) || changed
				changed = b.PruneSingles() || changed
				changed = b.BreakSingleRuns() || changed
				changed = b.EnsureConnectivity() || changed
			}
		}

		b.CollectWhites()

		if len(b.Whites) < minCells {
			b.Log.Step(genlog.StageTopology, genlog.SubValidationFailed,
				fmt.Sprintf("Too few white cells: %d < %d", len(b.Whites), minCells),
				b.GridState(nil))
			continue
		}
		if !b.CheckConnectivity() {
			b.Log.Step(genlog.StageTopology, genlog.SubValidationFailed,
				"Connectivity check failed", b.GridState(nil))
			continue
		}
		if !b.ValidateClueHeaders() {
			b.Log.Step(genlog.StageTopology, genlog.SubValidationFailed,
				"Clue header validation failed", b.GridState(nil))
			continue
		}

		b.IdentifySectors()

		if !b.ValidateStructure() {
			b.Log.Step(genlog.StageTopology, genlog.SubValidationFailed,
				"Topology structure validation failed", b.GridState(nil))
			continue
		}

		b.Log.Step(genlog.StageTopology, genlog.SubComplete,
			"Topology generation successful", b.GridState(nil))
		return true
	}

	b.Log.Step(genlog.StageTopology, genlog.SubFailed,
		fmt.Sprintf("Failed to generate topology after %d retries", topologyRetries),
		b.GridState(nil))
	return false
}

// stampRect paints an h x w rectangle of WHITE at (r, c) together with its
// central-symmetric image.
func (b *Board) stampRect(r, c, h, w int) {
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			b.WhiteSymmetric(r+i, c+j)
		}
	}
}

// generateStamps repeatedly anchors a random stamp shape on an existing
// WHITE cell with a random offset.  A stamp is painted only when the whole
// rectangle fits strictly inside the interior; the symmetric image then
// fits by construction.
func (b *Board) generateStamps(shapes [][2]int, iterations int) bool {
	placed, failures := 0, 0
	for placed < iterations && failures < 20 {
		b.CollectWhites()
		if len(b.Whites) == 0 {
			return false
		}

		anchor := b.Whites[b.Rng.Intn(len(b.Whites))]
		shape := shapes[b.Rng.Intn(len(shapes))]
		h, w := shape[0], shape[1]

		topR := anchor.R - b.Rng.Intn(h)
		leftC := anchor.C - b.Rng.Intn(w)

		if topR >= 1 && leftC >= 1 && topR+h < b.Height-1 && leftC+w < b.Width-1 {
			b.stampRect(topR, leftC, h, w)
			placed++
		} else {
			failures++
		}
	}
	b.CollectWhites()
	return len(b.Whites) > 0
}

// placeRandomSeed paints a 5-cell plus shape (and its symmetric image)
// somewhere inside a central margin.
func (b *Board) placeRandomSeed() bool {
	marginX := max(1, b.Width/4)
	marginY := max(1, b.Height/4)

	minR, maxR := marginY, b.Height-1-marginY
	minC, maxC := marginX, b.Width-1-marginX
	if minR >= maxR {
		minR, maxR = 1, b.Height-2
	}
	if minC >= maxC {
		minC, maxC = 1, b.Width-2
	}

	for i := 0; i < 20; i++ {
		r := minR + b.Rng.Intn(maxR-minR+1)
		c := minC + b.Rng.Intn(maxC-minC+1)

		if r-1 > 0 && r+1 < b.Height-1 && c-1 > 0 && c+1 < b.Width-1 {
			for _, p := range [5][2]int{{r, c}, {r, c - 1}, {r, c + 1}, {r - 1, c}, {r + 1, c}} {
				b.WhiteSymmetric(p[0], p[1])
			}
			b.CollectWhites()
			return true
		}
	}
	return false
}

// growLattice extends the white set from random anchors until the target
// density is reached or 2000 consecutive placements fail.  Growth prefers
// the orientation in which the anchor already has a white neighbor.
func (b *Board) growLattice(density float64, maxSectorLength int) {
	target := int(float64((b.Width-2)*(b.Height-2)) * density)

	attempts := 0
	const maxAttempts = 2000

	for len(b.Whites) < target && attempts < maxAttempts {
		if len(b.Whites) == 0 {
			break
		}

		source := b.Whites[b.Rng.Intn(len(b.Whites))]
		r, c := source.R, source.C

		hasH := b.isWhite(r, c-1) || b.isWhite(r, c+1)
		hasV := b.isWhite(r-1, c) || b.isWhite(r+1, c)

		var growVert bool
		switch {
		case hasH && hasV:
			growVert = b.Rng.Intn(2) == 0
		case hasH:
			growVert = false
		case hasV:
			growVert = true
		default:
			growVert = b.Rng.Intn(2) == 0
		}

		runLen := 2 + b.Rng.Intn(maxSectorLength-1)
		shifts := b.Rng.Perm(runLen)

		placed := false
		for _, shift := range shifts {
			coords := make([][2]int, 0, runLen)
			possible := true
			for k := 0; k < runLen; k++ {
				idx := k - shift
				nr, nc := r, c+idx
				if growVert {
					nr, nc = r+idx, c
				}
				if nr < 1 || nr >= b.Height-1 || nc < 1 || nc >= b.Width-1 {
					possible = false
					break
				}
				coords = append(coords, [2]int{nr, nc})
			}
			if !possible {
				continue
			}
			addedNew := false
			for _, p := range coords {
				if b.cells[p[0]][p[1]].Type == Block {
					b.WhiteSymmetric(p[0], p[1])
					addedNew = true
				}
			}
			if addedNew {
				placed = true
				break
			}
		}

		if placed {
			b.CollectWhites()
			attempts = 0
		} else {
			attempts++
		}
	}
}

func (b *Board) isWhite(r, c int) bool {
	cell := b.Get(r, c)
	return cell != nil && cell.Type == White
}
