package board

import (
	"fmt"

	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

// SliceLongRuns splits every run longer than maxLen by blocking its middle
// cell and the symmetric partner.  Reports whether anything changed.
func (b *Board) SliceLongRuns(maxLen int) bool {
	changed := false

	for r := 1; r < b.Height-1; r++ {
		length, runStart := 0, -1
		for c := 1; c <= b.Width-1; c++ {
			if c < b.Width && b.cells[r][c].Type == White {
				if runStart == -1 {
					runStart = c
				}
				length++
				continue
			}
			if length > maxLen {
				b.applySlice(r, runStart, length, true)
				changed = true
			}
			length, runStart = 0, -1
		}
		if length > maxLen {
			b.applySlice(r, runStart, length, true)
			changed = true
		}
	}

	for c := 1; c < b.Width-1; c++ {
		length, runStart := 0, -1
		for r := 1; r <= b.Height-1; r++ {
			if r < b.Height && b.cells[r][c].Type == White {
				if runStart == -1 {
					runStart = r
				}
				length++
				continue
			}
			if length > maxLen {
				b.applySlice(c, runStart, length, false)
				changed = true
			}
			length, runStart = 0, -1
		}
		if length > maxLen {
			b.applySlice(c, runStart, length, false)
			changed = true
		}
	}

	if changed {
		b.Log.Step(genlog.StageTopology, genlog.SubSliceRuns,
			"Sliced long runs", b.GridState(nil))
	}
	return changed
}

// sliceSoftRuns additionally splits runs longer than softLen with the
// given probability per run, roughening the layout for easy difficulties.
func (b *Board) sliceSoftRuns(softLen int, prob float64) bool {
	changed := false

	for r := 1; r < b.Height-1; r++ {
		length, runStart := 0, -1
		for c := 1; c <= b.Width-1; c++ {
			if c < b.Width && b.cells[r][c].Type == White {
				if runStart == -1 {
					runStart = c
				}
				length++
				continue
			}
			if length > softLen && b.Rng.Float64() < prob {
				b.applySlice(r, runStart, length, true)
				changed = true
			}
			length, runStart = 0, -1
		}
		if length > softLen && b.Rng.Float64() < prob {
			b.applySlice(r, runStart, length, true)
			changed = true
		}
	}

	for c := 1; c < b.Width-1; c++ {
		length, runStart := 0, -1
		for r := 1; r <= b.Height-1; r++ {
			if r < b.Height && b.cells[r][c].Type == White {
				if runStart == -1 {
					runStart = r
				}
				length++
				continue
			}
			if length > softLen && b.Rng.Float64() < prob {
				b.applySlice(c, runStart, length, false)
				changed = true
			}
			length, runStart = 0, -1
		}
		if length > softLen && b.Rng.Float64() < prob {
			b.applySlice(c, runStart, length, false)
			changed = true
		}
	}

	if changed {
		b.Log.Step(genlog.StageTopology, genlog.SubSliceRuns,
			fmt.Sprintf("Sliced soft runs (len > %d)", softLen), b.GridState(nil))
	}
	return changed
}

func (b *Board) applySlice(fixedIdx, start, length int, horizontal bool) {
	mid := start + length/2
	r, c := fixedIdx, mid
	if !horizontal {
		r, c = mid, fixedIdx
	}
	b.BlockSymmetric(r, c)
}

// BreakLargePatches blocks one cell out of every solid size x size square
// of WHITE cells.  Target preference: cells whose blocking does not leave a
// one-cell corridor against the interior border, then cells already
// touching a BLOCK, then any patch cell.
func (b *Board) BreakLargePatches(size int) bool {
	changedOverall := false

	for iteration := 0; iteration < 50; iteration++ {
		found := false

		for r := 1; r <= b.Height-size && !found; r++ {
			for c := 1; c <= b.Width-size && !found; c++ {
				patch := make([]*Cell, 0, size*size)
				isPatch := true
				for ir := 0; ir < size && isPatch; ir++ {
					for ic := 0; ic < size && isPatch; ic++ {
						if r+ir >= b.Height || c+ic >= b.Width {
							isPatch = false
							continue
						}
						cell := &b.cells[r+ir][c+ic]
						patch = append(patch, cell)
						if cell.Type != White {
							isPatch = false
						}
					}
				}
				if !isPatch || len(patch) == 0 {
					continue
				}
				found = true

				var safe, priority []*Cell
				for _, cell := range patch {
					if !b.createsEdgeGap(cell.R, cell.C) && !b.createsEdgeGap(b.Height-1-cell.R, b.Width-1-cell.C) {
						safe = append(safe, cell)
					}
				}

				source := safe
				if len(source) == 0 {
					source = patch
				}
				for _, cell := range source {
					for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
						nb := b.Get(cell.R+d[0], cell.C+d[1])
						if nb != nil && nb.Type == Block {
							priority = append(priority, cell)
							break
						}
					}
				}

				var target *Cell
				switch {
				case len(priority) > 0:
					target = priority[b.Rng.Intn(len(priority))]
				case len(safe) > 0:
					target = safe[b.Rng.Intn(len(safe))]
				default:
					target = patch[len(patch)/2]
				}

				b.BlockSymmetric(target.R, target.C)
				changedOverall = true
			}
		}

		if !found {
			break
		}
	}

	if changedOverall {
		b.Log.Step(genlog.StageTopology, genlog.SubBreakPatches,
			"Broke large patches", b.GridState(nil))
	}
	return changedOverall
}

// createsEdgeGap reports whether blocking (r, c) would strand a one-cell
// corridor between the new block and the interior border.
func (b *Board) createsEdgeGap(r, c int) bool {
	if r == 2 && b.cells[1][c].Type == White {
		return true
	}
	if c == 2 && b.cells[r][1].Type == White {
		return true
	}
	if r == b.Height-3 && b.cells[b.Height-2][c].Type == White {
		return true
	}
	if c == b.Width-3 && b.cells[r][b.Width-2].Type == White {
		return true
	}
	return false
}

// findComponents groups the WHITE cells into 4-connected components.
func (b *Board) findComponents() [][][2]int {
	b.CollectWhites()
	var components [][][2]int
	visited := make(map[[2]int]bool, len(b.Whites))

	for _, start := range b.Whites {
		if visited[[2]int{start.R, start.C}] {
			continue
		}
		var comp [][2]int
		queue := []*Cell{start}
		visited[[2]int{start.R, start.C}] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, [2]int{cur.R, cur.C})
			for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
				nb := b.Get(cur.R+d[0], cur.C+d[1])
				if nb != nil && nb.Type == White && !visited[[2]int{nb.R, nb.C}] {
					visited[[2]int{nb.R, nb.C}] = true
					queue = append(queue, nb)
				}
			}
		}
		components = append(components, comp)
	}
	return components
}

// TryRemoveAndReconnect blocks (r, c) and its symmetric partner.  If the
// white set falls apart and allowBridge is set, it searches for a BLOCK
// interior cell touching two or more components and promotes it
// (symmetrically) as a bridge.  Without a bridge the removal is reverted
// and false returned.  The sector tables are re-identified either way the
// grid changed.
func (b *Board) TryRemoveAndReconnect(r, c int, allowBridge bool) bool {
	target := b.Get(r, c)
	if target == nil || target.Type != White {
		return false
	}

	b.ResetValues()

	backup := make([][]CellType, b.Height)
	for i := range backup {
		backup[i] = make([]CellType, b.Width)
		for j := range backup[i] {
			backup[i][j] = b.cells[i][j].Type
		}
	}

	symR, symC := b.Height-1-r, b.Width-1-c
	b.BlockSymmetric(r, c)

	components := b.findComponents()
	if len(components) <= 1 {
		b.Log.Step(genlog.StageTopology, genlog.SubPruneSingles,
			"Removed single cells without disconnecting", b.GridState(nil))
		b.CollectWhites()
		b.IdentifySectors()
		return true
	}

	if !allowBridge {
		for i := range backup {
			for j := range backup[i] {
				b.cells[i][j].Type = backup[i][j]
			}
		}
		b.CollectWhites()
		b.IdentifySectors()
		return false
	}

	// Disconnected: look for a bridge block adjacent to >= 2 components.
	compIndex := make(map[[2]int]int)
	for idx, comp := range components {
		for _, p := range comp {
			compIndex[p] = idx
		}
	}

	var bridges [][2]int
	for i := 1; i < b.Height-1; i++ {
		for j := 1; j < b.Width-1; j++ {
			if b.cells[i][j].Type != Block {
				continue
			}
			if (i == r && j == c) || (i == symR && j == symC) {
				continue
			}
			touching := make(map[int]bool)
			for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
				if idx, ok := compIndex[[2]int{i + d[0], j + d[1]}]; ok {
					touching[idx] = true
				}
			}
			if len(touching) >= 2 {
				bridges = append(bridges, [2]int{i, j})
			}
		}
	}

	if len(bridges) > 0 {
		bridge := bridges[b.Rng.Intn(len(bridges))]
		b.WhiteSymmetric(bridge[0], bridge[1])

		if b.CheckConnectivity() {
			b.Log.Step(genlog.StageTopology, genlog.SubPruneSingles,
				"Removed single cells with fixing disconnection", b.GridState(nil))
		}
		b.CollectWhites()
		b.IdentifySectors()
		return true
	}

	for i := range backup {
		for j := range backup[i] {
			b.cells[i][j].Type = backup[i][j]
		}
	}
	b.CollectWhites()
	b.IdentifySectors()
	return false
}

// PruneSingles removes WHITE cells lacking a horizontal or vertical white
// neighbor, bridging around any disconnection the removal causes.
func (b *Board) PruneSingles() bool {
	anyChange := false
	changed := true

	for limit := 10; changed && limit > 0; limit-- {
		changed = false
		b.CollectWhites()

		for _, c := range b.Whites {
			hNbs := 0
			if b.isWhite(c.R, c.C-1) {
				hNbs++
			}
			if b.isWhite(c.R, c.C+1) {
				hNbs++
			}
			vNbs := 0
			if b.isWhite(c.R-1, c.C) {
				vNbs++
			}
			if b.isWhite(c.R+1, c.C) {
				vNbs++
			}

			if hNbs == 0 || vNbs == 0 {
				if b.TryRemoveAndReconnect(c.R, c.C, true) {
					changed = true
					anyChange = true
					b.CollectWhites()
					break
				}
			}
		}
	}
	return anyChange
}

// BreakSingleRuns blocks every WHITE cell whose horizontal or vertical run
// length is 1; such a cell cannot belong to a valid sector.
func (b *Board) BreakSingleRuns() bool {
	anyChange := false
	changed := true

	for changed {
		changed = false
		for r := 1; r < b.Height-1; r++ {
			for c := 1; c < b.Width-1; c++ {
				if b.cells[r][c].Type != White {
					continue
				}

				hLen := 1
				for cc := c - 1; cc >= 0 && b.cells[r][cc].Type == White; cc-- {
					hLen++
				}
				for cc := c + 1; cc < b.Width && b.cells[r][cc].Type == White; cc++ {
					hLen++
				}

				vLen := 1
				for rr := r - 1; rr >= 0 && b.cells[rr][c].Type == White; rr-- {
					vLen++
				}
				for rr := r + 1; rr < b.Height && b.cells[rr][c].Type == White; rr++ {
					vLen++
				}

				if hLen == 1 || vLen == 1 {
					b.BlockSymmetric(r, c)
					changed = true
					anyChange = true
				}
			}
		}
	}

	if anyChange {
		b.CollectWhites()
		b.IdentifySectors()
		b.Log.Step(genlog.StageTopology, genlog.SubBreakSingleRuns,
			"Broke single-cell runs", b.GridState(nil))
	}
	return anyChange
}

// EnsureConnectivity keeps the largest white component and blocks the rest
// together with their symmetric partners.
func (b *Board) EnsureConnectivity() bool {
	components := b.findComponents()
	if len(components) == 0 {
		return false
	}

	largest := 0
	for i, comp := range components {
		if len(comp) > len(components[largest]) {
			largest = i
		}
	}

	removed := 0
	for i, comp := range components {
		if i == largest {
			continue
		}
		for _, p := range comp {
			b.BlockSymmetric(p[0], p[1])
			removed++
		}
	}

	if removed > 0 {
		b.Log.Step(genlog.StageTopology, genlog.SubConnectivity,
			fmt.Sprintf("Removed disconnected components (%d cells)", removed),
			b.GridState(nil))
	}
	return removed > 0
}

// StabilizeGrid runs the repair passes to a fixed point after a topology
// mutation.  The gentle variant additionally blocks fully isolated cells
// before the regular run fixes; it spares no cell that the regular variant
// removes, since both variants block every length-1 run and split every
// run longer than 9.
func (b *Board) StabilizeGrid(gentle bool) bool {
	anyChange := false
	changed := true
	iterations := 0

	for changed && iterations < 15 {
		changed = false
		if gentle {
			changed = b.fixInvalidRunsGentle() || changed
		} else {
			changed = b.fixInvalidRuns() || changed
		}
		changed = b.PruneSingles() || changed
		changed = b.BreakSingleRuns() || changed
		changed = b.EnsureConnectivity() || changed
		anyChange = anyChange || changed
		iterations++
	}

	b.Log.Step(genlog.StageTopology, genlog.SubStabilizeGrid,
		fmt.Sprintf("Grid stabilized after %d iterations", iterations),
		b.GridState(nil))
	b.CollectWhites()
	b.IdentifySectors()
	return anyChange
}

// fixInvalidRuns removes length-1 runs and splits runs longer than 9.
func (b *Board) fixInvalidRuns() bool {
	changed := false

	for r := 0; r < b.Height; r++ {
		c := 0
		for c < b.Width {
			if b.cells[r][c].Type != White {
				c++
				continue
			}
			start := c
			length := 0
			for c < b.Width && b.cells[r][c].Type == White {
				length++
				c++
			}
			if length == 1 {
				b.BlockSymmetric(r, start)
				changed = true
			} else if length > 9 {
				b.BlockSymmetric(r, start+length/2)
				changed = true
			}
		}
	}

	for c := 0; c < b.Width; c++ {
		r := 0
		for r < b.Height {
			if b.cells[r][c].Type != White {
				r++
				continue
			}
			start := r
			length := 0
			for r < b.Height && b.cells[r][c].Type == White {
				length++
				r++
			}
			if length == 1 {
				b.BlockSymmetric(start, c)
				changed = true
			} else if length > 9 {
				b.BlockSymmetric(start+length/2, c)
				changed = true
			}
		}
	}

	if changed {
		b.Log.Step(genlog.StageTopology, genlog.SubFixInvalidRuns,
			"Fixed invalid runs (too short/long)", b.GridState(nil))
	}
	return changed
}

func (b *Board) fixInvalidRunsGentle() bool {
	changed := false
	for r := 0; r < b.Height; r++ {
		for c := 0; c < b.Width; c++ {
			if b.cells[r][c].Type != White {
				continue
			}
			hNb := b.isWhite(r, c-1) || b.isWhite(r, c+1)
			vNb := b.isWhite(r-1, c) || b.isWhite(r+1, c)
			if !hNb && !vNb {
				b.BlockSymmetric(r, c)
				changed = true
			}
		}
	}
	// The regular fixes (length-1 runs, runs longer than 9) apply in
	// gentle mode too.
	changed = b.fixInvalidRuns() || changed
	return changed
}
