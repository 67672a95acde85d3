package solver

import (
	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/partition"
)

// findUniqueIntersections intersects each cell's candidates with the union
// partition masks of its row and column clues.  Tier 1.
func (e *Estimator) findUniqueIntersections(state candidateMap, silent bool) bool {
	changed := false
	affected := 0

	for _, cell := range e.b.Whites {
		if partition.MaskSize(state[cell]) <= 1 {
			continue
		}
		combined := partition.AllDigits
		if h, ok := e.cellH[cell]; ok {
			combined &= partition.Mask(h.clue, h.length)
		}
		if v, ok := e.cellV[cell]; ok {
			combined &= partition.Mask(v.clue, v.length)
		}
		next := state[cell] & combined
		if next != state[cell] {
			state[cell] = next
			changed = true
			if partition.MaskSize(next) == 1 {
				affected++
			}
		}
	}

	if affected > 0 && !silent {
		e.logTechnique(state, TechUniqueIntersection, affected)
	}
	return changed
}

// findNakedSingles reports cells whose mask collapsed to one digit.  Each
// cell is reported once across the whole run.  Tier 1.
func (e *Estimator) findNakedSingles(state candidateMap, silent bool, iteration int) bool {
	if !silent && iteration == 1 {
		e.loggedSingles = make(map[*board.Cell]bool)
	}

	newlySolved := 0
	for _, c := range e.b.Whites {
		if partition.MaskSize(state[c]) == 1 && !e.loggedSingles[c] {
			if !silent {
				e.loggedSingles[c] = true
			}
			newlySolved++
		}
	}
	if newlySolved > 0 && !silent {
		e.logTechnique(state, TechEliminationSingles, newlySolved)
		return true
	}
	return false
}

// applySectorConstraints runs the three per-sector substeps: the partition
// union filter, reachability pruning against the clue, and clearing solved
// digits from sibling cells.
func (e *Estimator) applySectorConstraints(sec *sectorInfo, state candidateMap) bool {
	if e.aborted {
		return false
	}

	changed := false
	n := len(sec.cells)

	allowed := partition.Mask(sec.clue, n)
	for _, c := range sec.cells {
		old := state[c]
		state[c] &= allowed
		if state[c] != old {
			changed = true
		}
	}

	if n > 1 {
		mins := make([]int, n)
		maxs := make([]int, n)
		totalMin, totalMax := 0, 0
		for i, c := range sec.cells {
			mi, ma := 10, 0
			mask := state[c]
			for v := 1; v <= 9; v++ {
				if mask&(1<<v) != 0 {
					if v < mi {
						mi = v
					}
					if v > ma {
						ma = v
					}
				}
			}
			mins[i], maxs[i] = mi, ma
			totalMin += mi
			totalMax += ma
		}

		for i, c := range sec.cells {
			mask := state[c]
			next := mask
			othersMin := totalMin - mins[i]
			othersMax := totalMax - maxs[i]
			for v := 1; v <= 9; v++ {
				if mask&(1<<v) == 0 {
					continue
				}
				if v+othersMin > sec.clue || v+othersMax < sec.clue {
					next &^= 1 << v
				}
			}
			if next != mask {
				state[c] = next
				changed = true
			}
		}
	}

	var solvedMask uint16
	for _, c := range sec.cells {
		if partition.MaskSize(state[c]) == 1 {
			solvedMask |= state[c]
		}
	}
	for _, c := range sec.cells {
		if partition.MaskSize(state[c]) > 1 {
			old := state[c]
			state[c] &^= solvedMask
			if state[c] != old {
				changed = true
			}
		}
	}

	return changed
}

// applyConstraintPropagation sweeps the sector constraints over every
// sector.  Tier 3.
func (e *Estimator) applyConstraintPropagation(state candidateMap, silent bool) bool {
	changed := false
	affected := 0
	for si := range e.sectors {
		if e.applySectorConstraints(&e.sectors[si], state) {
			changed = true
			affected += len(e.sectors[si].cells)
		}
	}
	if changed && !silent {
		e.logTechnique(state, TechConstraintPropagation, affected)
	}
	return changed
}

// applySimplePartitions restricts sectors with exactly one valid partition
// to that partition's digits.  Tier 2.
func (e *Estimator) applySimplePartitions(state candidateMap, silent bool) bool {
	changed := false
	affected := 0
	for _, sec := range e.sectors {
		parts := partition.Partitions(sec.clue, len(sec.cells))
		if len(parts) != 1 {
			continue
		}
		var m uint16
		for _, v := range parts[0] {
			m |= 1 << v
		}
		for _, c := range sec.cells {
			old := state[c]
			state[c] &= m
			if state[c] != old {
				changed = true
				affected++
			}
		}
	}
	if affected > 0 && !silent {
		e.logTechnique(state, TechSimplePartition, affected)
	}
	return changed
}

// findHiddenSingles assigns a digit that fits only one cell of a sector.
// Tier 3.
func (e *Estimator) findHiddenSingles(state candidateMap, silent bool) bool {
	affected := 0
	for _, sec := range e.sectors {
		for v := 1; v <= 9; v++ {
			var target *board.Cell
			count := 0
			for _, c := range sec.cells {
				if state[c]&(1<<v) != 0 {
					count++
					target = c
				}
			}
			if count == 1 && partition.MaskSize(state[target]) > 1 {
				state[target] = 1 << v
				affected++
			}
		}
	}
	if affected > 0 {
		if !silent {
			e.logTechnique(state, TechHiddenSingles, affected)
		}
		return true
	}
	return false
}

// analyzeComplexIntersections keeps only digits that appear in at least
// one partition of every sector the cell belongs to.  Tier 4.
func (e *Estimator) analyzeComplexIntersections(state candidateMap, silent bool) bool {
	changed := false
	for _, cell := range e.b.Whites {
		if partition.MaskSize(state[cell]) <= 1 {
			continue
		}
		mask := state[cell]
		var valid uint16
		for v := 1; v <= 9; v++ {
			if mask&(1<<v) == 0 {
				continue
			}
			ok := true
			for _, sec := range e.sectors {
				in := false
				for _, sc := range sec.cells {
					if sc == cell {
						in = true
						break
					}
				}
				if !in {
					continue
				}
				pOK := false
				for _, p := range partition.Partitions(sec.clue, len(sec.cells)) {
					for _, d := range p {
						if d == v {
							pOK = true
							break
						}
					}
					if pOK {
						break
					}
				}
				if !pOK {
					ok = false
					break
				}
			}
			if ok {
				valid |= 1 << v
			}
		}
		if valid != 0 && valid != mask {
			state[cell] = valid
			changed = true
		}
	}
	if changed && !silent {
		e.logTechnique(state, TechComplexIntersection, 1)
	}
	return changed
}
