package solver

import (
	"fmt"
	"time"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/genlog"
	"github.com/Znerual/KakuroGenerator/internal/partition"
)

// Estimator budget defaults.
const (
	estimatorMaxNodes  = 50_000_000
	estimatorTimeLimit = 5 * time.Second
)

type sectorInfo struct {
	cells []*board.Cell
	clue  int
}

type sectorMeta struct {
	clue   int
	length int
}

type candidateMap map[*board.Cell]uint16

// Estimator rates a clued board by replaying a fixed ladder of logical
// techniques over bitmask candidate sets, then counting solutions with a
// bounded search.  Construct a fresh Estimator per board state.
type Estimator struct {
	b *board.Board

	sectors []sectorInfo
	cellH   map[*board.Cell]sectorMeta
	cellV   map[*board.Cell]sectorMeta

	solveLog      []SolveStep
	found         []map[*board.Cell]int
	loggedSingles map[*board.Cell]bool

	nodes   int64
	start   time.Time
	aborted bool
}

// NewEstimator indexes the board's sectors and clues.  Sectors whose clue
// block carries no clue are skipped; they cannot constrain anything.
func NewEstimator(b *board.Board) *Estimator {
	e := &Estimator{
		b:             b,
		cellH:         make(map[*board.Cell]sectorMeta),
		cellV:         make(map[*board.Cell]sectorMeta),
		loggedSingles: make(map[*board.Cell]bool),
	}
	for _, sec := range b.SectorsH {
		clue := b.SectorClue(sec)
		if clue == board.NoClue {
			continue
		}
		e.sectors = append(e.sectors, sectorInfo{sec.Cells, clue})
		for _, c := range sec.Cells {
			e.cellH[c] = sectorMeta{clue, len(sec.Cells)}
		}
	}
	for _, sec := range b.SectorsV {
		clue := b.SectorClue(sec)
		if clue == board.NoClue {
			continue
		}
		e.sectors = append(e.sectors, sectorInfo{sec.Cells, clue})
		for _, c := range sec.Cells {
			e.cellV[c] = sectorMeta{clue, len(sec.Cells)}
		}
	}
	return e
}

// Estimate runs the technique ladder and the solution count and folds both
// into the difficulty record.
func (e *Estimator) Estimate() Result {
	e.solveLog = e.solveLog[:0]
	e.found = e.found[:0]
	e.loggedSingles = make(map[*board.Cell]bool)
	e.nodes = 0
	e.aborted = false
	e.start = time.Now()

	if len(e.b.Whites) == 0 || len(e.sectors) == 0 {
		return Result{Rating: TierVeryEasy.Rating(), MaxTier: TierVeryEasy, SolvePath: []SolveStep{}, Uniqueness: "No Solution"}
	}

	state := make(candidateMap, len(e.b.Whites))
	for _, c := range e.b.Whites {
		state[c] = partition.AllDigits
	}

	e.b.Log.Step(genlog.StageDifficulty, genlog.SubStart,
		"Starting detailed difficulty analysis", e.b.GridState(nil))

	e.runSolveLoop(state, false)

	// Solution counting searches from the full masks, independent of what
	// the ladder concluded.
	searchStart := make(candidateMap, len(e.b.Whites))
	for _, c := range e.b.Whites {
		searchStart[c] = partition.AllDigits
	}
	e.discoverSolutions(searchStart, 3)

	res := Result{
		MaxTier:   TierVeryEasy,
		SolvePath: e.solveLog,
	}
	for _, step := range e.solveLog {
		info := techniques[step.Technique]
		if info.tier > res.MaxTier {
			res.MaxTier = info.tier
		}
		res.Score += info.effort * float64(step.CellsAffected)
	}
	res.Rating = res.MaxTier.Rating()
	res.TotalSteps = len(e.solveLog)
	res.SolutionCount = len(e.found)
	switch {
	case res.SolutionCount == 1:
		res.Uniqueness = "Unique"
	case res.SolutionCount > 1:
		res.Uniqueness = "Multiple"
	default:
		res.Uniqueness = "No Solution"
	}
	if e.aborted {
		res.Rating = "Extreme / Unsolvable"
		res.Uniqueness = "Inconclusive (Timeout)"
	}

	for _, sol := range e.found {
		res.Solutions = append(res.Solutions, e.renderSolution(sol))
	}

	e.b.Log.StepData(genlog.StageDifficulty, genlog.SubComplete,
		fmt.Sprintf("Difficulty estimation complete: %s", res.Rating),
		e.b.GridState(nil),
		map[string]any{
			"rating":         res.Rating,
			"score":          res.Score,
			"max_tier":       int(res.MaxTier),
			"solution_count": res.SolutionCount,
			"uniqueness":     res.Uniqueness,
		})
	return res
}

// limitExceeded enforces the node and wall-clock budgets.  The clock is
// only consulted every 500 nodes.
func (e *Estimator) limitExceeded() bool {
	if e.aborted {
		return true
	}
	e.nodes++
	if e.nodes > estimatorMaxNodes {
		e.aborted = true
		return true
	}
	if e.nodes%500 == 0 && time.Since(e.start) > estimatorTimeLimit {
		e.aborted = true
		return true
	}
	return false
}

// runSolveLoop applies logic passes until saturation, then one level of
// bifurcation if cells remain unsolved.  Silent runs (bifurcation
// children) log nothing.
func (e *Estimator) runSolveLoop(state candidateMap, silent bool) {
	changed := true
	for iteration := 1; changed && iteration <= 100; iteration++ {
		if e.limitExceeded() {
			return
		}
		changed = e.applyLogicPass(state, silent, iteration)
	}

	solved := true
	for _, c := range e.b.Whites {
		if partition.MaskSize(state[c]) > 1 {
			solved = false
			break
		}
	}
	if !solved && !silent && !e.limitExceeded() {
		e.logStep(TechTrialAndError, 0)
		e.tryBifurcation(state)
	}
}

// applyLogicPass runs one sweep of the technique ladder, restarting from
// the top on the first technique that changes anything.
func (e *Estimator) applyLogicPass(state candidateMap, silent bool, iteration int) bool {
	if e.findUniqueIntersections(state, silent) {
		return true
	}
	if e.findNakedSingles(state, silent, iteration) {
		return true
	}
	if e.applyConstraintPropagation(state, silent) {
		return true
	}
	if e.applySimplePartitions(state, silent) {
		return true
	}
	if e.findHiddenSingles(state, silent) {
		return true
	}
	if iteration > 2 && e.analyzeComplexIntersections(state, silent) {
		return true
	}
	return false
}

// logStep records one solve-path entry with its display weight.
func (e *Estimator) logStep(technique string, affected int) {
	e.solveLog = append(e.solveLog, SolveStep{
		Technique:     technique,
		Weight:        techniques[technique].step,
		CellsAffected: affected,
	})
}

// logTechnique records a step plus a visualization event carrying the
// currently solved cells.
func (e *Estimator) logTechnique(state candidateMap, technique string, affected int) {
	e.logStep(technique, affected)
	if !e.b.Log.Enabled() {
		return
	}
	viz := make(map[*board.Cell]int)
	for c, m := range state {
		if d := partition.SingleDigit(m); d != 0 {
			viz[c] = d
		}
	}
	e.b.Log.Step(genlog.StageDifficulty, genlog.SubLogicStep,
		fmt.Sprintf("Applied %s: %d cells affected", technique, affected),
		e.b.GridState(viz))
}

// tryBifurcation picks the MRV cell and tests each candidate with a
// silent ladder run; the first branch that solves everything is committed.
func (e *Estimator) tryBifurcation(state candidateMap) bool {
	if e.limitExceeded() {
		return false
	}

	var target *board.Cell
	minBits := 10
	for _, c := range e.b.Whites {
		bits := partition.MaskSize(state[c])
		if bits > 1 && bits < minBits {
			minBits = bits
			target = c
		}
	}
	if target == nil {
		return true
	}

	mask := state[target]
	for v := 1; v <= 9; v++ {
		if mask&(1<<v) == 0 {
			continue
		}
		if e.limitExceeded() {
			return false
		}
		test := make(candidateMap, len(state))
		for c, m := range state {
			test[c] = m
		}
		test[target] = 1 << v
		e.runSolveLoop(test, true)

		solved := true
		for _, c := range e.b.Whites {
			if partition.MaskSize(test[c]) != 1 {
				solved = false
				break
			}
		}
		if solved {
			for c, m := range test {
				state[c] = m
			}
			return true
		}
	}
	return false
}

// discoverSolutions counts solutions up to limit with a DFS constrained by
// the sector filter and MRV branching.
func (e *Estimator) discoverSolutions(state candidateMap, limit int) {
	if len(e.found) >= limit || e.limitExceeded() {
		return
	}

	for i := 0; i < 3; i++ {
		progress := false
		for si := range e.sectors {
			if e.applySectorConstraints(&e.sectors[si], state) {
				progress = true
			}
		}
		if !progress {
			break
		}
	}

	for _, c := range e.b.Whites {
		if state[c] == 0 {
			return
		}
	}

	var mrv *board.Cell
	minBits := 10
	for _, c := range e.b.Whites {
		bits := partition.MaskSize(state[c])
		if bits > 1 && bits < minBits {
			minBits = bits
			mrv = c
		}
	}

	if mrv == nil {
		sol := make(map[*board.Cell]int, len(e.b.Whites))
		for _, c := range e.b.Whites {
			d := partition.SingleDigit(state[c])
			if d == 0 {
				return
			}
			sol[c] = d
		}
		if !e.verifyMath(sol) {
			return
		}
		for _, existing := range e.found {
			same := true
			for _, c := range e.b.Whites {
				if existing[c] != sol[c] {
					same = false
					break
				}
			}
			if same {
				return
			}
		}
		e.found = append(e.found, sol)
		return
	}

	mask := state[mrv]
	for v := 1; v <= 9; v++ {
		if mask&(1<<v) == 0 {
			continue
		}
		if e.aborted {
			break
		}
		branch := make(candidateMap, len(state))
		for c, m := range state {
			branch[c] = m
		}
		branch[mrv] = 1 << v
		e.discoverSolutions(branch, limit)
		if len(e.found) >= limit {
			break
		}
	}
}

// verifyMath checks that sol satisfies every sector's sum and distinctness.
func (e *Estimator) verifyMath(sol map[*board.Cell]int) bool {
	for _, sec := range e.sectors {
		sum := 0
		var seen uint16
		for _, c := range sec.cells {
			v, ok := sol[c]
			if !ok {
				return false
			}
			sum += v
			seen |= 1 << v
		}
		if sum != sec.clue || partition.MaskSize(seen) != len(sec.cells) {
			return false
		}
	}
	return true
}

// renderSolution projects a solution onto a full grid, zero for blocks.
func (e *Estimator) renderSolution(sol map[*board.Cell]int) [][]int {
	grid := make([][]int, e.b.Height)
	for r := range grid {
		grid[r] = make([]int, e.b.Width)
	}
	for c, v := range sol {
		grid[c.R][c.C] = v
	}
	return grid
}
