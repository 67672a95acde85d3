// Package generator composes topology generation, CSP filling, uniqueness
// checking, and difficulty estimation into the retry/repair/learn loop
// that produces finished Kakuro puzzles.
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/fill"
	"github.com/Znerual/KakuroGenerator/internal/genlog"
	"github.com/Znerual/KakuroGenerator/internal/metrics"
	"github.com/Znerual/KakuroGenerator/internal/solver"
)

var (
	ErrInvalidSize       = errors.New("board must be at least 5x5")
	ErrGenerationFailed  = errors.New("failed to generate valid puzzle")
	ErrGenerationTimeout = errors.New("generation time budget exceeded")
)

// Generator creates Kakuro puzzles with a guaranteed unique solution.
type Generator struct {
	options *Options
	log     *slog.Logger

	board    *board.Board
	filler   *fill.Filler
	deadline time.Time
}

// New creates a generator for the given options.
func New(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions(board.Medium)
	}
	log := options.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Generator{options: options, log: log}
}

// Board exposes the working board; nil until Generate ran.  Intended for
// tests and for hosts that render intermediate states.
func (g *Generator) Board() *board.Board {
	return g.board
}

// Generate runs the full pipeline and returns the finished puzzle.
// The time budget is enforced cooperatively; on expiry the run aborts with
// ErrGenerationTimeout and no partial result.
func (g *Generator) Generate() (*Puzzle, error) {
	if g.options.Width < MinBoardSize || g.options.Height < MinBoardSize {
		return nil, ErrInvalidSize
	}

	seed := g.options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g.board = board.New(g.options.Width, g.options.Height)
	g.board.Rng = rand.New(rand.NewSource(seed))
	g.board.Log = g.options.EventLog
	g.filler = fill.New(g.board)

	start := time.Now()
	g.deadline = start.Add(g.options.Timeout)
	g.filler.Deadline = g.deadline

	defer func() {
		metrics.GenerationDuration.WithLabelValues(g.options.Difficulty).
			Observe(time.Since(start).Seconds())
	}()

	topoParams := g.options.Topology
	topoParams.Difficulty = g.options.Difficulty

	fillParams := g.options.Fill
	fillParams.Difficulty = g.options.Difficulty

	g.board.Log.StepData(genlog.StageParams, "init", "Generation Parameters",
		genlog.GridState{}, map[string]any{
			"difficulty": g.options.Difficulty,
			"width":      g.options.Width,
			"height":     g.options.Height,
			"seed":       seed,
			"timeout_ms": g.options.Timeout.Milliseconds(),
		})

	for attempt := 0; attempt < MaxTopologyRetries; attempt++ {
		if g.expired() {
			g.log.Warn("generation timed out", "difficulty", g.options.Difficulty, "attempt", attempt)
			metrics.GenerationsTotal.WithLabelValues(g.options.Difficulty, "timeout").Inc()
			return nil, ErrGenerationTimeout
		}

		if !g.prepareNewTopology(topoParams) {
			continue
		}

		puzzle, err := g.fillAndValidate(fillParams)
		if err != nil {
			metrics.GenerationsTotal.WithLabelValues(g.options.Difficulty, "timeout").Inc()
			return nil, err
		}
		if puzzle != nil {
			g.log.Info("generated puzzle",
				"difficulty", g.options.Difficulty,
				"rating", puzzle.Difficulty.Rating,
				"score", puzzle.Difficulty.Score,
				"elapsed", time.Since(start))
			g.board.Log.Step(genlog.StageFilling, genlog.SubComplete,
				"Puzzle generation successful", g.board.GridState(nil))
			metrics.GenerationsTotal.WithLabelValues(g.options.Difficulty, "success").Inc()
			return puzzle, nil
		}
	}

	g.log.Warn("generation exhausted topology retries", "difficulty", g.options.Difficulty)
	g.board.Log.Step(genlog.StageFilling, genlog.SubFailed,
		"Puzzle generation failed after max retries", g.board.GridState(nil))
	metrics.GenerationsTotal.WithLabelValues(g.options.Difficulty, "exhausted").Inc()
	return nil, ErrGenerationFailed
}

func (g *Generator) expired() bool {
	return time.Now().After(g.deadline)
}

func (g *Generator) prepareNewTopology(params board.TopologyParams) bool {
	metrics.TopologyAttempts.Inc()
	stop := g.options.EventLog.Timer("topology")
	defer stop()

	if !g.board.GenerateTopology(params) || len(g.board.Whites) < minUsableWhites {
		return false
	}
	g.board.CollectWhites()
	g.board.IdentifySectors()
	return true
}

// fillAndValidate drives the inner fill loop for the current topology.
// A non-nil puzzle means success; (nil, nil) means the topology was
// abandoned and the caller should generate a fresh one.
func (g *Generator) fillAndValidate(params fill.Params) (*Puzzle, error) {
	fillsForTopology := 0
	var learned []fill.ValueConstraint

	for attempt := 0; attempt < MaxFillAttempts*MaxRepairRounds; attempt++ {
		if g.expired() {
			return nil, ErrGenerationTimeout
		}

		g.board.ResetValues()
		metrics.FillAttempts.Inc()

		// The initial fill ignores clues: they do not exist yet.
		if !g.filler.Fill(params, nil, learned, true) {
			if len(learned) > 0 {
				// The learned constraints may have over-constrained the
				// board; drop them and start this topology over.
				g.log.Debug("fill failed with learned constraints, clearing them",
					"constraints", len(learned))
				learned = learned[:0]
				continue
			}
			return nil, nil
		}

		g.board.DeriveClues()

		if g.highGlobalAmbiguity() {
			continue
		}

		result, witness := g.robustUniquenessCheck()
		metrics.UniquenessChecks.WithLabelValues(result.String()).Inc()

		if result == solver.Unique {
			stop := g.options.EventLog.Timer("difficulty")
			est := solver.NewEstimator(g.board)
			diff := est.Estimate()
			stop()
			if diff.SolutionCount == 1 {
				return exportPuzzle(g.board, diff), nil
			}
			// The estimator's independent count disagrees; treat as
			// multiple without a witness.
			result = solver.Multiple
		}

		if g.expired() {
			return nil, ErrGenerationTimeout
		}

		if result == solver.Multiple {
			fillsForTopology++

			if witness != nil {
				if cons, ok := g.learnConstraint(witness); ok {
					learned = append(learned, cons)
				}
			}

			if fillsForTopology < MaxFillAttempts {
				continue
			}

			g.board.CollectWhites()
			g.board.IdentifySectors()
			g.logConflict(witness)

			if witness != nil && g.repairTopology(witness) {
				g.log.Debug("topology repaired, restarting fill loop")
				metrics.TopologyRepairs.WithLabelValues("success").Inc()
				fillsForTopology = 0
				learned = learned[:0]
				continue
			}
			metrics.TopologyRepairs.WithLabelValues("failed").Inc()
			return nil, nil
		}
	}
	return nil, nil
}

// robustUniquenessCheck runs three independently seeded second-solution
// searches.  Multiple or Inconclusive in any pass dominates Unique.
func (g *Generator) robustUniquenessCheck() (solver.Uniqueness, solver.Witness) {
	stop := g.options.EventLog.Timer("uniqueness")
	defer stop()

	for i := 0; i < 3; i++ {
		if g.expired() {
			return solver.Inconclusive, nil
		}
		status, witness := solver.CheckUnique(g.board, UniquenessMaxNodes, 42+i*100, g.deadline)
		if status == solver.Multiple {
			return solver.Multiple, witness
		}
		if status == solver.Inconclusive {
			return solver.Inconclusive, nil
		}
	}
	return solver.Unique, nil
}

// highGlobalAmbiguity rejects fills where three or more cells still have
// four or more consistent digits under the derived clues; such boards are
// very unlikely to be unique and not worth the search.
func (g *Generator) highGlobalAmbiguity() bool {
	badCells := 0
	for _, c := range g.board.Whites {
		if fill.DomainSize(g.board, c, nil, false) >= 4 {
			badCells++
			if badCells >= 3 {
				g.logAmbiguity()
				return true
			}
		}
	}
	return false
}

func (g *Generator) logAmbiguity() {
	if !g.board.Log.Enabled() {
		return
	}
	var highlights [][2]int
	for _, c := range g.board.Whites {
		if fill.DomainSize(g.board, c, nil, false) >= 4 {
			highlights = append(highlights, [2]int{c.R, c.C})
		}
	}
	g.board.Log.StepHighlights(genlog.StageFilling, genlog.SubAmbiguity,
		fmt.Sprintf("Rejecting fill: high global ambiguity detected (%d cells)", len(highlights)),
		g.board.GridState(nil), highlights, genlog.GridState{})
}

// learnConstraint picks the differing cell with the most white neighbors
// and forbids its current digit in subsequent fills, forcing the next
// solution to diverge where it matters most.
func (g *Generator) learnConstraint(witness solver.Witness) (fill.ValueConstraint, bool) {
	var target *board.Cell
	bestNeighbors := -1
	for _, c := range g.board.Whites {
		alt, ok := witness[[2]int{c.R, c.C}]
		if !ok || c.Value == board.EmptyValue || alt == c.Value {
			continue
		}
		if n := g.board.CountWhiteNeighbors(c); n > bestNeighbors {
			bestNeighbors = n
			target = c
		}
	}
	if target == nil {
		return fill.ValueConstraint{}, false
	}
	g.log.Debug("learning forbidden value",
		"row", target.R, "col", target.C, "value", target.Value)
	return fill.ValueConstraint{Cell: target, Values: []int{target.Value}}, true
}

func (g *Generator) logConflict(witness solver.Witness) {
	if witness == nil || !g.board.Log.Enabled() {
		return
	}
	var highlights [][2]int
	alt := genlog.GridState{W: g.board.Width, H: g.board.Height}
	for _, c := range g.board.Whites {
		pos := [2]int{c.R, c.C}
		if v, ok := witness[pos]; ok {
			alt.Whites = append(alt.Whites, [3]int{c.R, c.C, v})
			if v != c.Value {
				highlights = append(highlights, pos)
			}
		}
	}
	g.board.Log.StepHighlights(genlog.StageFilling, "uniqueness_conflict",
		"Uniqueness conflict: multiple solutions found. Overlay available.",
		g.board.GridState(nil), highlights, alt)
}

// repairTopology tries to break the ambiguity structurally: block one of
// the cells where the fill and the witness differ, restabilize, and keep
// the result when the grid actually changed and still validates.
func (g *Generator) repairTopology(witness solver.Witness) bool {
	var diffs []*board.Cell
	for _, c := range g.board.Whites {
		if alt, ok := witness[[2]int{c.R, c.C}]; ok && c.Value != board.EmptyValue && alt != c.Value {
			diffs = append(diffs, c)
		}
	}
	if len(diffs) == 0 {
		return false
	}

	g.board.Rng.Shuffle(len(diffs), func(i, j int) { diffs[i], diffs[j] = diffs[j], diffs[i] })

	snapshot := g.snapshotTypes()

	candidates := min(15, len(diffs))
	for i := 0; i < candidates; i++ {
		target := diffs[i]

		g.restoreTypes(snapshot)

		if !g.board.TryRemoveAndReconnect(target.R, target.C, g.options.RepairBridging) {
			continue
		}
		g.board.StabilizeGrid(false)

		if !g.typesChanged(snapshot) {
			g.board.Log.Step(genlog.StageTopology, genlog.SubRepairAttempt,
				"Topology repair did not change the board", g.board.GridState(nil))
			continue
		}

		g.board.IdentifySectors()
		if !g.board.ValidateStructure() {
			g.board.Log.Step(genlog.StageTopology, genlog.SubRepairAttempt,
				"Topology repair failed to create a valid board", g.board.GridState(nil))
			continue
		}
		if len(g.board.Whites) <= minUsableWhites {
			g.board.Log.Step(genlog.StageTopology, genlog.SubRepairAttempt,
				"Topology repair failed to create a valid board (too small)", g.board.GridState(nil))
			continue
		}

		g.board.Log.Step(genlog.StageTopology, genlog.SubRepairAttempt,
			"Topology repaired successfully", g.board.GridState(nil))
		return true
	}
	return false
}

func (g *Generator) snapshotTypes() [][]board.CellType {
	snap := make([][]board.CellType, g.board.Height)
	for r := range snap {
		snap[r] = make([]board.CellType, g.board.Width)
		for c := range snap[r] {
			snap[r][c] = g.board.Get(r, c).Type
		}
	}
	return snap
}

func (g *Generator) restoreTypes(snap [][]board.CellType) {
	for r := range snap {
		for c := range snap[r] {
			cell := g.board.Get(r, c)
			cell.Type = snap[r][c]
			if cell.Type == board.Block {
				cell.Value = board.EmptyValue
			}
		}
	}
	g.board.CollectWhites()
	g.board.IdentifySectors()
}

func (g *Generator) typesChanged(snap [][]board.CellType) bool {
	for r := range snap {
		for c := range snap[r] {
			if g.board.Get(r, c).Type != snap[r][c] {
				return true
			}
		}
	}
	return false
}
