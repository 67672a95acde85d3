// Package fill assigns digits to the white cells of a Kakuro board with a
// backtracking CSP search: MRV variable selection, difficulty-biased value
// ordering, and partition-aware heuristics that steer the clue structure
// toward or away from easily recognized digit sets.
package fill

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

// DefaultMaxNodes bounds one fill search.
const DefaultMaxNodes = 30000

// Params selects the digit-weight table and partition preference for one
// fill.  Zero-valued fields are filled by ApplyDefaults.
type Params struct {
	Difficulty string

	// Weights biases value ordering; index d-1 weighs digit d.
	Weights []int

	// PartitionPreference is "", "few", or "unique".  Use
	// SetPartitionPreference when leaving it empty on purpose for a
	// difficulty that defaults to a preference; ApplyDefaults otherwise
	// replaces an empty value with the difficulty's default.
	PartitionPreference string
	hasPreference       bool

	MaxNodes int

	// Acceptance ratios for the final partition-difficulty validation.
	UniqueRatio float64
	FewRatio    float64
}

// ApplyDefaults resolves difficulty-dependent weights and preference.
func (p *Params) ApplyDefaults() {
	if p.Weights == nil {
		switch p.Difficulty {
		case board.VeryEasy:
			p.Weights = []int{20, 15, 5, 1, 1, 1, 5, 15, 20}
		case board.Easy:
			p.Weights = []int{10, 8, 6, 2, 1, 2, 6, 8, 10}
		case board.Hard:
			p.Weights = []int{1, 2, 5, 10, 10, 10, 5, 2, 1}
		default:
			p.Weights = []int{5, 5, 5, 5, 5, 5, 5, 5, 5}
		}
	}
	if !p.hasPreference && p.PartitionPreference == "" {
		switch p.Difficulty {
		case board.VeryEasy:
			p.PartitionPreference = "unique"
		case board.Easy, board.Medium:
			p.PartitionPreference = "few"
		}
		p.hasPreference = true
	}
	if p.MaxNodes == 0 {
		p.MaxNodes = DefaultMaxNodes
	}
	if p.UniqueRatio == 0 {
		p.UniqueRatio = 0.80
	}
	if p.FewRatio == 0 {
		p.FewRatio = 0.60
	}
}

// SetPartitionPreference overrides the difficulty default, including an
// explicit "no preference".
func (p *Params) SetPartitionPreference(pref string) {
	p.PartitionPreference = pref
	p.hasPreference = true
}

// ValueConstraint forbids a set of digits on one cell.
type ValueConstraint struct {
	Cell   *board.Cell
	Values []int
}

func (vc ValueConstraint) forbids(val int) bool {
	for _, v := range vc.Values {
		if v == val {
			return true
		}
	}
	return false
}

// Filler runs fills against one board.
type Filler struct {
	Board *board.Board
	Rng   *rand.Rand

	// Deadline aborts the search cooperatively; zero means no deadline.
	Deadline time.Time

	nodeCount int
}

// New creates a Filler sharing the board's RNG.
func New(b *board.Board) *Filler {
	return &Filler{Board: b, Rng: b.Rng}
}

// Fill searches for a complete assignment.  forced binds cells before the
// search, forbidden lists digits the search must avoid per cell, and
// ignoreClues restricts the consistency test to the duplicate check (used
// for the initial fill, before clues exist).  On success the digits are
// committed to the cells and true is returned.
func (f *Filler) Fill(params Params, forced map[*board.Cell]int, forbidden []ValueConstraint, ignoreClues bool) bool {
	p := params
	p.ApplyDefaults()
	f.nodeCount = 0

	if !ignoreClues {
		f.Board.Log.Step(genlog.StageFilling, genlog.SubStart,
			fmt.Sprintf("Starting fill solve. Max nodes: %d", p.MaxNodes),
			f.Board.GridState(nil))
	}

	assignment := make(map[*board.Cell]int, len(f.Board.Whites))
	for cell, val := range forced {
		if cell.Type != board.White {
			continue
		}
		for _, cons := range forbidden {
			if cons.Cell == cell && cons.forbids(val) {
				return false
			}
		}
		if !IsValidMove(f.Board, cell, val, assignment, ignoreClues) {
			return false
		}
		assignment[cell] = val
	}

	ok := f.backtrack(assignment, p, forbidden, ignoreClues)
	if !ok && !ignoreClues {
		f.Board.Log.Step(genlog.StageFilling, genlog.SubBacktrack,
			fmt.Sprintf("Fill search exhausted after %d nodes", f.nodeCount),
			f.Board.GridState(nil))
	}
	return ok
}

func (f *Filler) expired() bool {
	return !f.Deadline.IsZero() && time.Now().After(f.Deadline)
}

func (f *Filler) backtrack(assignment map[*board.Cell]int, p Params, forbidden []ValueConstraint, ignoreClues bool) bool {
	if f.nodeCount > p.MaxNodes {
		return false
	}
	f.nodeCount++
	if f.nodeCount%1000 == 0 && f.expired() {
		return false
	}

	if len(assignment) == len(f.Board.Whites) {
		if p.PartitionPreference != "" && !ignoreClues {
			if !f.validatePartitionDifficulty(assignment, p) {
				return false
			}
		}
		for cell, val := range assignment {
			cell.Value = val
		}
		return true
	}

	// MRV: the unassigned cell with the smallest live domain.
	var cell *board.Cell
	minDomain := 10
	for _, c := range f.Board.Whites {
		if _, done := assignment[c]; done {
			continue
		}
		d := DomainSize(f.Board, c, assignment, ignoreClues)
		if d == 0 {
			return false
		}
		if d < minDomain {
			minDomain = d
			cell = c
		}
		if minDomain == 1 {
			break
		}
	}
	if cell == nil {
		return true
	}

	var domain []int
	if p.PartitionPreference != "" {
		domain = f.partitionAwareDomain(cell, assignment, p)
	} else {
		domain = f.weightedDomain(p.Weights)
	}

	for _, val := range domain {
		blocked := false
		for _, cons := range forbidden {
			if cons.Cell == cell && cons.forbids(val) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}

		if IsValidMove(f.Board, cell, val, assignment, ignoreClues) {
			assignment[cell] = val
			if f.backtrack(assignment, p, forbidden, ignoreClues) {
				return true
			}
			delete(assignment, cell)
		}
	}
	return false
}

// weightedDomain orders 1-9 by static weight perturbed with a fresh
// uniform factor, highest score first.
func (f *Filler) weightedDomain(weights []int) []int {
	type scored struct {
		val   int
		score float64
	}
	ranked := make([]scored, 9)
	for i := 0; i < 9; i++ {
		factor := 0.01 + 0.99*f.Rng.Float64()
		ranked[i] = scored{i + 1, float64(weights[i]) * factor}
	}
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && ranked[j].score > ranked[j-1].score; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	domain := make([]int, 9)
	for i, s := range ranked {
		domain[i] = s.val
	}
	return domain
}
