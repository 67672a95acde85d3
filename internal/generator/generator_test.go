package generator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/solver"
)

func generateWithSeeds(t *testing.T, difficulty string, w, h int) *Puzzle {
	t.Helper()
	for seed := int64(1); seed <= 3; seed++ {
		opts := DefaultOptions(difficulty)
		opts.Width = w
		opts.Height = h
		opts.Seed = seed
		opts.Timeout = 30 * time.Second

		puzzle, err := New(opts).Generate()
		if err != nil {
			continue
		}
		return puzzle
	}
	t.Fatalf("no %s %dx%d puzzle generated across 3 seeds", difficulty, w, h)
	return nil
}

func TestGenerateEasyPuzzle(t *testing.T) {
	puzzle := generateWithSeeds(t, board.Easy, 11, 11)

	assert.Equal(t, 11, puzzle.Width)
	assert.Equal(t, 11, puzzle.Height)
	assert.Equal(t, 1, puzzle.Difficulty.SolutionCount)
	assert.Equal(t, "Unique", puzzle.Difficulty.Uniqueness)
	assert.NotEmpty(t, puzzle.Difficulty.Rating)

	assertPuzzleInvariants(t, puzzle)
}

func assertPuzzleInvariants(t *testing.T, p *Puzzle) {
	t.Helper()

	// Central symmetry of the white pattern.
	for r := 0; r < p.Height; r++ {
		for c := 0; c < p.Width; c++ {
			partner := p.Grid[p.Height-1-r][p.Width-1-c]
			assert.Equal(t, p.Grid[r][c].Type, partner.Type,
				"symmetry broken at (%d,%d)", r, c)
		}
	}

	// Only blocks carry clues, only whites carry solutions.
	for r := 0; r < p.Height; r++ {
		for c := 0; c < p.Width; c++ {
			cell := p.Grid[r][c]
			if cell.Type == "WHITE" {
				assert.Zero(t, cell.ClueH)
				assert.Zero(t, cell.ClueV)
				assert.GreaterOrEqual(t, cell.Solution, 1)
				assert.LessOrEqual(t, cell.Solution, 9)
			} else {
				assert.Zero(t, cell.Solution)
			}
		}
	}

	// Every horizontal run: preceded by its clue, distinct digits, sum
	// matches; runs have length 2..9.
	for r := 0; r < p.Height; r++ {
		for c := 0; c < p.Width; c++ {
			if p.Grid[r][c].Type != "WHITE" {
				continue
			}
			if c > 0 && p.Grid[r][c-1].Type == "WHITE" {
				continue // not a run start
			}
			sum, length := 0, 0
			var seen uint16
			for cc := c; cc < p.Width && p.Grid[r][cc].Type == "WHITE"; cc++ {
				v := p.Grid[r][cc].Solution
				assert.Zero(t, seen&(1<<v), "duplicate %d in row run at (%d,%d)", v, r, c)
				seen |= 1 << v
				sum += v
				length++
			}
			assert.GreaterOrEqual(t, length, 2)
			assert.LessOrEqual(t, length, 9)
			require.Greater(t, c, 0)
			assert.Equal(t, sum, p.Grid[r][c-1].ClueH, "row clue mismatch at (%d,%d)", r, c-1)
		}
	}

	// Vertical runs likewise.
	for c := 0; c < p.Width; c++ {
		for r := 0; r < p.Height; r++ {
			if p.Grid[r][c].Type != "WHITE" {
				continue
			}
			if r > 0 && p.Grid[r-1][c].Type == "WHITE" {
				continue
			}
			sum, length := 0, 0
			var seen uint16
			for rr := r; rr < p.Height && p.Grid[rr][c].Type == "WHITE"; rr++ {
				v := p.Grid[rr][c].Solution
				assert.Zero(t, seen&(1<<v), "duplicate %d in column run at (%d,%d)", v, r, c)
				seen |= 1 << v
				sum += v
				length++
			}
			assert.GreaterOrEqual(t, length, 2)
			assert.LessOrEqual(t, length, 9)
			require.Greater(t, r, 0)
			assert.Equal(t, sum, p.Grid[r-1][c].ClueV, "column clue mismatch at (%d,%d)", r-1, c)
		}
	}
}

func TestGenerateRejectsTinyBoards(t *testing.T) {
	opts := DefaultOptions(board.Easy)
	opts.Width = 4
	opts.Height = 4
	_, err := New(opts).Generate()
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestGenerateTimesOutCleanly(t *testing.T) {
	opts := DefaultOptions(board.Extreme)
	opts.Width = 16
	opts.Height = 16
	opts.Seed = 1
	opts.Timeout = -time.Nanosecond

	puzzle, err := New(opts).Generate()
	assert.Nil(t, puzzle)
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestLearnConstraintPicksHighestDegreeCell(t *testing.T) {
	g := New(DefaultOptions(board.Easy))
	g.board = board.New(6, 5)
	for _, p := range [][2]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}} {
		g.board.SetWhite(p[0], p[1])
	}
	g.board.CollectWhites()
	g.board.IdentifySectors()
	for _, c := range g.board.Whites {
		c.Value = 1
	}

	// The witness differs at the corner (two white neighbors) and at the
	// middle of the top row (three); the middle must be picked.
	witness := solver.Witness{}
	for _, c := range g.board.Whites {
		witness[[2]int{c.R, c.C}] = c.Value
	}
	witness[[2]int{1, 1}] = 2
	witness[[2]int{1, 2}] = 3

	cons, ok := g.learnConstraint(witness)
	require.True(t, ok)
	assert.Equal(t, g.board.Get(1, 2), cons.Cell)
	assert.Equal(t, []int{1}, cons.Values)
}

func TestRandomizedOptionsBounds(t *testing.T) {
	rng := newTestRand()
	for i := 0; i < 50; i++ {
		opts := RandomizedOptions(rng)
		assert.GreaterOrEqual(t, opts.Width, 8)
		assert.LessOrEqual(t, opts.Width, 18)
		assert.GreaterOrEqual(t, opts.Height, 8)
		assert.LessOrEqual(t, opts.Height, 16)
		assert.Greater(t, opts.Topology.Density, 0.54)
		assert.Less(t, opts.Topology.Density, 0.69)
		assert.NotEmpty(t, opts.Topology.Stamps)
		assert.NotNil(t, opts.Topology.IslandMode)
	}
}
