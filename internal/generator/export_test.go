package generator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/solver"
)

func newTestRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestExportPuzzleShape(t *testing.T) {
	b := board.New(5, 5)
	for _, p := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		b.SetWhite(p[0], p[1])
	}
	b.CollectWhites()
	b.IdentifySectors()
	b.Get(1, 1).Value = 1
	b.Get(1, 2).Value = 2
	b.Get(2, 1).Value = 3
	b.Get(2, 2).Value = 4
	b.DeriveClues()

	p := exportPuzzle(b, solver.Result{Rating: "Easy"})

	assert.Equal(t, 5, p.Width)
	assert.Equal(t, 5, p.Height)
	assert.Equal(t, "Easy", p.Difficulty.Rating)

	assert.Equal(t, "BLOCK", p.Grid[0][0].Type)
	assert.Equal(t, "WHITE", p.Grid[1][1].Type)
	assert.Equal(t, 1, p.Grid[1][1].Solution)
	assert.Equal(t, 3, p.Grid[1][0].ClueH)
	assert.Equal(t, 4, p.Grid[0][1].ClueV)
	assert.Zero(t, p.Grid[1][1].ClueH)
	assert.Zero(t, p.Grid[1][0].Solution)
}
