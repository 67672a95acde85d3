package solver

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Znerual/KakuroGenerator/internal/board"
)

// uniqueSquare is a 2x2 white square whose clues admit exactly one
// solution:
//
//	1 2
//	3 4
func uniqueSquare(t *testing.T) *board.Board {
	t.Helper()
	b := board.New(5, 5)
	b.Rng = rand.New(rand.NewSource(1))
	for _, p := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		b.SetWhite(p[0], p[1])
	}
	b.CollectWhites()
	b.IdentifySectors()
	b.Get(1, 0).ClueH = 3
	b.Get(2, 0).ClueH = 7
	b.Get(0, 1).ClueV = 4
	b.Get(0, 2).ClueV = 6
	b.Get(1, 1).Value = 1
	b.Get(1, 2).Value = 2
	b.Get(2, 1).Value = 3
	b.Get(2, 2).Value = 4
	return b
}

// ambiguousSquare has every clue equal to 5, admitting both
//
//	1 4        4 1
//	4 1  and   1 4
func ambiguousSquare(t *testing.T) *board.Board {
	t.Helper()
	b := board.New(5, 5)
	b.Rng = rand.New(rand.NewSource(1))
	for _, p := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		b.SetWhite(p[0], p[1])
	}
	b.CollectWhites()
	b.IdentifySectors()
	b.Get(1, 0).ClueH = 5
	b.Get(2, 0).ClueH = 5
	b.Get(0, 1).ClueV = 5
	b.Get(0, 2).ClueV = 5
	b.Get(1, 1).Value = 1
	b.Get(1, 2).Value = 4
	b.Get(2, 1).Value = 4
	b.Get(2, 2).Value = 1
	return b
}

func boardValues(b *board.Board) map[[2]int]int {
	vals := make(map[[2]int]int)
	for _, c := range b.Whites {
		vals[[2]int{c.R, c.C}] = c.Value
	}
	return vals
}

func TestCheckUniqueOnUniqueBoard(t *testing.T) {
	b := uniqueSquare(t)
	before := boardValues(b)

	result, witness := CheckUnique(b, 100000, 42, time.Time{})

	assert.Equal(t, Unique, result)
	assert.Nil(t, witness)
	assert.Equal(t, before, boardValues(b), "board values must be restored")
}

func TestCheckUniqueFindsWitness(t *testing.T) {
	b := ambiguousSquare(t)
	before := boardValues(b)

	result, witness := CheckUnique(b, 100000, 42, time.Time{})

	require.Equal(t, Multiple, result)
	require.NotNil(t, witness)

	// The witness differs from the reference in at least one cell and
	// satisfies every clue.
	different := false
	for pos, v := range witness {
		if before[pos] != v {
			different = true
		}
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 9)
	}
	assert.True(t, different)
	assert.Equal(t, 5, witness[[2]int{1, 1}]+witness[[2]int{1, 2}])
	assert.Equal(t, 5, witness[[2]int{2, 1}]+witness[[2]int{2, 2}])
	assert.Equal(t, 5, witness[[2]int{1, 1}]+witness[[2]int{2, 1}])

	assert.Equal(t, before, boardValues(b), "board values must be restored")
}

func TestCheckUniqueSeedIndependence(t *testing.T) {
	// The ambiguous board must be caught regardless of the search seed;
	// the robust orchestrator check relies on this dominating behavior.
	for _, seed := range []int{42, 142, 242} {
		b := ambiguousSquare(t)
		result, _ := CheckUnique(b, 100000, seed, time.Time{})
		assert.Equal(t, Multiple, result, "seed %d", seed)
	}
}

func TestCheckUniqueInconclusiveOnBudget(t *testing.T) {
	b := uniqueSquare(t)
	before := boardValues(b)

	result, witness := CheckUnique(b, 0, 42, time.Time{})

	assert.Equal(t, Inconclusive, result)
	assert.Nil(t, witness)
	assert.Equal(t, before, boardValues(b))
}
