package fill

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Znerual/KakuroGenerator/internal/board"
)

// squareBoard builds the smallest valid topology: a 2x2 white square in a
// 5x5 grid.  With clues 3/7 across and 4/6 down its unique solution is
//
//	1 2
//	3 4
func squareBoard(t *testing.T, withClues bool) *board.Board {
	t.Helper()
	b := board.New(5, 5)
	b.Rng = rand.New(rand.NewSource(1))
	for _, p := range [][2]int{{1, 1}, {1, 2}, {2, 1}, {2, 2}} {
		b.SetWhite(p[0], p[1])
	}
	b.CollectWhites()
	b.IdentifySectors()
	if withClues {
		b.Get(1, 0).ClueH = 3
		b.Get(2, 0).ClueH = 7
		b.Get(0, 1).ClueV = 4
		b.Get(0, 2).ClueV = 6
	}
	return b
}

func assertValidFill(t *testing.T, b *board.Board) {
	t.Helper()
	for _, sec := range append(append([]*board.Sector{}, b.SectorsH...), b.SectorsV...) {
		var seen uint16
		for _, c := range sec.Cells {
			require.GreaterOrEqual(t, c.Value, 1)
			require.LessOrEqual(t, c.Value, 9)
			require.Zero(t, seen&(1<<c.Value), "duplicate digit %d in sector", c.Value)
			seen |= 1 << c.Value
		}
	}
}

func TestFillIgnoreClues(t *testing.T) {
	b := squareBoard(t, false)
	f := New(b)

	require.True(t, f.Fill(Params{Difficulty: board.Medium}, nil, nil, true))
	assertValidFill(t, b)
}

func TestFillAgainstClues(t *testing.T) {
	b := squareBoard(t, true)
	f := New(b)

	p := Params{Difficulty: board.Hard}
	p.SetPartitionPreference("")
	require.True(t, f.Fill(p, nil, nil, false))

	assert.Equal(t, 1, b.Get(1, 1).Value)
	assert.Equal(t, 2, b.Get(1, 2).Value)
	assert.Equal(t, 3, b.Get(2, 1).Value)
	assert.Equal(t, 4, b.Get(2, 2).Value)
}

func TestFillHonorsForbidden(t *testing.T) {
	b := squareBoard(t, false)
	f := New(b)

	// Forbidding every digit on one cell makes the search infeasible.
	forbidden := []ValueConstraint{{
		Cell:   b.Get(1, 1),
		Values: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}}
	assert.False(t, f.Fill(Params{Difficulty: board.Medium}, nil, forbidden, true))

	// Forbidding a single digit steers the solution away from it.
	forbidden = []ValueConstraint{{Cell: b.Get(1, 1), Values: []int{5}}}
	require.True(t, f.Fill(Params{Difficulty: board.Medium}, nil, forbidden, true))
	assert.NotEqual(t, 5, b.Get(1, 1).Value)
}

func TestFillForcedAssignments(t *testing.T) {
	b := squareBoard(t, true)
	f := New(b)
	p := Params{Difficulty: board.Hard}
	p.SetPartitionPreference("")

	// Forcing the correct corner digit succeeds.
	forced := map[*board.Cell]int{b.Get(1, 1): 1}
	require.True(t, f.Fill(p, forced, nil, false))
	assert.Equal(t, 4, b.Get(2, 2).Value)

	// Forcing the wrong digit leaves no consistent completion: 2 at the
	// corner needs its column partner to repeat the 2.
	b.ResetValues()
	b = squareBoard(t, true)
	f = New(b)
	forced = map[*board.Cell]int{b.Get(1, 1): 2}
	assert.False(t, f.Fill(p, forced, nil, false))
}

func TestFillForcedConflictsWithForbidden(t *testing.T) {
	b := squareBoard(t, false)
	f := New(b)

	forced := map[*board.Cell]int{b.Get(1, 1): 3}
	forbidden := []ValueConstraint{{Cell: b.Get(1, 1), Values: []int{3}}}
	assert.False(t, f.Fill(Params{Difficulty: board.Medium}, forced, forbidden, true))
}

func TestPartitionAcceptanceThresholds(t *testing.T) {
	// On the clued square, three of the four sectors have at most two
	// partitions (3, 4, 6) and one has three (7).  Under "unique" the easy
	// ratio is 0.75 and fails the 0.80 bar; under "few" all four sectors
	// have at most four partitions, and the ratio of 1.0 passes the 0.60 bar.
	b := squareBoard(t, true)
	f := New(b)

	p := Params{Difficulty: board.Medium}
	p.SetPartitionPreference("unique")
	assert.False(t, f.Fill(p, nil, nil, false))

	p = Params{Difficulty: board.Medium}
	p.SetPartitionPreference("few")
	assert.True(t, f.Fill(p, nil, nil, false))
}

func TestIsValidMove(t *testing.T) {
	b := squareBoard(t, true)

	cell := b.Get(1, 1)

	// Sum feasibility: 5 overshoots the row clue of 3 on its own.
	assert.False(t, IsValidMove(b, cell, 5, nil, false))
	assert.True(t, IsValidMove(b, cell, 1, nil, false))

	// Duplicate check: the row partner already holds 2.
	b.Get(1, 2).Value = 2
	assert.False(t, IsValidMove(b, cell, 2, nil, false))
	assert.False(t, IsValidMove(b, cell, 2, nil, true))

	// The same digit in the transient assignment also collides.
	b.Get(1, 2).Value = board.EmptyValue
	assignment := map[*board.Cell]int{b.Get(1, 2): 2}
	assert.False(t, IsValidMove(b, cell, 2, assignment, true))
}

func TestIsValidMoveCompletion(t *testing.T) {
	b := squareBoard(t, true)

	// Completing the row must hit the clue exactly.
	b.Get(1, 1).Value = 1
	assert.True(t, IsValidMove(b, b.Get(1, 2), 2, nil, false))
	assert.False(t, IsValidMove(b, b.Get(1, 2), 3, nil, false))
}

func TestDomainSize(t *testing.T) {
	b := squareBoard(t, true)

	// Row clue 3 restricts the corner to {1, 2}; the interval test alone
	// cannot rule out the 2.
	assert.Equal(t, 2, DomainSize(b, b.Get(1, 1), nil, false))

	// Without clues all nine digits pass the duplicate check.
	assert.Equal(t, 9, DomainSize(b, b.Get(1, 1), nil, true))
}

func TestConsistencyMonotonicity(t *testing.T) {
	b := squareBoard(t, true)

	before := DomainSize(b, b.Get(2, 2), nil, false)
	b.Get(1, 1).Value = 1
	after := DomainSize(b, b.Get(2, 2), nil, false)
	assert.LessOrEqual(t, after, before)
}
