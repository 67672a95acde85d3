package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/partition"
)

func TestEstimateUniqueSquare(t *testing.T) {
	b := uniqueSquare(t)
	res := NewEstimator(b).Estimate()

	assert.Equal(t, 1, res.SolutionCount)
	assert.Equal(t, "Unique", res.Uniqueness)

	// The corner cell collapses through partition-mask intersection and
	// the rest follows from constraint propagation, so the puzzle rates
	// no higher than Medium.
	assert.LessOrEqual(t, res.MaxTier, TierMedium)
	assert.Equal(t, res.MaxTier.Rating(), res.Rating)
	assert.NotEmpty(t, res.SolvePath)
	assert.Positive(t, res.Score)

	require.Len(t, res.Solutions, 1)
	sol := res.Solutions[0]
	assert.Equal(t, 1, sol[1][1])
	assert.Equal(t, 2, sol[1][2])
	assert.Equal(t, 3, sol[2][1])
	assert.Equal(t, 4, sol[2][2])
}

func TestEstimateCountsMultipleSolutions(t *testing.T) {
	// All-fives clues admit four solutions (any a in 1..4 with b=c=5-a,
	// d=a); discovery is capped at three.
	b := ambiguousSquare(t)
	res := NewEstimator(b).Estimate()

	assert.Equal(t, 3, res.SolutionCount)
	assert.Equal(t, "Multiple", res.Uniqueness)
}

func TestEstimateScoreMatchesSolvePath(t *testing.T) {
	b := uniqueSquare(t)
	res := NewEstimator(b).Estimate()

	expected := 0.0
	for _, step := range res.SolvePath {
		expected += techniques[step.Technique].effort * float64(step.CellsAffected)
	}
	assert.InDelta(t, expected, res.Score, 1e-9)

	// Logged step weights come from the display table.
	for _, step := range res.SolvePath {
		assert.Equal(t, techniques[step.Technique].step, step.Weight)
	}
}

func TestSimplePartitionTechnique(t *testing.T) {
	b := uniqueSquare(t)
	e := NewEstimator(b)

	state := make(candidateMap)
	for _, c := range b.Whites {
		state[c] = partition.AllDigits
	}

	// Clue 3 over two cells admits only {1, 2} and clue 4 only {1, 3};
	// their crossing collapses the corner to a bare 1.
	require.True(t, e.applySimplePartitions(state, true))
	assert.Equal(t, partition.DigitMask(1), state[b.Get(1, 1)])
	assert.Equal(t, partition.DigitMask(1)|partition.DigitMask(2), state[b.Get(1, 2)])
	assert.Equal(t, partition.DigitMask(1)|partition.DigitMask(3), state[b.Get(2, 1)])
}

func TestHiddenSinglesTechnique(t *testing.T) {
	b := board.New(6, 5)
	for _, p := range [][2]int{{1, 1}, {1, 2}, {1, 3}, {2, 1}, {2, 2}, {2, 3}} {
		b.SetWhite(p[0], p[1])
	}
	b.CollectWhites()
	b.IdentifySectors()
	b.Get(1, 0).ClueH = 6
	b.Get(2, 0).ClueH = 24
	b.Get(0, 1).ClueV = 8
	b.Get(0, 2).ClueV = 10
	b.Get(0, 3).ClueV = 12

	e := NewEstimator(b)

	// Digit 3 survives only in the right cell of the top row: the row
	// partition is {1,2,3} and the other cells are pinned down to {1,2}.
	state := make(candidateMap)
	for _, c := range b.Whites {
		state[c] = partition.AllDigits
	}
	state[b.Get(1, 1)] = partition.DigitMask(1) | partition.DigitMask(2)
	state[b.Get(1, 2)] = partition.DigitMask(1) | partition.DigitMask(2)
	state[b.Get(1, 3)] = partition.DigitMask(1) | partition.DigitMask(2) | partition.DigitMask(3)

	require.True(t, e.findHiddenSingles(state, true))
	assert.Equal(t, partition.DigitMask(3), state[b.Get(1, 3)])
}

func TestEstimatorValueRestorationNotRequired(t *testing.T) {
	// The estimator works on candidate masks and never touches cell
	// values.
	b := uniqueSquare(t)
	NewEstimator(b).Estimate()
	assert.Equal(t, 1, b.Get(1, 1).Value)
	assert.Equal(t, 4, b.Get(2, 2).Value)
}

func TestFullRunSectorCarriesNoInformation(t *testing.T) {
	// A length-9 run summing to 45 keeps the identity mask.
	assert.Equal(t, partition.AllDigits, partition.Mask(45, 9))
}

func TestTierRatings(t *testing.T) {
	assert.Equal(t, "Very Easy", TierVeryEasy.Rating())
	assert.Equal(t, "Easy", TierEasy.Rating())
	assert.Equal(t, "Medium", TierMedium.Rating())
	assert.Equal(t, "Hard", TierHard.Rating())
	assert.Equal(t, "Extreme", TierExtreme.Rating())
}
