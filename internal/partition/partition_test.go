package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionsKnownValues(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}}, Partitions(3, 2))
	assert.Equal(t, [][]int{{1, 3}}, Partitions(4, 2))
	assert.Equal(t, [][]int{{1, 6}, {2, 5}, {3, 4}}, Partitions(7, 2))

	// The full run 1..9 is the only way to write 45 over nine digits.
	full := Partitions(45, 9)
	require.Len(t, full, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, full[0])
}

func TestPartitionsOutOfRange(t *testing.T) {
	assert.Empty(t, Partitions(0, 2))
	assert.Empty(t, Partitions(46, 9))
	assert.Empty(t, Partitions(5, 0))
	assert.Empty(t, Partitions(5, 10))
	assert.Zero(t, Mask(0, 2))
	assert.Zero(t, Count(46, 2))
}

func TestPartitionsInfeasibleSum(t *testing.T) {
	// Two distinct digits cannot sum to 2 or 18.
	assert.Empty(t, Partitions(2, 2))
	assert.Empty(t, Partitions(18, 2))
	assert.Zero(t, Mask(2, 2))
}

func TestMaskUnionsAllPartitions(t *testing.T) {
	// 7 over two digits: {1,6}, {2,5}, {3,4} — every digit 1..6.
	assert.Equal(t, uint16(0b0001111110), Mask(7, 2))
	// Clue 3 over two digits admits only {1,2}.
	assert.Equal(t, uint16(0b0000000110), Mask(3, 2))
	// Clue 45 over nine digits carries no information beyond 1..9.
	assert.Equal(t, AllDigits, Mask(45, 9))
}

func TestDeterminism(t *testing.T) {
	first := Partitions(23, 4)
	second := Partitions(23, 4)
	assert.Equal(t, first, second)
	assert.Equal(t, Count(23, 4), len(first))
	assert.Equal(t, Mask(23, 4), Mask(23, 4))
}

func TestMaskHelpers(t *testing.T) {
	assert.Equal(t, []int{2, 5, 9}, MaskDigits(DigitMask(2)|DigitMask(5)|DigitMask(9)))
	assert.Equal(t, 3, MaskSize(DigitMask(2)|DigitMask(5)|DigitMask(9)))
	assert.Equal(t, 7, SingleDigit(DigitMask(7)))
	assert.Zero(t, SingleDigit(DigitMask(1)|DigitMask(2)))
	assert.Zero(t, SingleDigit(0))
}
