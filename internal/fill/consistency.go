package fill

import (
	"github.com/Znerual/KakuroGenerator/internal/board"
)

// cellValue resolves the effective digit of a cell: the transient
// assignment wins over the committed board value.
func cellValue(cell *board.Cell, assignment map[*board.Cell]int) int {
	if assignment != nil {
		if v, ok := assignment[cell]; ok {
			return v
		}
	}
	return cell.Value
}

// IsValidMove reports whether placing val on cell is consistent with the
// current assignment: no duplicate digit in either sector and, unless
// ignoreClues is set, the sector sums can still reach their clues.
//
// A sector whose clue block carries no clue rejects every move in the
// clue-checking mode; filling against missing clues is a caller bug.
func IsValidMove(b *board.Board, cell *board.Cell, val int, assignment map[*board.Cell]int, ignoreClues bool) bool {
	return sectorAllows(b, cell, cell.SectorH, val, assignment, ignoreClues) &&
		sectorAllows(b, cell, cell.SectorV, val, assignment, ignoreClues)
}

func sectorAllows(b *board.Board, cell *board.Cell, sec *board.Sector, val int, assignment map[*board.Cell]int, ignoreClues bool) bool {
	if sec == nil || len(sec.Cells) == 0 {
		return true
	}

	sum := val
	filled := 1
	usedMask := uint16(1) << val

	for _, p := range sec.Cells {
		if p == cell {
			continue
		}
		v := cellValue(p, assignment)
		if v == board.EmptyValue {
			continue
		}
		if v == val {
			return false
		}
		sum += v
		usedMask |= 1 << v
		filled++
	}

	if ignoreClues {
		return true
	}

	target := b.SectorClue(sec)
	if target == board.NoClue {
		return false
	}

	remaining := len(sec.Cells) - filled
	if sum > target {
		return false
	}
	if remaining == 0 {
		return sum == target
	}

	minRem, maxRem := 0, 0
	taken := 0
	for d := 1; d <= 9 && taken < remaining; d++ {
		if usedMask&(1<<d) == 0 {
			minRem += d
			taken++
		}
	}
	taken = 0
	for d := 9; d >= 1 && taken < remaining; d-- {
		if usedMask&(1<<d) == 0 {
			maxRem += d
			taken++
		}
	}
	return sum+minRem <= target && sum+maxRem >= target
}

// DomainSize counts the digits cell can still take under IsValidMove.
func DomainSize(b *board.Board, cell *board.Cell, assignment map[*board.Cell]int, ignoreClues bool) int {
	count := 0
	for v := 1; v <= 9; v++ {
		if IsValidMove(b, cell, v, assignment, ignoreClues) {
			count++
		}
	}
	return count
}
