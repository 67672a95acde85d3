package generator

import (
	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/solver"
)

// PuzzleCell is one exported grid square.  Only BLOCK cells carry clues
// and only WHITE cells carry a solution digit; zero means absent.
type PuzzleCell struct {
	Type     string `json:"type"`
	ClueH    int    `json:"clue_h,omitempty"`
	ClueV    int    `json:"clue_v,omitempty"`
	Solution int    `json:"solution,omitempty"`
}

// Puzzle is the generated output: the full grid in row-major order plus
// the difficulty record.
type Puzzle struct {
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Grid       [][]PuzzleCell  `json:"grid"`
	Difficulty solver.Result   `json:"difficulty"`
}

// exportPuzzle snapshots the board and its rating into the output form.
func exportPuzzle(b *board.Board, diff solver.Result) *Puzzle {
	p := &Puzzle{
		Width:      b.Width,
		Height:     b.Height,
		Difficulty: diff,
	}
	p.Grid = make([][]PuzzleCell, b.Height)
	for r := 0; r < b.Height; r++ {
		p.Grid[r] = make([]PuzzleCell, b.Width)
		for c := 0; c < b.Width; c++ {
			cell := b.Get(r, c)
			out := PuzzleCell{Type: cell.Type.String()}
			if cell.Type == board.Block {
				out.ClueH = cell.ClueH
				out.ClueV = cell.ClueV
			} else {
				out.Solution = cell.Value
			}
			p.Grid[r][c] = out
		}
	}
	return p
}
