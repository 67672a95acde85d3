// Package board implements the Kakuro grid model: a rectangle of BLOCK and
// WHITE cells, the maximal white runs (sectors) along rows and columns, and
// the centrally-symmetric topology generator that lays them out.
package board

import (
	"math/rand"
	"strings"
	"time"

	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

// Special cell values
const (
	EmptyValue = 0 // no digit assigned
	NoClue     = 0 // block carries no clue in that direction
)

// CellType discriminates block cells from white entry cells.
type CellType uint8

const (
	Block CellType = iota
	White
)

func (t CellType) String() string {
	if t == White {
		return "WHITE"
	}
	return "BLOCK"
}

// Cell is one grid square.  A WHITE cell may carry a digit 1-9 in Value;
// a BLOCK cell may carry clue sums for the white runs starting immediately
// to its right (ClueH) and below it (ClueV).  Zero means unset for all
// three fields.
//
// SectorH and SectorV point at the sectors the cell belongs to.  They are
// only meaningful on WHITE cells and are rebuilt wholesale by
// IdentifySectors; holding a *Sector across a topology mutation is invalid.
type Cell struct {
	R, C  int
	Type  CellType
	Value int
	ClueH int
	ClueV int

	SectorH *Sector
	SectorV *Sector
}

// Sector is a maximal contiguous run of WHITE cells along one row or
// column.  Cells are ordered left-to-right or top-to-bottom.
type Sector struct {
	Cells      []*Cell
	Horizontal bool
}

// Len returns the run length.
func (s *Sector) Len() int { return len(s.Cells) }

// Board owns the cell grid and the sector tables derived from it.
// It is not safe for concurrent use; one generation pipeline owns one Board.
type Board struct {
	Width  int
	Height int

	cells [][]Cell

	// Whites caches the WHITE cells in row-major order.  Refreshed by
	// CollectWhites after any topology mutation.
	Whites []*Cell

	SectorsH []*Sector
	SectorsV []*Sector

	// Rng drives every randomized pass on this board.  Tests seed it for
	// reproducibility.
	Rng *rand.Rand

	// Log receives visualization events; nil drops them.
	Log *genlog.Logger
}

// New creates an all-BLOCK board.  Width and height must be at least 5 so
// the interior can host a run of length 2 behind its clue block.
func New(width, height int) *Board {
	b := &Board{
		Width:  width,
		Height: height,
		Rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	b.cells = make([][]Cell, height)
	for r := range b.cells {
		b.cells[r] = make([]Cell, width)
		for c := range b.cells[r] {
			b.cells[r][c] = Cell{R: r, C: c, Type: Block}
		}
	}
	return b
}

// Get returns the cell at (r, c), or nil when out of bounds.
func (b *Board) Get(r, c int) *Cell {
	if r < 0 || r >= b.Height || c < 0 || c >= b.Width {
		return nil
	}
	return &b.cells[r][c]
}

// SetBlock turns (r, c) into a BLOCK and clears its digit.
func (b *Board) SetBlock(r, c int) {
	cell := b.Get(r, c)
	if cell != nil && cell.Type != Block {
		cell.Type = Block
		cell.Value = EmptyValue
	}
}

// SetWhite turns (r, c) into a WHITE cell.  The outermost row and column
// are reserved for clue blocks, so border coordinates are ignored.
func (b *Board) SetWhite(r, c int) {
	if r >= 1 && r < b.Height-1 && c >= 1 && c < b.Width-1 {
		b.cells[r][c].Type = White
	}
}

// BlockSymmetric blocks (r, c) and its central-symmetric partner in one
// step, preserving the symmetry invariant unconditionally.
func (b *Board) BlockSymmetric(r, c int) {
	b.SetBlock(r, c)
	b.SetBlock(b.Height-1-r, b.Width-1-c)
}

// WhiteSymmetric whitens (r, c) and its central-symmetric partner.
func (b *Board) WhiteSymmetric(r, c int) {
	b.SetWhite(r, c)
	b.SetWhite(b.Height-1-r, b.Width-1-c)
}

// ResetValues clears every digit and clue, leaving the topology intact.
func (b *Board) ResetValues() {
	for r := range b.cells {
		for c := range b.cells[r] {
			cell := &b.cells[r][c]
			cell.Value = EmptyValue
			cell.ClueH = NoClue
			cell.ClueV = NoClue
		}
	}
}

// CollectWhites refreshes the cached WHITE cell list.
func (b *Board) CollectWhites() {
	b.Whites = b.Whites[:0]
	for r := range b.cells {
		for c := range b.cells[r] {
			if b.cells[r][c].Type == White {
				b.Whites = append(b.Whites, &b.cells[r][c])
			}
		}
	}
}

// IdentifySectors rebuilds the horizontal and vertical sector tables and
// links every WHITE cell to its two sectors.  The rebuild is atomic from
// the caller's view: after it returns no cell references an old sector.
func (b *Board) IdentifySectors() {
	b.SectorsH = b.SectorsH[:0]
	b.SectorsV = b.SectorsV[:0]
	for _, c := range b.Whites {
		c.SectorH = nil
		c.SectorV = nil
	}

	for r := 0; r < b.Height; r++ {
		var run []*Cell
		for c := 0; c <= b.Width; c++ {
			if c < b.Width && b.cells[r][c].Type == White {
				run = append(run, &b.cells[r][c])
				continue
			}
			if len(run) > 0 {
				sec := &Sector{Cells: run, Horizontal: true}
				for _, sc := range run {
					sc.SectorH = sec
				}
				b.SectorsH = append(b.SectorsH, sec)
				run = nil
			}
		}
	}

	for c := 0; c < b.Width; c++ {
		var run []*Cell
		for r := 0; r <= b.Height; r++ {
			if r < b.Height && b.cells[r][c].Type == White {
				run = append(run, &b.cells[r][c])
				continue
			}
			if len(run) > 0 {
				sec := &Sector{Cells: run}
				for _, sc := range run {
					sc.SectorV = sec
				}
				b.SectorsV = append(b.SectorsV, sec)
				run = nil
			}
		}
	}
}

// ClueCell returns the BLOCK cell holding the clue for sec: the cell
// immediately left of a horizontal sector's first cell, or immediately
// above a vertical sector's first cell.  Nil when the sector starts on the
// grid edge, which a valid topology never allows.
func (b *Board) ClueCell(sec *Sector) *Cell {
	if sec == nil || len(sec.Cells) == 0 {
		return nil
	}
	first := sec.Cells[0]
	if sec.Horizontal {
		return b.Get(first.R, first.C-1)
	}
	return b.Get(first.R-1, first.C)
}

// SectorClue returns the clue sum declared for sec, or NoClue.
func (b *Board) SectorClue(sec *Sector) int {
	cc := b.ClueCell(sec)
	if cc == nil {
		return NoClue
	}
	if sec.Horizontal {
		return cc.ClueH
	}
	return cc.ClueV
}

// CountWhiteNeighbors returns how many of the four orthogonal neighbors of
// cell are WHITE.
func (b *Board) CountWhiteNeighbors(cell *Cell) int {
	n := 0
	for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		nb := b.Get(cell.R+d[0], cell.C+d[1])
		if nb != nil && nb.Type == White {
			n++
		}
	}
	return n
}

// GridState serializes the WHITE cells for the event log, overlaying vals
// (keyed by cell) over the committed values when provided.
func (b *Board) GridState(vals map[*Cell]int) genlog.GridState {
	gs := genlog.GridState{W: b.Width, H: b.Height}
	for r := range b.cells {
		for c := range b.cells[r] {
			cell := &b.cells[r][c]
			if cell.Type != White {
				continue
			}
			v := cell.Value
			if vals != nil {
				if ov, ok := vals[cell]; ok {
					v = ov
				}
			}
			gs.Whites = append(gs.Whites, [3]int{r, c, v})
		}
	}
	return gs
}

// String renders the board for debugging: '#' blocks, '.' empty whites,
// digits for assigned whites.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Height; r++ {
		for c := 0; c < b.Width; c++ {
			cell := &b.cells[r][c]
			switch {
			case cell.Type == Block:
				sb.WriteByte('#')
			case cell.Value == EmptyValue:
				sb.WriteByte('.')
			default:
				sb.WriteByte('0' + byte(cell.Value))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
