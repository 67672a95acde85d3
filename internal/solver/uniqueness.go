// Package solver verifies that a filled Kakuro board has exactly one
// solution and estimates how hard that solution is to reach with human
// techniques.  The uniqueness search mutates the board's cell values in
// place and restores them before returning; the estimator works on its own
// candidate masks and leaves cell values untouched.
package solver

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/fill"
	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

// Uniqueness classifies the outcome of a second-solution search.
type Uniqueness int

const (
	Unique Uniqueness = iota
	Multiple
	Inconclusive
)

func (u Uniqueness) String() string {
	switch u {
	case Unique:
		return "Unique"
	case Multiple:
		return "Multiple"
	default:
		return "Inconclusive"
	}
}

// Witness maps [row, col] to the digit of an alternative solution.
type Witness map[[2]int]int

// CheckUnique searches for a solution different from the digits currently
// on the board, which serve as the reference.  Value ordering is a
// seed-driven shuffle with the reference digit moved last, so a second
// solution is found before the reference is rediscovered.  The board is
// restored to its entry state before returning.
//
// Exceeding maxNodes or the deadline yields Inconclusive.  A zero deadline
// means no time limit.
func CheckUnique(b *board.Board, maxNodes, seed int, deadline time.Time) (Uniqueness, Witness) {
	reference := make(map[*board.Cell]int, len(b.Whites))
	avoid := make(Witness, len(b.Whites))
	for _, c := range b.Whites {
		if c.Value != board.EmptyValue {
			reference[c] = c.Value
			avoid[[2]int{c.R, c.C}] = c.Value
		}
		c.Value = board.EmptyValue
	}

	s := &uniquenessSearch{
		b:        b,
		avoid:    avoid,
		maxNodes: maxNodes,
		seed:     seed,
		deadline: deadline,
	}
	s.search()

	for _, c := range b.Whites {
		c.Value = reference[c]
	}

	if s.found != nil {
		return Multiple, s.found
	}
	if s.timedOut {
		return Inconclusive, nil
	}
	return Unique, nil
}

type uniquenessSearch struct {
	b        *board.Board
	avoid    Witness
	maxNodes int
	seed     int
	deadline time.Time

	nodeCount int
	timedOut  bool
	found     Witness
}

func (s *uniquenessSearch) search() {
	if s.found != nil {
		return
	}
	if s.nodeCount > s.maxNodes {
		s.timedOut = true
		return
	}
	s.nodeCount++
	if s.nodeCount%1000 == 0 && !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.timedOut = true
		return
	}

	// MRV over the unassigned cells, full consistency against the clues.
	var cell *board.Cell
	minDomain := 10
	for _, c := range s.b.Whites {
		if c.Value != board.EmptyValue {
			continue
		}
		d := fill.DomainSize(s.b, c, nil, false)
		if d == 0 {
			return
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
		// Complete assignment; report it when it differs anywhere.
		sol := make(Witness, len(s.b.Whites))
		different := false
		for _, c := range s.b.Whites {
			sol[[2]int{c.R, c.C}] = c.Value
			if c.Value != s.avoid[[2]int{c.R, c.C}] {
				different = true
			}
		}
		if different {
			s.found = sol
			s.logAlternative(sol)
		}
		return
	}

	vals := []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	shuffleRng := rand.New(rand.NewSource(int64(s.seed + s.nodeCount)))
	shuffleRng.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })

	// The reference digit goes last so the search prefers to diverge.
	target := s.avoid[[2]int{cell.R, cell.C}]
	ordered := make([]int, 0, 9)
	for _, v := range vals {
		if v != target {
			ordered = append(ordered, v)
		}
	}
	ordered = append(ordered, target)

	for _, v := range ordered {
		if fill.IsValidMove(s.b, cell, v, nil, false) {
			cell.Value = v
			s.search()
			cell.Value = board.EmptyValue
			if s.found != nil || s.timedOut {
				return
			}
		}
	}
}

func (s *uniquenessSearch) logAlternative(sol Witness) {
	if !s.b.Log.Enabled() {
		return
	}
	var highlights [][2]int
	alt := genlog.GridState{W: s.b.Width, H: s.b.Height}
	for _, c := range s.b.Whites {
		pos := [2]int{c.R, c.C}
		alt.Whites = append(alt.Whites, [3]int{c.R, c.C, sol[pos]})
		if sol[pos] != s.avoid[pos] {
			highlights = append(highlights, pos)
		}
	}
	// Grid column shows the reference; the alternative rides in the overlay.
	ref := genlog.GridState{W: s.b.Width, H: s.b.Height}
	for _, c := range s.b.Whites {
		ref.Whites = append(ref.Whites, [3]int{c.R, c.C, s.avoid[[2]int{c.R, c.C}]})
	}
	s.b.Log.StepHighlights(genlog.StageUniqueness, genlog.SubAlternative,
		fmt.Sprintf("Found alternative solution after %d nodes", s.nodeCount),
		ref, highlights, alt)
}
