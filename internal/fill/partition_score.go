package fill

import (
	"math"
	"sort"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/partition"
)

// partitionAwareDomain orders the candidate digits of cell by how well
// they steer the surrounding clues toward the requested partition
// difficulty: lower scores (fewer partitions) come first, perturbed by a
// small uniform noise so equal candidates vary between fills.
func (f *Filler) partitionAwareDomain(cell *board.Cell, assignment map[*board.Cell]int, p Params) []int {
	type scored struct {
		val   int
		score float64
	}
	var candidates []scored

	for val := 1; val <= 9; val++ {
		if f.duplicateIn(cell.SectorH, cell, val, assignment) ||
			f.duplicateIn(cell.SectorV, cell, val, assignment) {
			continue
		}

		hScore := f.partitionScore(cell, val, assignment, cell.SectorH, p.PartitionPreference)
		vScore := f.partitionScore(cell, val, assignment, cell.SectorV, p.PartitionPreference)
		entropy := f.intersectionEntropy(cell, val, assignment)

		weight := float64(p.Weights[val-1])
		combined := (hScore + vScore) + 3.0*entropy*(10.0/math.Max(weight, 1.0))

		candidates = append(candidates, scored{val, combined})
	}

	if len(candidates) == 0 {
		// No candidate passed the duplicate check; hand back the full
		// range and let the consistency test reject during search.
		return []int{1, 2, 3, 4, 5, 6, 7, 8, 9}
	}

	for i := range candidates {
		candidates[i].score += 2.0 * f.Rng.Float64()
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score < candidates[j].score
	})

	domain := make([]int, len(candidates))
	for i, c := range candidates {
		domain[i] = c.val
	}
	return domain
}

func (f *Filler) duplicateIn(sec *board.Sector, cell *board.Cell, val int, assignment map[*board.Cell]int) bool {
	if sec == nil {
		return false
	}
	for _, c := range sec.Cells {
		if c == cell {
			continue
		}
		if cellValue(c, assignment) == val {
			return true
		}
	}
	return false
}

// partitionScore rates placing val in cell with respect to one sector.
// Completing the sector scores by the exact partition count of the
// resulting sum; otherwise up to three reachable sums are sampled and the
// average partition count is mapped through the same kind of thresholds.
func (f *Filler) partitionScore(cell *board.Cell, val int, assignment map[*board.Cell]int, sec *board.Sector, preference string) float64 {
	if sec == nil || len(sec.Cells) == 0 {
		return 0
	}

	currentSum := val
	filled := 1
	remaining := 0
	var usedMask uint16 = 1 << val

	for _, c := range sec.Cells {
		if c == cell {
			continue
		}
		if v := cellValue(c, assignment); v != board.EmptyValue {
			currentSum += v
			usedMask |= 1 << v
			filled++
		} else {
			remaining++
		}
	}

	length := len(sec.Cells)

	if filled == length {
		n := partition.Count(currentSum, length)
		switch preference {
		case "unique":
			switch {
			case n == 1:
				return 0
			case n == 2:
				return 1
			case n <= 4:
				return 5
			default:
				return 20
			}
		case "few":
			switch {
			case n <= 2:
				return 0
			case n <= 4:
				return 2
			case n <= 6:
				return 5
			default:
				return 15
			}
		}
		return 5
	}

	// Incomplete sector: bound the final sum by taking the smallest and
	// largest unused digits for the remaining cells.
	var available []int
	for d := 1; d <= 9; d++ {
		if usedMask&(1<<d) == 0 {
			available = append(available, d)
		}
	}
	if len(available) < remaining {
		return 100
	}

	minRem, maxRem := 0, 0
	for i := 0; i < remaining; i++ {
		minRem += available[i]
		maxRem += available[len(available)-remaining+i]
	}
	minSum := currentSum + minRem
	maxSum := currentSum + maxRem

	var samples []int
	if minSum == maxSum {
		samples = []int{minSum}
	} else {
		step := max(1, (maxSum-minSum)/2)
		for s := minSum; s <= maxSum && len(samples) < 3; s += step {
			samples = append(samples, s)
		}
	}
	if len(samples) == 0 {
		return 5
	}

	avg := 0.0
	for _, s := range samples {
		avg += float64(partition.Count(s, length))
	}
	avg /= float64(len(samples))

	switch preference {
	case "unique":
		switch {
		case avg <= 2:
			return 1
		case avg <= 4:
			return 3
		default:
			return 8
		}
	case "few":
		switch {
		case avg <= 4:
			return 1
		case avg <= 6:
			return 3
		default:
			return 6
		}
	}
	return 5
}

// intersectionEntropy estimates how much freedom placing val leaves at the
// cell's row/column crossing: the log-scaled minimum of the future domain
// sizes along each direction.  Dead moves score 100.
func (f *Filler) intersectionEntropy(cell *board.Cell, val int, assignment map[*board.Cell]int) float64 {
	h := f.futureDomainSize(cell, val, cell.SectorH, assignment)
	v := f.futureDomainSize(cell, val, cell.SectorV, assignment)
	if h == 0 || v == 0 {
		return 100
	}
	return math.Log2(1 + float64(min(h, v)))
}

// futureDomainSize estimates how many digits remain playable in sec after
// placing val, using the sector's clue when one is already stamped.
func (f *Filler) futureDomainSize(cell *board.Cell, val int, sec *board.Sector, assignment map[*board.Cell]int) int {
	if sec == nil || len(sec.Cells) == 0 {
		return 0
	}

	currentSum := val
	usedMask := uint16(1) << val
	filled := 1

	for _, c := range sec.Cells {
		if c == cell {
			continue
		}
		if v := cellValue(c, assignment); v != board.EmptyValue {
			currentSum += v
			usedMask |= 1 << v
			filled++
		}
	}

	remaining := len(sec.Cells) - filled
	if remaining <= 0 {
		return 1
	}

	target := f.Board.SectorClue(sec)
	if target == board.NoClue {
		return 9
	}

	remainingSum := target - currentSum
	if remainingSum <= 0 {
		return 0
	}

	count := 0
	for d := 1; d <= 9; d++ {
		if usedMask&(1<<d) != 0 {
			continue
		}
		minPossible, maxPossible := d, d
		slots := remaining - 1
		for i := 1; i <= 9 && slots > 0; i++ {
			if usedMask&(1<<i) == 0 && i != d {
				minPossible += i
				slots--
			}
		}
		slots = remaining - 1
		for i := 9; i >= 1 && slots > 0; i-- {
			if usedMask&(1<<i) == 0 && i != d {
				maxPossible += i
				slots--
			}
		}
		if minPossible <= remainingSum && maxPossible >= remainingSum {
			count++
		}
	}
	return count
}

// validatePartitionDifficulty is the final acceptance test for fills with
// a partition preference: enough of the fully-assigned sectors must land
// on "easy" partition counts.
func (f *Filler) validatePartitionDifficulty(assignment map[*board.Cell]int, p Params) bool {
	easy, total := 0, 0

	tally := func(sectors []*board.Sector) {
		for _, sec := range sectors {
			if len(sec.Cells) == 0 {
				continue
			}
			sum := 0
			complete := true
			for _, c := range sec.Cells {
				v, ok := assignment[c]
				if !ok {
					complete = false
					break
				}
				sum += v
			}
			if !complete {
				continue
			}
			total++
			n := partition.Count(sum, len(sec.Cells))
			if p.PartitionPreference == "unique" && n <= 2 {
				easy++
			} else if p.PartitionPreference == "few" && n <= 4 {
				easy++
			}
		}
	}
	tally(f.Board.SectorsH)
	tally(f.Board.SectorsV)

	if total == 0 {
		return true
	}

	ratio := float64(easy) / float64(total)
	switch p.PartitionPreference {
	case "unique":
		return ratio >= p.UniqueRatio
	case "few":
		return ratio >= p.FewRatio
	}
	return true
}
