package solver

// Tier ranks the solving techniques by the capability they demand.
type Tier int

const (
	TierVeryEasy Tier = 1 + iota
	TierEasy
	TierMedium
	TierHard
	TierExtreme
)

// Rating returns the label for the tier.
func (t Tier) Rating() string {
	switch t {
	case TierVeryEasy:
		return "Very Easy"
	case TierEasy:
		return "Easy"
	case TierMedium:
		return "Medium"
	case TierHard:
		return "Hard"
	default:
		return "Extreme"
	}
}

// Technique names as they appear in the solve path.
const (
	TechUniqueIntersection    = "unique_intersection"
	TechEliminationSingles    = "elimination_singles"
	TechSimplePartition       = "simple_partition"
	TechConstraintPropagation = "constraint_propagation"
	TechHiddenSingles         = "hidden_singles"
	TechComplexIntersection   = "complex_intersection"
	TechTrialAndError         = "trial_and_error"
)

// techniqueInfo carries the tier and the two weights of a technique: the
// display weight recorded on each step and the effort weight that feeds
// the score.  Keeping both preserves the numbers legacy consumers expect
// while the rating rule stays "max tier decides, effort sums".
type techniqueInfo struct {
	tier   Tier
	step   float64
	effort float64
}

var techniques = map[string]techniqueInfo{
	TechUniqueIntersection:    {TierVeryEasy, 0.5, 1.0},
	TechEliminationSingles:    {TierVeryEasy, 2.0, 1.0},
	TechSimplePartition:       {TierEasy, 1.0, 2.5},
	TechConstraintPropagation: {TierMedium, 4.0, 5.0},
	TechHiddenSingles:         {TierMedium, 5.0, 5.0},
	TechComplexIntersection:   {TierHard, 6.0, 12.0},
	TechTrialAndError:         {TierExtreme, 20.0, 50.0},
}

// SolveStep is one logged application of a technique.
type SolveStep struct {
	Technique     string  `json:"technique"`
	Weight        float64 `json:"weight"`
	CellsAffected int     `json:"cells_affected"`
}

// Result is the difficulty record of a rated puzzle.
type Result struct {
	Rating        string      `json:"rating"`
	Score         float64     `json:"score"`
	MaxTier       Tier        `json:"max_tier"`
	TotalSteps    int         `json:"total_steps"`
	SolutionCount int         `json:"solution_count"`
	Uniqueness    string      `json:"uniqueness"`
	SolvePath     []SolveStep `json:"solve_path"`

	// Solutions holds up to three discovered solutions as full grids;
	// zero marks block cells.
	Solutions [][][]int `json:"solutions,omitempty"`
}
