// Package genlog emits the line-delimited JSON event stream consumed by the
// generation visualizer.  Each record describes one step of topology
// creation, filling, uniqueness validation, or difficulty estimation,
// together with a compact serialization of the white cells.
//
// A nil *Logger is valid and drops every event, so callers never need to
// guard their logging sites.
package genlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Stages.
const (
	StageTopology   = "tc" // topology_creation
	StageFilling    = "f"  // filling
	StageUniqueness = "uv" // uniqueness_validation
	StageDifficulty = "de" // difficulty_estimation
	StageProfile    = "p"  // profile
	StageParams     = "params"
)

// Substages.
const (
	SubStart            = "s"   // start
	SubComplete         = "c"   // complete
	SubFailed           = "f"   // failed
	SubValidationFailed = "vf"  // validation_failed
	SubStampPlacement   = "sp"  // stamp_placement
	SubSeedPlacement    = "sep" // seed_placement
	SubLatticeGrowth    = "lg"  // lattice_growth
	SubSliceRuns        = "sr"  // slice_runs
	SubBreakPatches     = "bp"  // break_patches
	SubPruneSingles     = "ps"  // prune_singles
	SubBreakSingleRuns  = "bsr" // break_single_runs
	SubStabilizeGrid    = "sg"  // stabilize_grid
	SubFixInvalidRuns   = "fir" // fix_invalid_runs
	SubConnectivity     = "cc"  // connectivity_check
	SubNumberPlacement  = "np"  // number_placement
	SubBacktrack        = "bt"  // backtrack
	SubConsistency      = "cf"  // consistency_check_failed
	SubAmbiguity        = "ar"  // ambiguity_rejection
	SubAlternative      = "af"  // alternative_found
	SubRepairAttempt    = "ra"  // repair_attempt
	SubLogicStep        = "ls"  // logic_step
	SubTiming           = "tm"  // timing
)

// GridState is the compact white-cell serialization carried by events:
// board dimensions plus one [row, col, value] triple per WHITE cell.
type GridState struct {
	W      int
	H      int
	Whites [][3]int
}

// Logger writes events as JSONL.  All methods are safe on a nil receiver.
type Logger struct {
	mu    sync.Mutex
	w     io.Writer
	profW io.Writer
	owned []io.Closer

	runID string
	next  int
	last  time.Time
}

// New returns a Logger writing events to w and profile records to profW.
// Either writer may be nil to drop that stream.
func New(w, profW io.Writer) *Logger {
	return &Logger{
		w:     w,
		profW: profW,
		runID: "kakuro_" + uuid.NewString(),
		last:  time.Now(),
	}
}

// NewFile creates dir if needed and opens a fresh pair of files,
// <runID>.jsonl for events and _<runID>.jsonl for profile records.
func NewFile(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("genlog: create log dir: %w", err)
	}
	runID := "kakuro_" + uuid.NewString()
	ev, err := os.Create(filepath.Join(dir, runID+".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("genlog: create event log: %w", err)
	}
	prof, err := os.Create(filepath.Join(dir, "_"+runID+".jsonl"))
	if err != nil {
		ev.Close()
		return nil, fmt.Errorf("genlog: create profile log: %w", err)
	}
	l := New(ev, prof)
	l.runID = runID
	l.owned = []io.Closer{ev, prof}
	return l, nil
}

// RunID identifies this generation run; it names the log files.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// Enabled reports whether events are being recorded.
func (l *Logger) Enabled() bool {
	return l != nil && l.w != nil
}

// Close flushes and closes any files the Logger opened itself.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var first error
	for _, c := range l.owned {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.owned = nil
	l.w = nil
	l.profW = nil
	return first
}

type event struct {
	ID       int     `json:"id"`
	DurMS    float64 `json:"dur_ms"`
	Stage    string  `json:"stage"`
	Substage string  `json:"substage"`
	Message  string  `json:"message"`
	WH       *[2]int `json:"wh,omitempty"`
	Grid     [][3]int `json:"g"`
	Data     any     `json:"d,omitempty"`
}

// Step records one event with the current grid state.
func (l *Logger) Step(stage, substage, message string, grid GridState) {
	l.StepData(stage, substage, message, grid, nil)
}

// StepData records one event with an arbitrary extra payload under "d".
func (l *Logger) StepData(stage, substage, message string, grid GridState, data any) {
	if !l.Enabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	ev := event{
		ID:       l.next,
		DurMS:    float64(now.Sub(l.last)) / float64(time.Millisecond),
		Stage:    stage,
		Substage: substage,
		Message:  message,
		Grid:     grid.Whites,
		Data:     data,
	}
	if ev.Grid == nil {
		ev.Grid = [][3]int{}
	}
	if grid.W > 0 && grid.H > 0 {
		ev.WH = &[2]int{grid.W, grid.H}
	}
	l.next++
	l.last = now
	l.write(l.w, ev)
}

// Highlights is the extra payload attached to conflict events: the cells
// where two solutions differ and, optionally, the alternative solution as
// a second grid overlay.
type Highlights struct {
	Cells [][2]int `json:"hc"`
	Alt   [][3]int `json:"ag,omitempty"`
}

// StepHighlights records an event with highlighted cells and an optional
// alternative-solution grid overlay.
func (l *Logger) StepHighlights(stage, substage, message string, grid GridState, cells [][2]int, alt GridState) {
	if !l.Enabled() {
		return
	}
	h := Highlights{Cells: cells, Alt: alt.Whites}
	if h.Cells == nil {
		h.Cells = [][2]int{}
	}
	l.StepData(stage, substage, message, grid, h)
}

// Profile records a named duration on the profile stream.
func (l *Logger) Profile(name string, d time.Duration) {
	if l == nil || l.profW == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ev := event{
		ID:       l.next,
		DurMS:    float64(d) / float64(time.Millisecond),
		Stage:    StageProfile,
		Substage: SubTiming,
		Message:  "Profile: " + name,
		Grid:     [][3]int{},
	}
	l.next++
	l.write(l.profW, ev)
}

// Timer starts a profile span; invoke the returned func to record it.
//
//	defer log.Timer("fill")()
func (l *Logger) Timer(name string) func() {
	if l == nil || l.profW == nil {
		return func() {}
	}
	start := time.Now()
	return func() { l.Profile(name, time.Since(start)) }
}

func (l *Logger) write(w io.Writer, ev event) {
	if w == nil {
		return
	}
	line, err := json.Marshal(ev)
	if err != nil {
		return
	}
	w.Write(append(line, '\n'))
}
