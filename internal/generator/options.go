package generator

import (
	"log/slog"
	"time"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/fill"
	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

// Generation limits.
const (
	MaxTopologyRetries = 50
	MaxFillAttempts    = 100
	MaxRepairRounds    = 5
	UniquenessMaxNodes = 150000
	MinBoardSize       = 5
	minUsableWhites    = 12
)

// Options configures one puzzle generation run.
type Options struct {
	Width  int
	Height int

	// Difficulty selects the topology and fill parameter tables; see the
	// board package constants.
	Difficulty string

	// Seed makes generation reproducible; 0 draws from the clock.
	Seed int64

	// Timeout bounds the whole run.  Expiry aborts cleanly with
	// ErrGenerationTimeout and no partial puzzle.
	Timeout time.Duration

	// Topology and Fill override individual parameters; unset fields
	// follow Difficulty.
	Topology board.TopologyParams
	Fill     fill.Params

	// RepairBridging allows the cell removal at the start of a topology
	// repair to promote a BLOCK to WHITE as a connectivity bridge; when
	// false, a removal that disconnects the board is reverted instead.
	// The stabilization that follows a repair bridges through PruneSingles
	// regardless of this flag.
	RepairBridging bool

	// EventLog receives the visualization stream; nil disables it.
	EventLog *genlog.Logger

	// Logger receives operational logging; nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the standard options for a difficulty.
func DefaultOptions(difficulty string) *Options {
	return &Options{
		Width:          12,
		Height:         12,
		Difficulty:     difficulty,
		Timeout:        30 * time.Second,
		RepairBridging: true,
	}
}
