package cmd

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/config"
	"github.com/Znerual/KakuroGenerator/internal/generator"
	"github.com/Znerual/KakuroGenerator/internal/genlog"
)

var (
	numPuzzles int
	difficulty string
	boardSize  string
	seed       int64
	timeout    time.Duration
	outputFile string
	logDir     string
	configFile string
	randomized bool
)

func init() {
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate Kakuro puzzles",
		Long: `Generate one or more Kakuro puzzles at a given difficulty.

Examples:
  kakuro gen --difficulty easy
  kakuro gen -n 5 --difficulty extreme --size 16x16
  kakuro gen --difficulty medium --seed 7 -o puzzles.html
  kakuro gen --random -n 3 -o puzzles.json`,
		RunE: runGen,
	}

	genCmd.Flags().IntVarP(&numPuzzles, "number", "n", 1, "Number of puzzles to generate")
	genCmd.Flags().StringVarP(&difficulty, "difficulty", "d", board.Medium,
		"Difficulty: very_easy, easy, medium, hard, very_hard, extreme")
	genCmd.Flags().StringVar(&boardSize, "size", "12x12", "Board size as WxH")
	genCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed (0 = random)")
	genCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Generation timeout per puzzle")
	genCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (.json or .html)")
	genCmd.Flags().StringVar(&logDir, "log-dir", "", "Directory for visualization event logs")
	genCmd.Flags().StringVar(&configFile, "config", "", "YAML file with difficulty parameter overrides")
	genCmd.Flags().BoolVar(&randomized, "random", false, "Randomize size and parameters per puzzle")

	rootCmd.AddCommand(genCmd)
}

func parseSize(s string) (w, h int, err error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q (use WxH, e.g. 12x12)", s)
	}
	w, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width: %w", err)
	}
	h, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height: %w", err)
	}
	if w < generator.MinBoardSize || h < generator.MinBoardSize {
		return 0, 0, fmt.Errorf("size %dx%d below minimum %dx%d",
			w, h, generator.MinBoardSize, generator.MinBoardSize)
	}
	return w, h, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	var cfg *config.File
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
	}

	width, height, err := parseSize(boardSize)
	if err != nil {
		return err
	}

	rngSeed := seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	var puzzles []*generator.Puzzle
	for i := 0; i < numPuzzles; i++ {
		var puzzle *generator.Puzzle
		var eventLog *genlog.Logger
		if randomized {
			puzzle, err = generator.GenerateRandom(rng, timeout)
		} else {
			if logDir != "" {
				eventLog, err = genlog.NewFile(logDir)
				if err != nil {
					return err
				}
			}
			opts := generator.DefaultOptions(difficulty)
			opts.Width = width
			opts.Height = height
			opts.Seed = rng.Int63()
			opts.Timeout = timeout
			opts.EventLog = eventLog
			cfg.Apply(difficulty, &opts.Topology, &opts.Fill)
			puzzle, err = generator.New(opts).Generate()
		}
		eventLog.Close()
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		puzzles = append(puzzles, puzzle)

		if outputFile == "" {
			fmt.Printf("Puzzle #%d (%s, score %.0f):\n\n", i+1,
				puzzle.Difficulty.Rating, puzzle.Difficulty.Score)
			fmt.Println(formatPuzzle(puzzle, false))
			fmt.Println("Solution:")
			fmt.Println(formatPuzzle(puzzle, true))
		}
	}

	if outputFile == "" {
		return nil
	}

	switch filepath.Ext(outputFile) {
	case ".html":
		if err := writeHTML(outputFile, puzzles); err != nil {
			return fmt.Errorf("failed to write HTML file: %w", err)
		}
	default:
		data, err := json.MarshalIndent(puzzles, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(outputFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}
	fmt.Printf("Generated %d puzzle(s) in %s\n", len(puzzles), outputFile)
	return nil
}

// formatPuzzle renders the grid for the console.  Clue blocks print as
// "V\H" with absent halves dotted; white cells print their digit when
// showSolution is set.
func formatPuzzle(p *generator.Puzzle, showSolution bool) string {
	var sb strings.Builder
	for r := 0; r < p.Height; r++ {
		for c := 0; c < p.Width; c++ {
			cell := p.Grid[r][c]
			if cell.Type == "BLOCK" {
				if cell.ClueH == 0 && cell.ClueV == 0 {
					sb.WriteString("  #####  ")
				} else {
					h, v := "..", ".."
					if cell.ClueH > 0 {
						h = fmt.Sprintf("%2d", cell.ClueH)
					}
					if cell.ClueV > 0 {
						v = fmt.Sprintf("%2d", cell.ClueV)
					}
					sb.WriteString(fmt.Sprintf("  %s\\%s  ", v, h))
				}
			} else if showSolution && cell.Solution > 0 {
				sb.WriteString(fmt.Sprintf("    %d    ", cell.Solution))
			} else {
				sb.WriteString("    _    ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
