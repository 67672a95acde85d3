package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Znerual/KakuroGenerator/internal/generator"
)

// writeHTML creates an HTML file with puzzles, one per page, each followed
// by its solution grid.
func writeHTML(filename string, puzzles []*generator.Puzzle) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	defer file.Close()

	_, err = fmt.Fprint(file, `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Kakuro Puzzles</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            max-width: 900px;
            margin: 0 auto;
            padding: 20px;
            background-color: #f5f5f5;
        }
        .page {
            page-break-after: always;
            background-color: white;
            padding: 40px;
            margin-bottom: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .page:last-child {
            page-break-after: auto;
        }
        h1 {
            color: #333;
            margin-bottom: 10px;
            text-align: center;
        }
        h2 {
            color: #666;
            margin-top: 20px;
            margin-bottom: 15px;
            font-size: 1.2em;
        }
        .rating {
            color: #666;
            text-align: center;
            margin-bottom: 20px;
        }
        .kakuro-grid table {
            border-collapse: collapse;
            margin: 0 auto;
        }
        .kakuro-grid td {
            width: 46px;
            height: 46px;
            text-align: center;
            vertical-align: middle;
            border: 1px solid #333;
            padding: 0;
            font-size: 20px;
        }
        .kakuro-grid td.block {
            background-color: #222;
        }
        .kakuro-grid td.clue {
            background-color: #222;
            color: #eee;
            font-size: 11px;
            background-image: linear-gradient(to bottom right,
                transparent calc(50% - 1px), #777, transparent calc(50% + 1px));
        }
        .kakuro-grid .v { display: block; text-align: left; padding: 2px 0 0 3px; }
        .kakuro-grid .h { display: block; text-align: right; padding: 0 3px 2px 0; }
        @media print {
            body { background-color: white; }
            .page { margin-bottom: 0; box-shadow: none; }
        }
    </style>
</head>
<body>
`)
	if err != nil {
		return err
	}

	for i, p := range puzzles {
		_, err = fmt.Fprintf(file, `    <div class="page">
        <h1>Kakuro Puzzle #%d</h1>
        <div class="rating">%s &middot; score %.0f</div>
        <h2>Puzzle</h2>
        %s
        <h2>Solution</h2>
        %s
    </div>
`, i+1, p.Difficulty.Rating, p.Difficulty.Score,
			puzzleToHTML(p, false), puzzleToHTML(p, true))
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprint(file, "</body>\n</html>\n")
	return err
}

// puzzleToHTML converts a puzzle to an HTML table.  Clue blocks render
// with the vertical clue above the diagonal and the horizontal one below.
func puzzleToHTML(p *generator.Puzzle, showSolution bool) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"kakuro-grid\"><table>")

	for r := 0; r < p.Height; r++ {
		sb.WriteString("<tr>")
		for c := 0; c < p.Width; c++ {
			cell := p.Grid[r][c]
			switch {
			case cell.Type == "BLOCK" && cell.ClueH == 0 && cell.ClueV == 0:
				sb.WriteString("<td class=\"block\"></td>")
			case cell.Type == "BLOCK":
				v, h := "", ""
				if cell.ClueV > 0 {
					v = fmt.Sprintf("%d", cell.ClueV)
				}
				if cell.ClueH > 0 {
					h = fmt.Sprintf("%d", cell.ClueH)
				}
				sb.WriteString(fmt.Sprintf(
					"<td class=\"clue\"><span class=\"v\">%s</span><span class=\"h\">%s</span></td>", v, h))
			case showSolution && cell.Solution > 0:
				sb.WriteString(fmt.Sprintf("<td>%d</td>", cell.Solution))
			default:
				sb.WriteString("<td></td>")
			}
		}
		sb.WriteString("</tr>")
	}

	sb.WriteString("</table></div>")
	return sb.String()
}
