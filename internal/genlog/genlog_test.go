package genlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.False(t, l.Enabled())
	assert.Empty(t, l.RunID())
	l.Step(StageTopology, SubStart, "dropped", GridState{})
	l.Profile("dropped", time.Millisecond)
	l.Timer("dropped")()
	assert.NoError(t, l.Close())
}

func TestStepEmitsJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	grid := GridState{W: 5, H: 5, Whites: [][3]int{{1, 1, 0}, {1, 2, 3}}}
	l.Step(StageTopology, SubStart, "Starting topology generation", grid)
	l.Step(StageFilling, SubComplete, "done", GridState{})

	scanner := bufio.NewScanner(&buf)

	require.True(t, scanner.Scan())
	var first map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &first))
	assert.EqualValues(t, 0, first["id"])
	assert.Equal(t, "tc", first["stage"])
	assert.Equal(t, "s", first["substage"])
	assert.Equal(t, "Starting topology generation", first["message"])
	assert.Equal(t, []any{float64(5), float64(5)}, first["wh"])
	g := first["g"].([]any)
	require.Len(t, g, 2)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, g[1])

	require.True(t, scanner.Scan())
	var second map[string]any
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &second))
	assert.EqualValues(t, 1, second["id"])
	assert.Equal(t, "f", second["stage"])
	assert.Equal(t, []any{}, second["g"])
	_, hasWH := second["wh"]
	assert.False(t, hasWH)
}

func TestStepHighlightsPayload(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, nil)

	grid := GridState{W: 5, H: 5, Whites: [][3]int{{1, 1, 1}}}
	alt := GridState{W: 5, H: 5, Whites: [][3]int{{1, 1, 4}}}
	l.StepHighlights(StageUniqueness, SubAlternative, "alt found", grid, [][2]int{{1, 1}}, alt)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	d := ev["d"].(map[string]any)
	assert.Equal(t, []any{[]any{float64(1), float64(1)}}, d["hc"])
	assert.Equal(t, []any{[]any{float64(1), float64(1), float64(4)}}, d["ag"])
}

func TestProfileStream(t *testing.T) {
	var events, prof bytes.Buffer
	l := New(&events, &prof)

	l.Profile("topology", 1500*time.Microsecond)

	assert.Zero(t, events.Len())
	var ev map[string]any
	require.NoError(t, json.Unmarshal(prof.Bytes(), &ev))
	assert.Equal(t, "p", ev["stage"])
	assert.Equal(t, "tm", ev["substage"])
	assert.InDelta(t, 1.5, ev["dur_ms"].(float64), 0.001)
}

func TestFileLoggerCreatesPair(t *testing.T) {
	dir := t.TempDir()
	l, err := NewFile(dir)
	require.NoError(t, err)
	assert.True(t, l.Enabled())
	assert.NotEmpty(t, l.RunID())

	l.Step(StageTopology, SubStart, "x", GridState{})
	require.NoError(t, l.Close())
	assert.False(t, l.Enabled())
}
