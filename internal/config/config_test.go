package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/fill"
)

const sample = `
difficulties:
  medium:
    topology:
      density: 0.62
      max_run_len: 7
      island_mode: false
      stamps:
        - [2, 3]
        - [3, 2]
    fill:
      partition_preference: unique
      max_nodes: 5000
      unique_ratio: 0.9
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kakuro.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	return path
}

func TestLoadAndApply(t *testing.T) {
	cfg, err := Load(writeSample(t))
	require.NoError(t, err)

	var topo board.TopologyParams
	var fp fill.Params
	cfg.Apply(board.Medium, &topo, &fp)

	assert.Equal(t, 0.62, topo.Density)
	assert.Equal(t, 7, topo.MaxRunLen)
	require.NotNil(t, topo.IslandMode)
	assert.False(t, *topo.IslandMode)
	assert.Equal(t, [][2]int{{2, 3}, {3, 2}}, topo.Stamps)

	assert.Equal(t, "unique", fp.PartitionPreference)
	assert.Equal(t, 5000, fp.MaxNodes)
	assert.Equal(t, 0.9, fp.UniqueRatio)

	// Untouched fields keep their zero values for downstream defaulting.
	assert.Zero(t, topo.MaxPatchSize)
}

func TestApplyUnknownDifficultyIsNoop(t *testing.T) {
	cfg, err := Load(writeSample(t))
	require.NoError(t, err)

	var topo board.TopologyParams
	var fp fill.Params
	cfg.Apply(board.Extreme, &topo, &fp)
	assert.Zero(t, topo.Density)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestNilFileApplyIsSafe(t *testing.T) {
	var cfg *File
	var topo board.TopologyParams
	var fp fill.Params
	cfg.Apply(board.Medium, &topo, &fp)
	assert.Zero(t, topo.Density)
}
