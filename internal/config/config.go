// Package config loads optional YAML overrides for the per-difficulty
// generation parameters.  Absent fields keep the built-in defaults, so a
// file only needs to name what it changes:
//
//	difficulties:
//	  medium:
//	    topology:
//	      density: 0.62
//	      max_run_len: 7
//	    fill:
//	      partition_preference: few
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Znerual/KakuroGenerator/internal/board"
	"github.com/Znerual/KakuroGenerator/internal/fill"
)

// File is the root of a configuration document.
type File struct {
	Difficulties map[string]Entry `yaml:"difficulties"`
}

// Entry overrides one difficulty's parameters.
type Entry struct {
	Topology TopologyOverrides `yaml:"topology"`
	Fill     FillOverrides     `yaml:"fill"`
}

// TopologyOverrides mirrors board.TopologyParams with optional fields.
type TopologyOverrides struct {
	Density           *float64 `yaml:"density"`
	MaxSectorLength   *int     `yaml:"max_sector_length"`
	NumStamps         *int     `yaml:"num_stamps"`
	MinCells          *int     `yaml:"min_cells"`
	MaxRunLen         *int     `yaml:"max_run_len"`
	MaxRunLenSoft     *int     `yaml:"max_run_len_soft"`
	MaxRunLenSoftProb *float64 `yaml:"max_run_len_soft_prob"`
	MaxPatchSize      *int     `yaml:"max_patch_size"`
	IslandMode        *bool    `yaml:"island_mode"`
	Stamps            [][2]int `yaml:"stamps"`
}

// FillOverrides mirrors fill.Params with optional fields.
type FillOverrides struct {
	Weights             []int   `yaml:"weights"`
	PartitionPreference *string `yaml:"partition_preference"`
	MaxNodes            *int    `yaml:"max_nodes"`
	UniqueRatio         *float64 `yaml:"unique_ratio"`
	FewRatio            *float64 `yaml:"few_ratio"`
}

// Load reads and parses a configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies the overrides for difficulty onto the parameter structs.
// Unknown difficulties are a no-op.
func (f *File) Apply(difficulty string, topo *board.TopologyParams, fp *fill.Params) {
	if f == nil {
		return
	}
	e, ok := f.Difficulties[difficulty]
	if !ok {
		return
	}

	t := e.Topology
	if t.Density != nil {
		topo.Density = *t.Density
	}
	if t.MaxSectorLength != nil {
		topo.MaxSectorLength = *t.MaxSectorLength
	}
	if t.NumStamps != nil {
		topo.NumStamps = *t.NumStamps
	}
	if t.MinCells != nil {
		topo.MinCells = *t.MinCells
	}
	if t.MaxRunLen != nil {
		topo.MaxRunLen = *t.MaxRunLen
	}
	if t.MaxRunLenSoft != nil {
		topo.MaxRunLenSoft = *t.MaxRunLenSoft
	}
	if t.MaxRunLenSoftProb != nil {
		topo.MaxRunLenSoftProb = *t.MaxRunLenSoftProb
	}
	if t.MaxPatchSize != nil {
		topo.MaxPatchSize = *t.MaxPatchSize
	}
	if t.IslandMode != nil {
		topo.IslandMode = t.IslandMode
	}
	if t.Stamps != nil {
		topo.Stamps = t.Stamps
	}

	fo := e.Fill
	if fo.Weights != nil {
		fp.Weights = fo.Weights
	}
	if fo.PartitionPreference != nil {
		fp.SetPartitionPreference(*fo.PartitionPreference)
	}
	if fo.MaxNodes != nil {
		fp.MaxNodes = *fo.MaxNodes
	}
	if fo.UniqueRatio != nil {
		fp.UniqueRatio = *fo.UniqueRatio
	}
	if fo.FewRatio != nil {
		fp.FewRatio = *fo.FewRatio
	}
}
