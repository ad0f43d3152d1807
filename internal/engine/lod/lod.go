// Package lod maps viewer distance to terrain mesh resolution.
package lod

import (
	"cmp"
	"slices"
)

// Default table values.
const (
	DefaultMaxRange          = 1500
	DefaultResolution        = 16
	DefaultMinimumResolution = 2
	DefaultHideMeshDistance  = 100000
)

// Level is one distance band: tiles closer than MaxRange metres are built
// at Resolution samples per side.
type Level struct {
	MaxRange   float64 `yaml:"max_range"`
	Resolution int     `yaml:"resolution"`
}

// SqrRange returns MaxRange squared.
func (l Level) SqrRange() float64 {
	return l.MaxRange * l.MaxRange
}

// Table holds the LOD levels plus the resolution floor and hide cutoff.
//
// Levels must be sorted by MaxRange before Resolve is called. Table does not
// keep itself sorted: call Sort after every change to Levels.
type Table struct {
	Levels            []Level `yaml:"levels"`
	MinimumResolution int     `yaml:"minimum_resolution"`
	HideMeshDistance  float64 `yaml:"hide_mesh_distance"`
}

// DefaultTable returns a table with a single default level.
func DefaultTable() Table {
	return Table{
		Levels:            []Level{{MaxRange: DefaultMaxRange, Resolution: DefaultResolution}},
		MinimumResolution: DefaultMinimumResolution,
		HideMeshDistance:  DefaultHideMeshDistance,
	}
}

// Sort orders Levels by ascending MaxRange, keeping the relative order of
// levels with equal range.
func (t *Table) Sort() {
	slices.SortStableFunc(t.Levels, byRange)
}

// Sorted reports whether Levels are in ascending MaxRange order.
func (t *Table) Sorted() bool {
	return slices.IsSortedFunc(t.Levels, byRange)
}

func byRange(a, b Level) int {
	return cmp.Compare(a.MaxRange, b.MaxRange)
}

// Resolve returns the resolution of the tightest level whose MaxRange still
// covers rng, never less than MinimumResolution. Beyond the last level it
// returns MinimumResolution.
func (t *Table) Resolve(rng float64) int {
	for _, l := range t.Levels {
		if l.MaxRange >= rng {
			return max(l.Resolution, t.MinimumResolution)
		}
	}
	return t.MinimumResolution
}

// Hidden reports whether a tile at dist metres is past HideMeshDistance.
func (t *Table) Hidden(dist float64) bool {
	return dist > t.HideMeshDistance
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	t.Levels = slices.Clone(t.Levels)
	return t
}
