// Package streaming lays out the terrain tile grid over the planet and keeps
// tile meshes at the right level of detail as the viewer moves.
package streaming

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"

	"github.com/Faultbox/demstream/internal/engine/geo"
	"github.com/Faultbox/demstream/internal/engine/terrain"
	"github.com/Faultbox/demstream/internal/engine/tile"
)

// Scheduler errors.
var (
	ErrNoOrigin      = errors.New("streaming: no lat/lon origin in raster name")
	ErrNoRaster      = errors.New("streaming: no source raster")
	ErrNoHeightmap   = errors.New("streaming: no heightmap published")
	ErrGridNotBuilt  = errors.New("streaming: grid not built")
	ErrInvalidTiling = errors.New("streaming: invalid tiling parameters")
	ErrTilePanic     = errors.New("streaming: tile builder panicked")
)

// State is the scheduler lifecycle state.
type State int

// Scheduler states, in lifecycle order.
const (
	StateUninitialized State = iota
	StateHeightmapReady
	StateGridBuilt
	StateStreaming
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateHeightmapReady:
		return "HeightmapReady"
	case StateGridBuilt:
		return "GridBuilt"
	case StateStreaming:
		return "Streaming"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Format selects how the heightmap bounding box is resolved.
type Format int

const (
	// FormatASTER reads the south-west origin from the raster name.
	FormatASTER Format = iota
	// FormatGeneric uses the configured corners.
	FormatGeneric
)

func (f Format) String() string {
	if f == FormatGeneric {
		return "generic"
	}
	return "aster"
}

// ParseFormat converts a config string into a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "aster", "ASTER", "":
		return FormatASTER, nil
	case "generic", "Generic":
		return FormatGeneric, nil
	}
	return FormatASTER, fmt.Errorf("streaming: unknown source format %q", s)
}

// Settings holds the scheduler parameters.
type Settings struct {
	Format          Format
	Steps           int
	FilenamePrefix  string
	TileSpanDegrees float64
	SouthWest       orb.Point
	NorthEast       orb.Point
	MinAltitude     float32
	MaxAltitude     float32
	SealevelAdjust  float32

	AreaX                int // East-west extent in km
	AreaY                int // North-south extent in km
	CenterAltitudeOffset float64

	KmPerSubmesh      int
	Resolution        int
	DynamicResolution bool
	BuildAsync        bool
	Workers           int
	Averaged          bool

	RebuildInterval int

	OutputDir     string
	HeightmapDump bool
}

// DefaultSettings returns the stock parameters.
func DefaultSettings() Settings {
	return Settings{
		Format:          FormatASTER,
		Steps:           4,
		FilenamePrefix:  "AST",
		TileSpanDegrees: 1,
		MaxAltitude:     1500,
		SealevelAdjust:  terrain.DefaultSealevelAdjust,
		AreaX:           178,
		AreaY:           150,
		KmPerSubmesh:    10,
		Resolution:      64,
		BuildAsync:      true,
		Averaged:        true,
		RebuildInterval: 50,
		OutputDir:       "./Output/Terrain",
		HeightmapDump:   true,
	}
}

// TileBuilder produces the mesh of one tile. Build must be deterministic in
// its inputs and keep the previous mesh when it fails.
type TileBuilder interface {
	Init(offset, size mgl64.Vec3, proj *geo.Projection)
	Build(hm *terrain.Heightmap, resolution int) error
	WorldCenter() mgl64.Vec3
	Mesh() *tile.Mesh
}

// TileFactory creates the builder for one tile of the grid.
type TileFactory func(kind tile.Kind, index int) TileBuilder

// Pair is one grid cell: a land tile and its ocean twin over the same
// footprint, plus what is currently handed to the renderer.
type Pair struct {
	Index      int
	Land       TileBuilder
	Ocean      TileBuilder
	Resolution int
	Distance   float64
	Visible    bool

	// Rendered meshes, swapped after each pass.
	LandMesh  *tile.Mesh
	OceanMesh *tile.Mesh
}

// TileError reports a failed tile build.
type TileError struct {
	Index int
	Kind  tile.Kind
	Err   error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("tile %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *TileError) Unwrap() error { return e.Err }

// Report summarizes a build pass.
type Report struct {
	Tiles    int
	Built    int // Successful tile builds, land and ocean counted separately
	Failed   int
	Hidden   int
	Duration time.Duration
	Err      error // All *TileError values of the pass, combined with multierr
}
