// Package terrain decodes color-ramp heightmap rasters into altitude grids
// and samples them by latitude and longitude.
package terrain

import (
	"errors"
	"io"

	"github.com/paulmach/orb"

	"github.com/Faultbox/demstream/pkg/ramp"
)

// Heightmap errors.
var (
	ErrEmptyRaster   = errors.New("terrain: raster has no pixels")
	ErrInvalidBounds = errors.New("terrain: north-east corner must lie north-east of south-west corner")
	ErrValueCount    = errors.New("terrain: value count does not match dimensions")
)

// DefaultSealevelAdjust is the altitude substituted for samples at or below
// zero, pushing them under the ocean surface.
const DefaultSealevelAdjust = -5

// Pixel is one normalized RGBA raster sample.
type Pixel struct {
	R, G, B, A float32
}

// Ramp returns the RGB part of the pixel as a ramp color.
func (p Pixel) Ramp() ramp.Color {
	return ramp.Color{R: p.R, G: p.G, B: p.B}
}

// Raster is a row-major grid of normalized pixels. Row 0 is the southern
// edge of the covered area.
type Raster struct {
	Name   string // Source name, used to derive the geographic origin
	Width  int
	Height int
	Pix    []Pixel
}

// Params controls how a raster is turned into a heightmap.
type Params struct {
	Steps          int       // Ramp step count, see ramp.Decode
	SouthWest      orb.Point // X = longitude, Y = latitude
	NorthEast      orb.Point
	MinAltitude    float32
	MaxAltitude    float32
	SealevelAdjust float32

	// Diagnostics, when set, receives one CSV record of decoded altitudes per
	// raster row. Write failures are ignored.
	Diagnostics io.Writer
}

// Heightmap is an immutable grid of altitudes covering a lat/lon box.
type Heightmap struct {
	width          int
	height         int
	southWest      orb.Point
	northEast      orb.Point
	sealevelAdjust float32
	values         []float32 // row-major, row 0 = south
}
