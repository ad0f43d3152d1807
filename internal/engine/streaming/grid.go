package streaming

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// TileCounts returns the grid dimensions for an areaX x areaY km area cut
// into km-sized tiles. Rows always cover the area. Columns round down when
// areaX is not a multiple of km, gaining one extra column only when areaY is
// a multiple of km; such grids may leave a strip uncovered.
func TileCounts(areaX, areaY, km int) (vert, horz int, err error) {
	if km <= 0 || areaX <= 0 || areaY <= 0 {
		return 0, 0, fmt.Errorf("%w: area %dx%d km, %d km per tile", ErrInvalidTiling, areaX, areaY, km)
	}

	vert = (areaY + km - 1) / km
	horz = areaX / km
	if areaX%km != 0 && areaY%km == 0 {
		horz++
	}
	return vert, horz, nil
}

// Covered reports whether a vert x horz grid of km tiles spans the area.
func Covered(areaX, areaY, km, vert, horz int) bool {
	return horz*km >= areaX && vert*km >= areaY
}

// footprint is the tangent-plane placement of one tile.
type footprint struct {
	Offset mgl64.Vec3
	Size   mgl64.Vec3
}

// layout walks n tiles row-major from the south-west corner of an area
// centred on the tangent point. A row ends once the east offset reaches half
// the area width. radius is the local X of every footprint.
func layout(areaX, areaY, km, n int, radius float64) []footprint {
	halfX := float64(areaX) / 2
	step := float64(km)
	size := mgl64.Vec3{0, step * 1000, step * 1000}

	horz := -halfX
	vert := -float64(areaY) / 2

	out := make([]footprint, n)
	for i := range out {
		out[i] = footprint{
			Offset: mgl64.Vec3{radius, horz * 1000, vert * 1000},
			Size:   size,
		}

		horz += step
		if horz >= halfX {
			horz = -halfX
			vert += step
		}
	}
	return out
}
