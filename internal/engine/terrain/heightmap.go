package terrain

import (
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"

	"github.com/Faultbox/demstream/pkg/ramp"
)

// Build decodes every raster pixel through the color ramp and interpolates
// it into [MinAltitude, MaxAltitude]. Any decode failure aborts the build and
// no heightmap is returned.
func Build(r *Raster, p Params) (*Heightmap, error) {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return nil, ErrEmptyRaster
	}
	if len(r.Pix) != r.Width*r.Height {
		return nil, fmt.Errorf("%w: raster %dx%d has %d pixels", ErrValueCount, r.Width, r.Height, len(r.Pix))
	}
	if err := checkBounds(p.SouthWest, p.NorthEast); err != nil {
		return nil, err
	}
	// Reject the step count up front rather than on the first pixel.
	if _, err := ramp.Decode(ramp.Color{}, p.Steps); err != nil {
		return nil, err
	}

	diag := newDiagnostics(p.Diagnostics)
	values := make([]float32, r.Width*r.Height)

	for y := range r.Height {
		row := values[y*r.Width : (y+1)*r.Width]
		for x := range r.Width {
			t, err := ramp.Decode(r.Pix[y*r.Width+x].Ramp(), p.Steps)
			if err != nil {
				return nil, fmt.Errorf("decoding pixel (%d, %d): %w", x, y, err)
			}
			row[x] = lerp(p.MinAltitude, p.MaxAltitude, t)
		}
		diag.writeRow(row)
	}
	diag.flush()

	return &Heightmap{
		width:          r.Width,
		height:         r.Height,
		southWest:      p.SouthWest,
		northEast:      p.NorthEast,
		sealevelAdjust: p.SealevelAdjust,
		values:         values,
	}, nil
}

// New creates a heightmap from already decoded altitudes. values is copied.
func New(width, height int, values []float32, sw, ne orb.Point, sealevelAdjust float32) (*Heightmap, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyRaster
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %dx%d needs %d values, got %d", ErrValueCount, width, height, width*height, len(values))
	}
	if err := checkBounds(sw, ne); err != nil {
		return nil, err
	}

	return &Heightmap{
		width:          width,
		height:         height,
		southWest:      sw,
		northEast:      ne,
		sealevelAdjust: sealevelAdjust,
		values:         slices.Clone(values),
	}, nil
}

func checkBounds(sw, ne orb.Point) error {
	if !(ne.Lon() > sw.Lon() && ne.Lat() > sw.Lat()) {
		return fmt.Errorf("%w: sw=%v ne=%v", ErrInvalidBounds, sw, ne)
	}
	return nil
}

// Width returns the number of samples per row.
func (h *Heightmap) Width() int { return h.width }

// Height returns the number of rows.
func (h *Heightmap) Height() int { return h.height }

// SouthWest returns the south-west corner (X = lon, Y = lat).
func (h *Heightmap) SouthWest() orb.Point { return h.southWest }

// NorthEast returns the north-east corner (X = lon, Y = lat).
func (h *Heightmap) NorthEast() orb.Point { return h.northEast }

// Bound returns the covered lat/lon box.
func (h *Heightmap) Bound() orb.Bound {
	return orb.Bound{Min: h.southWest, Max: h.northEast}
}

// LatSize returns the north-south extent in degrees.
func (h *Heightmap) LatSize() float64 { return h.northEast.Lat() - h.southWest.Lat() }

// LonSize returns the east-west extent in degrees.
func (h *Heightmap) LonSize() float64 { return h.northEast.Lon() - h.southWest.Lon() }

// SealevelAdjust returns the altitude used for samples at or below zero.
func (h *Heightmap) SealevelAdjust() float32 { return h.sealevelAdjust }

// GetValue returns the altitude at lat/lon. With averaged set, the four
// surrounding samples are blended bilinearly; otherwise the nearest sample is
// used. Results at or below zero mean "no data / sea level" and are replaced
// by SealevelAdjust.
func (h *Heightmap) GetValue(lat, lon float64, averaged bool) float32 {
	posX := (lon - h.southWest.Lon()) / h.LonSize() * float64(h.width)
	posY := (lat - h.southWest.Lat()) / h.LatSize() * float64(h.height)

	var v float32
	if averaged {
		minX, maxX, fracX := neighbours(posX)
		minY, maxY, fracY := neighbours(posY)

		ll := h.GetRawValue(minX, minY)
		lr := h.GetRawValue(maxX, minY)
		ur := h.GetRawValue(maxX, maxY)
		ul := h.GetRawValue(minX, maxY)

		bottom := lerp(ll, lr, fracX)
		top := lerp(ul, ur, fracX)
		v = lerp(bottom, top, fracY)
	} else {
		v = h.GetRawValue(int(math.RoundToEven(posX)), int(math.RoundToEven(posY)))
	}

	if v > 0 {
		return v
	}
	return h.sealevelAdjust
}

// neighbours returns the two sample indices around pos and the fractional
// offset between them. Whole or negative positions collapse onto a single
// index truncated toward zero.
func neighbours(pos float64) (lo, hi int, frac float32) {
	f := math.Mod(pos, 1)
	if f > 0 {
		return int(math.Floor(pos)), int(math.Ceil(pos)), float32(f)
	}
	return int(pos), int(pos), float32(f)
}

// GetRawValue returns the stored altitude at sample (x, y). Coordinates
// outside the grid return 0, which GetValue treats as sea level, so edge
// sampling never fails.
func (h *Heightmap) GetRawValue(x, y int) float32 {
	if x < 0 || y < 0 || x >= h.width || y >= h.height {
		return 0
	}
	return h.values[y*h.width+x]
}

// Range returns the lowest and highest stored altitude.
func (h *Heightmap) Range() (lo, hi float32) {
	return slices.Min(h.values), slices.Max(h.values)
}

// lerp interpolates between a and b with t clamped to [0, 1].
func lerp(a, b, t float32) float32 {
	t = min(max(t, 0), 1)
	return a + (b-a)*t
}
