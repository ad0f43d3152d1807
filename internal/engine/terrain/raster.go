package terrain

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
)

// NewRaster allocates an empty width x height raster.
func NewRaster(name string, width, height int) *Raster {
	return &Raster{
		Name:   name,
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}
}

// At returns the pixel at (x, y). Coordinates must be in range.
func (r *Raster) At(x, y int) Pixel {
	return r.Pix[y*r.Width+x]
}

// Set stores p at (x, y). Coordinates must be in range.
func (r *Raster) Set(x, y int, p Pixel) {
	r.Pix[y*r.Width+x] = p
}

// RasterFromImage converts img into a raster. Image rows run top to bottom,
// so they are flipped to put the southern edge in row 0. Channels are
// quantized to 8 bits, matching how ramp textures are stored.
func RasterFromImage(name string, img image.Image) *Raster {
	b := img.Bounds()
	r := NewRaster(name, b.Dx(), b.Dy())

	for y := range r.Height {
		srcY := b.Max.Y - 1 - y
		for x := range r.Width {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, srcY)).(color.NRGBA)
			r.Set(x, y, Pixel{
				R: float32(c.R) / 255,
				G: float32(c.G) / 255,
				B: float32(c.B) / 255,
				A: float32(c.A) / 255,
			})
		}
	}
	return r
}

// LoadRaster decodes an image file (PNG, JPEG, GIF, BMP or TIFF) into a
// raster named after the file without its extension.
func LoadRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s (%s): %w", path, format, ErrEmptyRaster)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return RasterFromImage(name, img), nil
}
