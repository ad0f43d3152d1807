package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/Faultbox/demstream/internal/engine/streaming"
	"github.com/Faultbox/demstream/internal/engine/tile"
	"github.com/Faultbox/demstream/pkg/ramp"
)

// demoRasterName follows the ASTER GDEM naming so the box resolves to
// N46..47, E007..008.
const demoRasterName = "ASTGTMV003_N46E007_dem.png"

// exportOBJ writes every rendered mesh of the grid as OBJ.
func exportOBJ(s *streaming.Scheduler, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	var n int
	for _, p := range s.Pairs() {
		for _, m := range []*tile.Mesh{p.LandMesh, p.OceanMesh} {
			if m == nil {
				continue
			}
			if err := writeMesh(filepath.Join(dir, m.Name+".obj"), m); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func writeMesh(path string, m *tile.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteOBJ(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func cmdDemo(args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	const size = 256
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	// A single peak in the middle of the box, flattening to the lowest
	// non-black ramp step. Black would decode to the top of the ramp.
	const floor = 1.0 / (4 * 255)
	for y := range size {
		for x := range size {
			dx := float64(x)/size - 0.5
			dy := float64(y)/size - 0.5
			t := float32(math.Max(floor, 0.95-2*math.Hypot(dx, dy)))

			c := ramp.Encode4(t)
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(math.Round(float64(c.R) * 255)),
				G: uint8(math.Round(float64(c.G) * 255)),
				B: uint8(math.Round(float64(c.B) * 255)),
				A: 255,
			})
		}
	}

	path := filepath.Join(dir, demoRasterName)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %s (%dx%d)\n", path, size, size)
	return nil
}
