package terrain

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"golang.org/x/image/tiff"

	"github.com/Faultbox/demstream/pkg/ramp"
)

// createRampRaster encodes ts (row-major, row 0 south) with the four step ramp.
func createRampRaster(width, height int, ts []float32) *Raster {
	r := NewRaster("test", width, height)
	for i, t := range ts {
		c := ramp.Encode4(t)
		r.Pix[i] = Pixel{R: c.R, G: c.G, B: c.B, A: 1}
	}
	return r
}

func testParams() Params {
	return Params{
		Steps:          ramp.FourStep,
		SouthWest:      orb.Point{0, 0},
		NorthEast:      orb.Point{2, 2},
		MinAltitude:    0,
		MaxAltitude:    1000,
		SealevelAdjust: -5,
	}
}

func createTestHeightmap(t *testing.T) *Heightmap {
	t.Helper()
	hm, err := New(2, 2, []float32{10, 20, 30, 40}, orb.Point{0, 0}, orb.Point{2, 2}, -5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return hm
}

func TestBuild(t *testing.T) {
	r := createRampRaster(3, 2, []float32{0.05, 0.1, 0.2, 0.4, 0.6, 0.9})

	hm, err := Build(r, testParams())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if hm.Width() != 3 || hm.Height() != 2 {
		t.Fatalf("expected 3x2, got %dx%d", hm.Width(), hm.Height())
	}

	want := []float32{50, 100, 200, 400, 600, 900}
	for i, w := range want {
		got := hm.GetRawValue(i%3, i/3)
		if d := got - w; d > 0.01 || d < -0.01 {
			t.Errorf("value %d = %v, want %v", i, got, w)
		}
	}

	if hm.LatSize() != 2 || hm.LonSize() != 2 {
		t.Errorf("expected 2x2 degree box, got %vx%v", hm.LatSize(), hm.LonSize())
	}
}

func TestBuildInvalidColorAborts(t *testing.T) {
	r := createRampRaster(2, 2, []float32{0.1, 0.2, 0.3, 0.4})
	r.Set(1, 1, Pixel{R: 0.5, G: 0.5, B: 0.5, A: 1})

	var diag bytes.Buffer
	p := testParams()
	p.Diagnostics = &diag

	hm, err := Build(r, p)
	if !errors.Is(err, ramp.ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
	if hm != nil {
		t.Error("expected no heightmap after a decode failure")
	}
	if !strings.Contains(err.Error(), "(1, 1)") {
		t.Errorf("error should name the pixel: %v", err)
	}
}

func TestBuildUnsupportedSteps(t *testing.T) {
	r := createRampRaster(1, 1, []float32{0.5})
	p := testParams()
	p.Steps = 7

	if _, err := Build(r, p); !errors.Is(err, ramp.ErrUnsupportedSteps) {
		t.Errorf("expected ErrUnsupportedSteps, got %v", err)
	}
}

func TestBuildInvalidInput(t *testing.T) {
	if _, err := Build(NewRaster("empty", 0, 0), testParams()); !errors.Is(err, ErrEmptyRaster) {
		t.Errorf("expected ErrEmptyRaster, got %v", err)
	}

	p := testParams()
	p.NorthEast = orb.Point{2, -1}
	if _, err := Build(createRampRaster(1, 1, []float32{0.5}), p); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("expected ErrInvalidBounds, got %v", err)
	}

	r := createRampRaster(2, 1, []float32{0.5, 0.5})
	r.Pix = r.Pix[:1]
	if _, err := Build(r, testParams()); !errors.Is(err, ErrValueCount) {
		t.Errorf("expected ErrValueCount, got %v", err)
	}
}

func TestBuildDiagnostics(t *testing.T) {
	// Black sits at the top of the ramp.
	r := createRampRaster(2, 2, []float32{0, 0.25, 0.5, 0.75})

	var diag bytes.Buffer
	p := testParams()
	p.Diagnostics = &diag

	if _, err := Build(r, p); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(diag.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 diagnostic rows, got %d: %q", len(lines), diag.String())
	}
	if lines[0] != "1000,250" || lines[1] != "500,750" {
		t.Errorf("unexpected diagnostic rows: %q", lines)
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestBuildDiagnosticsFailureIgnored(t *testing.T) {
	r := createRampRaster(2, 3, []float32{0, 0.1, 0.2, 0.3, 0.4, 0.5})

	w := &failingWriter{}
	p := testParams()
	p.Diagnostics = w

	hm, err := Build(r, p)
	if err != nil {
		t.Fatalf("diagnostic failure must not abort the build: %v", err)
	}
	if hm == nil {
		t.Fatal("expected a heightmap")
	}
	if w.calls != 1 {
		t.Errorf("expected diagnostics to stop after the first failure, got %d writes", w.calls)
	}
}

func TestGetValueSealevel(t *testing.T) {
	hm, err := New(2, 2, []float32{0, 20, 30, -12}, orb.Point{0, 0}, orb.Point{2, 2}, -5)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := hm.GetValue(0, 0, false); got != -5 {
		t.Errorf("zero cell = %v, want SealevelAdjust -5", got)
	}
	if got := hm.GetValue(0, 0, true); got != -5 {
		t.Errorf("averaged zero cell = %v, want SealevelAdjust -5", got)
	}
	if got := hm.GetValue(1, 1, false); got != -5 {
		t.Errorf("negative cell = %v, want SealevelAdjust -5", got)
	}
}

func TestGetValueNearest(t *testing.T) {
	hm := createTestHeightmap(t)

	tests := []struct {
		name     string
		lat, lon float64
		want     float32
	}{
		{"origin", 0, 0, 10},
		{"half rounds to even", 0, 0.5, 10},
		{"east neighbour", 0, 0.6, 20},
		{"north-east", 1.4, 0.6, 40},
		{"past east edge", 0, 1.5, -5},
		{"south of box", -3, 0, -5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hm.GetValue(tc.lat, tc.lon, false); got != tc.want {
				t.Errorf("GetValue(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

func TestGetValueAveraged(t *testing.T) {
	hm := createTestHeightmap(t)

	if got := hm.GetValue(0.5, 0.5, true); got != 25 {
		t.Errorf("centre = %v, want 25", got)
	}
	if got := hm.GetValue(0, 0.25, true); got != 12.5 {
		t.Errorf("south edge = %v, want 12.5", got)
	}
	if got := hm.GetValue(1, 1, true); got != 40 {
		t.Errorf("whole sample = %v, want 40", got)
	}
}

func TestGetRawValueOutOfRange(t *testing.T) {
	hm := createTestHeightmap(t)

	for _, c := range [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {100, 100}, {-5, -5}} {
		if got := hm.GetRawValue(c[0], c[1]); got != 0 {
			t.Errorf("GetRawValue(%d, %d) = %v, want 0", c[0], c[1], got)
		}
	}
}

func TestNewCopiesValues(t *testing.T) {
	values := []float32{1, 2, 3, 4}
	hm, err := New(2, 2, values, orb.Point{0, 0}, orb.Point{1, 1}, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	values[0] = 99
	if hm.GetRawValue(0, 0) != 1 {
		t.Error("heightmap shares caller storage")
	}

	lo, hi := hm.Range()
	if lo != 1 || hi != 4 {
		t.Errorf("Range() = %v, %v", lo, hi)
	}
}

func TestWriteCSV(t *testing.T) {
	hm := createTestHeightmap(t)

	var buf bytes.Buffer
	if err := hm.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if got := buf.String(); got != "10,20\n30,40\n" {
		t.Errorf("WriteCSV() = %q", got)
	}
}

func createRampImage() *image.NRGBA {
	// Top row (north) is blue, bottom row (south) is red.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, A: 255})
	return img
}

func TestRasterFromImageFlipsRows(t *testing.T) {
	r := RasterFromImage("flip", createRampImage())

	if r.At(0, 0).R != 1 || r.At(0, 0).B != 0 {
		t.Errorf("row 0 should be the southern (red) row, got %+v", r.At(0, 0))
	}
	if r.At(1, 1).B != 1 {
		t.Errorf("row 1 should be the northern (blue) row, got %+v", r.At(1, 1))
	}
}

func TestLoadRaster(t *testing.T) {
	dir := t.TempDir()

	pngPath := filepath.Join(dir, "ASTGTMV003_N46E007_dem.png")
	f, err := os.Create(pngPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, createRampImage()); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	f.Close()

	tifPath := filepath.Join(dir, "ramp.tif")
	f, err = os.Create(tifPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := tiff.Encode(f, createRampImage(), nil); err != nil {
		t.Fatalf("encode tiff: %v", err)
	}
	f.Close()

	for _, path := range []string{pngPath, tifPath} {
		r, err := LoadRaster(path)
		if err != nil {
			t.Fatalf("LoadRaster(%s) failed: %v", path, err)
		}
		if r.Width != 2 || r.Height != 2 {
			t.Errorf("%s: expected 2x2, got %dx%d", path, r.Width, r.Height)
		}
		if r.At(0, 0).R != 1 {
			t.Errorf("%s: expected red south-west pixel, got %+v", path, r.At(0, 0))
		}
	}

	r, _ := LoadRaster(pngPath)
	if r.Name != "ASTGTMV003_N46E007_dem" {
		t.Errorf("unexpected raster name %q", r.Name)
	}

	if _, err := LoadRaster(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
}
