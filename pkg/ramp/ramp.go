// Package ramp inverts quantized color-ramp pixels back into the scalar
// fraction they encode.
package ramp

import (
	"errors"
	"fmt"
)

// Decode errors.
var (
	ErrUnsupportedSteps = errors.New("ramp: unsupported step count")
	ErrInvalidColor     = errors.New("ramp: color does not lie on the ramp")
)

// Supported step counts.
const (
	ThreeStep = 3
	FourStep  = 4
)

// Color is a normalized RGB sample, each channel in [0, 1].
type Color struct {
	R, G, B float32
}

// String returns the color as "(r, g, b)".
func (c Color) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", c.R, c.G, c.B)
}

// Decode returns the ramp position t in [0, 1] encoded by c.
func Decode(c Color, steps int) (float32, error) {
	switch steps {
	case ThreeStep:
		return decodeThree(c), nil
	case FourStep:
		return decodeFour(c)
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedSteps, steps)
	}
}

// decodeThree averages the channels. This is not a true inversion of a
// three band ramp; callers rely on the averaged value as is.
func decodeThree(c Color) float32 {
	return (c.R + c.G + c.B) / 3
}

// decodeFour inverts the four band ramp black -> red -> green -> blue -> black.
// In every band one channel is pinned at zero and t is recovered from the
// channel that moves linearly across the band.
//
//	band 0 [0.00, 0.25]  r rises,  g = 0, b = 0
//	band 1 [0.25, 0.50]  r falls,  g > 0, b = 0
//	band 2 [0.50, 0.75]  b rises,  g > 0, r = 0
//	band 3 [0.75, 1.00]  b falls,  g = 0, r = 0
//
// The blue bands are tested first, so black lands in band 3 and decodes to 1.
func decodeFour(c Color) (float32, error) {
	const n = FourStep
	if c.R < 0 || c.G < 0 || c.B < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidColor, c)
	}

	switch {
	case c.R == 0 && c.G == 0:
		return inverse(c.B, bound(3), bound(4), n, false), nil
	case c.R == 0:
		return inverse(c.B, bound(2), bound(3), n, true), nil
	case c.B == 0 && c.G == 0:
		return inverse(c.R, bound(0), bound(1), n, true), nil
	case c.B == 0:
		return inverse(c.R, bound(1), bound(2), n, false), nil
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidColor, c)
}

// bound returns the lower edge of band k of the four step ramp.
func bound(k int) float32 {
	return float32(k) / FourStep
}

// inverse maps channel value v back into the band [t0, t1] of a ramp with
// n bands. Ascending bands start at t0 when v is zero, descending bands
// start at t1.
func inverse(v, t0, t1 float32, n int, ascending bool) float32 {
	if ascending {
		return t0 + v/float32(n)
	}
	return t1 - v/float32(n)
}

// Encode4 returns the four step ramp color for t. t is clamped to [0, 1].
// The ramp is a closed loop, so t = 0 and t = 1 share black, which decodes
// to 1.
func Encode4(t float32) Color {
	const n = FourStep
	switch {
	case t <= 0:
		return Color{}
	case t <= bound(1):
		return Color{R: n * t}
	case t <= bound(2):
		return Color{R: n * (bound(2) - t), G: n * (t - bound(1))}
	case t <= bound(3):
		return Color{G: n * (bound(3) - t), B: n * (t - bound(2))}
	case t < 1:
		return Color{B: n * (1 - t)}
	default:
		return Color{}
	}
}
