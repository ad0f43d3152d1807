package geo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
)

func TestLatLonToCartesian(t *testing.T) {
	s := Sphere{Radius: 6371000}

	tests := []struct {
		name string
		p    orb.Point
		want mgl64.Vec3
	}{
		{"north pole", orb.Point{0, 90}, mgl64.Vec3{0, 6371000, 0}},
		{"south pole", orb.Point{0, -90}, mgl64.Vec3{0, -6371000, 0}},
		{"equator prime meridian", orb.Point{0, 0}, mgl64.Vec3{6371000, 0, 0}},
		{"equator 90E", orb.Point{90, 0}, mgl64.Vec3{0, 0, 6371000}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.LatLonToCartesian(tc.p, 0)
			if got.Sub(tc.want).Len() > 1.0 {
				t.Errorf("LatLonToCartesian(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestCartesianRoundTrip(t *testing.T) {
	s := Earth()
	for _, p := range []orb.Point{{7.5, 46.2}, {-122.4, 37.7}, {151.2, -33.9}, {0, 0}} {
		v := s.LatLonToCartesian(p, 1200)
		got, alt := s.CartesianToLatLon(v)
		if math.Abs(got.Lon()-p.Lon()) > 1e-9 || math.Abs(got.Lat()-p.Lat()) > 1e-9 {
			t.Errorf("round trip %v = %v", p, got)
		}
		if math.Abs(alt-1200) > 1e-6 {
			t.Errorf("round trip altitude = %v, want 1200", alt)
		}
	}
}

func TestGreatCircleDistance(t *testing.T) {
	s := Earth()

	// One degree of longitude along the equator.
	got := s.GreatCircleDistance(orb.Point{0, 0}, orb.Point{1, 0})
	want := s.Radius * math.Pi / 180
	if math.Abs(got-want) > 1 {
		t.Errorf("GreatCircleDistance() = %v, want %v", got, want)
	}

	small := Sphere{Radius: s.Radius / 2}
	if d := small.GreatCircleDistance(orb.Point{0, 0}, orb.Point{1, 0}); math.Abs(d-want/2) > 1 {
		t.Errorf("half radius distance = %v, want %v", d, want/2)
	}
}

func TestTangentPlaneAnchor(t *testing.T) {
	s := Earth()
	center := orb.Point{10, 45}
	proj := s.AnchorTangentPlane(center, s.Radius)

	anchor := proj.Project(mgl64.Vec3{s.Radius, 0, 0})
	want := s.LatLonToCartesian(center, 0)
	if anchor.Sub(want).Len() > 1e-6 {
		t.Errorf("Project(anchor) = %v, want %v", anchor, want)
	}

	// A short step north along the plane moves the latitude up only.
	p, _ := s.CartesianToLatLon(proj.Project(mgl64.Vec3{s.Radius, 0, 1000}))
	if p.Lat() <= center.Lat() {
		t.Errorf("north step latitude = %v, want > %v", p.Lat(), center.Lat())
	}
	if math.Abs(p.Lon()-center.Lon()) > 1e-9 {
		t.Errorf("north step longitude = %v, want %v", p.Lon(), center.Lon())
	}

	p, _ = s.CartesianToLatLon(proj.Project(mgl64.Vec3{s.Radius, 1000, 0}))
	if p.Lon() <= center.Lon() {
		t.Errorf("east step longitude = %v, want > %v", p.Lon(), center.Lon())
	}
}

func TestGravity(t *testing.T) {
	g := NewGravity(0)
	if g.Strength != StandardGravity {
		t.Errorf("NewGravity(0).Strength = %v, want %v", g.Strength, StandardGravity)
	}

	pos := mgl64.Vec3{0, 0, 2 * EarthRadius}
	got := g.At(pos)
	if got.Sub(mgl64.Vec3{0, 0, -StandardGravity}).Len() > 1e-9 {
		t.Errorf("At() = %v", got)
	}

	up, north := g.Frame(mgl64.Vec3{EarthRadius, 0, 0})
	if up.Sub(mgl64.Vec3{1, 0, 0}).Len() > 1e-9 || north.Sub(mgl64.Vec3{0, 1, 0}).Len() > 1e-9 {
		t.Errorf("Frame() = %v, %v", up, north)
	}

	if n := NorthVector(mgl64.Vec3{0, 1, 0}); n != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("NorthVector(pole) = %v", n)
	}
}
