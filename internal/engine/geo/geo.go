// Package geo provides the spherical geodesy used to place terrain tiles:
// lat/lon to Cartesian conversion, great-circle distance and local tangent
// plane projections.
//
// World frame: origin at the planet centre, +Y towards the north pole,
// +X through lat 0 / lon 0 and +Z through lat 0 / lon 90E.
package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// EarthRadius is the default planet radius in metres.
const EarthRadius = orb.EarthRadius

// Sphere is a spherical planet model.
type Sphere struct {
	Radius float64
}

// Earth returns a Sphere with the default radius.
func Earth() Sphere {
	return Sphere{Radius: EarthRadius}
}

// LatLonToCartesian converts a point (X = lon, Y = lat, degrees) at
// altitude alt metres into world coordinates.
func (s Sphere) LatLonToCartesian(p orb.Point, alt float64) mgl64.Vec3 {
	lat := mgl64.DegToRad(p.Lat())
	lon := mgl64.DegToRad(p.Lon())
	r := s.Radius + alt
	cosLat := math.Cos(lat)

	return mgl64.Vec3{
		r * cosLat * math.Cos(lon),
		r * math.Sin(lat),
		r * cosLat * math.Sin(lon),
	}
}

// CartesianToLatLon converts a world position back into a lat/lon point and
// an altitude above the sphere.
func (s Sphere) CartesianToLatLon(v mgl64.Vec3) (orb.Point, float64) {
	r := v.Len()
	if r < 1e-10 {
		return orb.Point{}, -s.Radius
	}

	lat := mgl64.RadToDeg(math.Asin(v.Y() / r))
	lon := mgl64.RadToDeg(math.Atan2(v.Z(), v.X()))
	return orb.Point{lon, lat}, r - s.Radius
}

// GreatCircleDistance returns the surface distance between a and b in metres.
func (s Sphere) GreatCircleDistance(a, b orb.Point) float64 {
	// orb measures on its own Earth radius; rescale to this sphere.
	return geo.DistanceHaversine(a, b) * s.Radius / orb.EarthRadius
}

// AnchorTangentPlane returns the tangent plane touching the sphere of the
// given radius at center. The projection origin is the planet centre, so a
// local offset of (radius, 0, 0) lands on the anchor point itself.
func (s Sphere) AnchorTangentPlane(center orb.Point, radius float64) *Projection {
	up := Sphere{Radius: 1}.LatLonToCartesian(center, 0)
	lon := mgl64.DegToRad(center.Lon())
	east := mgl64.Vec3{-math.Sin(lon), 0, math.Cos(lon)}
	north := east.Cross(up).Normalize()

	return &Projection{
		Center: center,
		Radius: radius,
		Up:     up,
		East:   east,
		North:  north,
		basis:  mgl64.Mat3FromCols(up, east, north),
	}
}

// Projection maps local tangent plane offsets into world space.
// Local X is the distance from the planet centre along Up, local Y runs east
// and local Z runs north, all in metres.
type Projection struct {
	Center orb.Point
	Radius float64
	Up     mgl64.Vec3
	East   mgl64.Vec3
	North  mgl64.Vec3
	Origin mgl64.Vec3

	basis mgl64.Mat3
}

// Project converts a local offset into a world position.
func (p *Projection) Project(local mgl64.Vec3) mgl64.Vec3 {
	return p.basis.Mul3x1(local).Add(p.Origin)
}

// NorthVector returns the unit vector tangent to the sphere pointing north
// at the surface direction up. At the poles it falls back to +X.
func NorthVector(up mgl64.Vec3) mgl64.Vec3 {
	up = up.Normalize()
	pole := mgl64.Vec3{0, 1, 0}
	n := pole.Sub(up.Mul(up.Dot(pole)))
	if n.Len() < 1e-12 {
		return mgl64.Vec3{1, 0, 0}
	}
	return n.Normalize()
}
