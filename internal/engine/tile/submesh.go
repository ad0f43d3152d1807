package tile

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/demstream/internal/engine/geo"
	"github.com/Faultbox/demstream/internal/engine/terrain"
)

// altitudeFunc returns the surface altitude of a tile variant at lat/lon.
type altitudeFunc func(hm *terrain.Heightmap, lat, lon float64, averaged bool) float32

var altitudeFuncs = [kindCount]altitudeFunc{
	KindLand:  landAltitude,
	KindOcean: oceanAltitude,
}

var needsHeightmap = [kindCount]bool{
	KindLand: true,
}

func landAltitude(hm *terrain.Heightmap, lat, lon float64, averaged bool) float32 {
	return hm.GetValue(lat, lon, averaged)
}

// oceanAltitude keeps ocean tiles flat on the reference sphere.
func oceanAltitude(*terrain.Heightmap, float64, float64, bool) float32 {
	return 0
}

// Option configures a Submesh.
type Option func(*Submesh)

// WithAveraged selects bilinear (true) or nearest (false) heightmap sampling.
func WithAveraged(averaged bool) Option {
	return func(s *Submesh) { s.averaged = averaged }
}

// Submesh is the default tile builder: it samples a resolution x resolution
// grid across its footprint, drapes it over the sphere and triangulates it.
//
// Init must be called before Build. Build may run concurrently with Build
// calls on other submeshes; Mesh may be read at any time.
type Submesh struct {
	kind     Kind
	name     string
	averaged bool

	offset mgl64.Vec3
	size   mgl64.Vec3
	proj   *geo.Projection
	center mgl64.Vec3

	mesh atomic.Pointer[Mesh]
}

// New creates an uninitialized submesh of the given kind.
func New(kind Kind, index int, opts ...Option) *Submesh {
	s := &Submesh{
		kind:     kind,
		name:     fmt.Sprintf("%s_%d", kind, index),
		averaged: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the tile variant.
func (s *Submesh) Kind() Kind { return s.kind }

// Name returns the mesh name, e.g. "Land_12".
func (s *Submesh) Name() string { return s.name }

// Init places the submesh. offset is the local tangent-plane position of the
// south-west corner (X radial, Y east, Z north, metres) and size the
// footprint extent along the same axes.
func (s *Submesh) Init(offset, size mgl64.Vec3, proj *geo.Projection) {
	s.offset = offset
	s.size = size
	s.proj = proj
	s.center = proj.Project(offset.Add(mgl64.Vec3{0, size.Y() / 2, size.Z() / 2}))
	s.mesh.Store(nil)
}

// WorldCenter returns the world position of the footprint centre on the
// tangent plane.
func (s *Submesh) WorldCenter() mgl64.Vec3 { return s.center }

// Mesh returns the last successfully built mesh, or nil.
func (s *Submesh) Mesh() *Mesh { return s.mesh.Load() }

// Build samples hm across the footprint and replaces the current mesh. On
// error the previous mesh is kept. The result depends only on hm, the
// footprint and resolution.
func (s *Submesh) Build(hm *terrain.Heightmap, resolution int) error {
	if s.proj == nil {
		return ErrNotInitialized
	}
	if !s.kind.Valid() {
		return fmt.Errorf("tile: unknown kind %d", s.kind)
	}
	if resolution < 2 {
		return fmt.Errorf("%w: got %d", ErrResolution, resolution)
	}
	if needsHeightmap[s.kind] && hm == nil {
		return ErrNoHeightmap
	}

	altitude := altitudeFuncs[s.kind]
	unit := geo.Sphere{Radius: 1}
	baseRadius := s.offset.X()
	step := float64(resolution - 1)

	positions := make([]mgl64.Vec3, resolution*resolution)
	for j := range resolution {
		north := s.size.Z() * float64(j) / step
		for i := range resolution {
			east := s.size.Y() * float64(i) / step
			dir := s.proj.Project(s.offset.Add(mgl64.Vec3{0, east, north})).Normalize()

			ll, _ := unit.CartesianToLatLon(dir)
			alt := altitude(hm, ll.Lat(), ll.Lon(), s.averaged)
			positions[j*resolution+i] = dir.Mul(baseRadius + float64(alt))
		}
	}

	mesh := &Mesh{
		Name:       s.name,
		Origin:     s.center,
		Resolution: resolution,
		Vertices:   make([]Vertex, len(positions)),
		Indices:    make([]uint32, 0, (resolution-1)*(resolution-1)*6),
		Bounds: Bounds{
			Min: [3]float32{1e30, 1e30, 1e30},
			Max: [3]float32{-1e30, -1e30, -1e30},
		},
	}

	for j := range resolution {
		for i := range resolution {
			rel := positions[j*resolution+i].Sub(s.center)
			pos := [3]float32{float32(rel.X()), float32(rel.Y()), float32(rel.Z())}
			updateBounds(&mesh.Bounds, pos)

			mesh.Vertices[j*resolution+i] = Vertex{
				Position: pos,
				Normal:   gridNormal(positions, resolution, i, j),
				TexCoord: [2]float32{float32(float64(i) / step), float32(float64(j) / step)},
			}
		}
	}

	// Two triangles per quad, corners BL, BR, TL, TR.
	for j := range resolution - 1 {
		for i := range resolution - 1 {
			bl := uint32(j*resolution + i)
			br := bl + 1
			tl := bl + uint32(resolution)
			tr := tl + 1
			mesh.Indices = append(mesh.Indices,
				bl, br, tl,
				tl, br, tr,
			)
		}
	}

	s.mesh.Store(mesh)
	return nil
}

// gridNormal estimates the surface normal at grid point (i, j) from its
// neighbours, pointing away from the planet.
func gridNormal(positions []mgl64.Vec3, res, i, j int) [3]float32 {
	at := func(i, j int) mgl64.Vec3 {
		i = min(max(i, 0), res-1)
		j = min(max(j, 0), res-1)
		return positions[j*res+i]
	}

	dEast := at(i+1, j).Sub(at(i-1, j))
	dNorth := at(i, j+1).Sub(at(i, j-1))
	n := dNorth.Cross(dEast)

	up := positions[j*res+i].Normalize()
	if n.Len() < 1e-9 {
		n = up
	} else if n.Dot(up) < 0 {
		n = n.Mul(-1)
	}

	v := mgl32.Vec3{float32(n.X()), float32(n.Y()), float32(n.Z())}.Normalize()
	return [3]float32(v)
}

func updateBounds(b *Bounds, p [3]float32) {
	for k := range 3 {
		b.Min[k] = min(b.Min[k], p[k])
		b.Max[k] = max(b.Max[k], p[k])
	}
}
