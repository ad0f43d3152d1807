// Package tile builds the mesh for one square patch of terrain conformed to
// the planet surface.
package tile

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Tile errors.
var (
	ErrNotInitialized = errors.New("tile: Build called before Init")
	ErrResolution     = errors.New("tile: resolution must be at least 2")
	ErrNoHeightmap    = errors.New("tile: land tile needs a heightmap")
)

// Kind discriminates the tile variants.
type Kind uint8

// Tile kinds.
const (
	KindLand Kind = iota
	KindOcean
	kindCount
)

var kindNames = [kindCount]string{
	KindLand:  "Land",
	KindOcean: "Ocean",
}

// String returns the kind name, also used as the mesh name prefix.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

// Vertex is a mesh vertex. Position is relative to Mesh.Origin.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Bounds is the axis-aligned box of the vertex positions.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh is the renderable output of a tile build. Meshes are never modified
// after Build returns them.
type Mesh struct {
	Name       string
	Origin     mgl64.Vec3 // World position the vertices are relative to
	Resolution int
	Vertices   []Vertex
	Indices    []uint32
	Bounds     Bounds
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}
