package geo

import "github.com/go-gl/mathgl/mgl64"

// StandardGravity is the default surface gravity in m/s².
const StandardGravity = 9.81

// Gravity is the planet's gravity service. One instance is created at
// setup time and handed to whatever needs it.
type Gravity struct {
	Strength float64
}

// NewGravity returns a Gravity with the given strength, or StandardGravity
// when strength is not positive.
func NewGravity(strength float64) *Gravity {
	if strength <= 0 {
		strength = StandardGravity
	}
	return &Gravity{Strength: strength}
}

// At returns the gravity vector at a world position. A nil receiver uses
// StandardGravity.
func (g *Gravity) At(pos mgl64.Vec3) mgl64.Vec3 {
	strength := StandardGravity
	if g != nil {
		strength = g.Strength
	}
	if pos.Len() == 0 {
		return mgl64.Vec3{}
	}
	return pos.Normalize().Mul(-strength)
}

// Frame returns the local up and north unit vectors at a world position.
func (g *Gravity) Frame(pos mgl64.Vec3) (up, north mgl64.Vec3) {
	up = pos.Normalize()
	return up, NorthVector(up)
}
