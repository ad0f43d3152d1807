package streaming

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"

	"github.com/Faultbox/demstream/internal/engine/geo"
)

// MaxPointEstimate is the largest acceptable PointEstimate.
const MaxPointEstimate = 65536

// MapEstimate holds the great-circle edge lengths of the heightmap box in
// metres.
type MapEstimate struct {
	North float64
	South float64
	East  float64
	West  float64
}

// EstimateBox measures the edges of the box spanned by sw and ne.
func EstimateBox(s geo.Sphere, sw, ne orb.Point) MapEstimate {
	nw := orb.Point{sw.Lon(), ne.Lat()}
	se := orb.Point{ne.Lon(), sw.Lat()}

	return MapEstimate{
		North: s.GreatCircleDistance(nw, ne),
		South: s.GreatCircleDistance(sw, se),
		East:  s.GreatCircleDistance(se, ne),
		West:  s.GreatCircleDistance(sw, nw),
	}
}

// PointEstimate is a rough vertex budget: four points per square km of the
// box, using the longer of the north and south edges.
func (e MapEstimate) PointEstimate() int {
	return int((e.West/1000)*(max(e.North, e.South)/1000)) * 4
}

// Acceptable reports whether the point estimate is within MaxPointEstimate.
func (e MapEstimate) Acceptable() bool {
	return e.PointEstimate() <= MaxPointEstimate
}

// Diagram renders the box with its edge lengths.
func (e MapEstimate) Diagram() string {
	west := fmt.Sprintf("%.0f", e.West)
	pad := strings.Repeat(" ", len(west)+1)
	side := pad + "  |         |  "

	verdict := "OK"
	if !e.Acceptable() {
		verdict = "TOO MANY POINTS!"
	}

	lines := []string{
		fmt.Sprintf("%s     %.0fm", pad, e.North),
		pad + " NW ------- NE ",
		side,
		fmt.Sprintf(" %sm |         | %.0fm", west, e.East),
		side,
		pad + " SW ------- SE ",
		fmt.Sprintf("%s     %.0fm", pad, e.South),
		fmt.Sprintf("Point estimate: %d, %s", e.PointEstimate(), verdict),
	}
	return strings.Join(lines, "\n")
}
