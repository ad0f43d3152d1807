package streaming

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/paulmach/orb"
)

// DefaultFilenamePrefix matches ASTER GDEM tile names such as
// "ASTGTMV003_N46E007_dem".
const DefaultFilenamePrefix = "AST"

const originPattern = `.*(?P<lat>(N|S)\d{2})(?P<lon>(E|W)\d{3})(_dem)?`

// ParseOrigin extracts the integer-degree south-west origin encoded in a
// raster name. The returned point is X = lon, Y = lat.
func ParseOrigin(prefix, name string) (orb.Point, error) {
	if prefix == "" {
		prefix = DefaultFilenamePrefix
	}
	re, err := regexp.Compile(regexp.QuoteMeta(prefix) + originPattern)
	if err != nil {
		return orb.Point{}, err
	}

	m := re.FindStringSubmatch(name)
	if m == nil {
		return orb.Point{}, fmt.Errorf("%w: %q", ErrNoOrigin, name)
	}
	latStr := m[re.SubexpIndex("lat")]
	lonStr := m[re.SubexpIndex("lon")]

	lat, err := strconv.Atoi(latStr[1:])
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrNoOrigin, name, err)
	}
	lon, err := strconv.Atoi(lonStr[1:])
	if err != nil {
		return orb.Point{}, fmt.Errorf("%w: %q: %v", ErrNoOrigin, name, err)
	}

	if latStr[0] == 'S' {
		lat = -lat
	}
	if lonStr[0] == 'W' {
		lon = -lon
	}
	return orb.Point{float64(lon), float64(lat)}, nil
}
