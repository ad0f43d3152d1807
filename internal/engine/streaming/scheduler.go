package streaming

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/Faultbox/demstream/internal/engine/geo"
	"github.com/Faultbox/demstream/internal/engine/lod"
	"github.com/Faultbox/demstream/internal/engine/terrain"
	"github.com/Faultbox/demstream/internal/engine/tile"
)

// DiagnosticsFile is the name of the heightmap dump in the output directory.
const DiagnosticsFile = "heightmap.csv"

// Options carries the collaborators of a Scheduler. Zero values select the
// defaults.
type Options struct {
	Logger  *zap.Logger
	Sphere  geo.Sphere
	Gravity *geo.Gravity
	LOD     *lod.Table
	NewTile TileFactory

	// Progress is called after each pair of a pass is built. It may be
	// called from several goroutines at once.
	Progress func(done, total int)

	// OnTick receives the report of every tick that triggered a rebuild.
	OnTick func(Report)
}

// GridOptions controls a full grid build.
type GridOptions struct {
	Preview           bool // Lay out tiles without building meshes
	DynamicResolution bool // Pick resolutions from the LOD table
	SkipHeightmap     bool // Reuse the published heightmap
}

// Scheduler owns the heightmap and the tile grid. All passes and heightmap
// regenerations are serialized; tiles within a pass build independently.
type Scheduler struct {
	mu sync.Mutex

	settings Settings
	log      *zap.Logger
	sphere   geo.Sphere
	gravity  *geo.Gravity
	newTile  TileFactory
	progress func(done, total int)
	onTick   func(Report)

	lod       lod.Table
	raster    *terrain.Raster
	southWest orb.Point
	northEast orb.Point
	heightmap atomic.Pointer[terrain.Heightmap]

	pairs     []*Pair
	proj      *geo.Projection
	viewer    mgl64.Vec3
	countdown int
	state     State
}

// New creates a scheduler in the Uninitialized state.
func New(settings Settings, opts Options) *Scheduler {
	s := &Scheduler{
		settings:  settings,
		log:       opts.Logger,
		sphere:    opts.Sphere,
		gravity:   opts.Gravity,
		newTile:   opts.NewTile,
		progress:  opts.Progress,
		onTick:    opts.OnTick,
		southWest: settings.SouthWest,
		northEast: settings.NorthEast,
		countdown: 1,
	}

	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.sphere.Radius <= 0 {
		s.sphere = geo.Earth()
	}
	if s.gravity == nil {
		s.gravity = geo.NewGravity(geo.StandardGravity)
	}
	if s.newTile == nil {
		averaged := settings.Averaged
		s.newTile = func(kind tile.Kind, index int) TileBuilder {
			return tile.New(kind, index, tile.WithAveraged(averaged))
		}
	}
	if opts.LOD != nil {
		s.lod = opts.LOD.Clone()
		s.lod.Sort()
	} else {
		s.lod = lod.DefaultTable()
	}

	return s
}

// Settings returns the scheduler parameters.
func (s *Scheduler) Settings() Settings { return s.settings }

// Sphere returns the planet model.
func (s *Scheduler) Sphere() geo.Sphere { return s.sphere }

// Gravity returns the gravity source used by the streamed area.
func (s *Scheduler) Gravity() *geo.Gravity { return s.gravity }

// State returns the lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Heightmap returns the published heightmap, or nil.
func (s *Scheduler) Heightmap() *terrain.Heightmap {
	return s.heightmap.Load()
}

// Bounds returns the current heightmap bounding box.
func (s *Scheduler) Bounds() (sw, ne orb.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.southWest, s.northEast
}

// Center returns the middle of the bounding box, where the tangent plane is
// anchored.
func (s *Scheduler) Center() orb.Point {
	sw, ne := s.Bounds()
	return orb.Point{(sw.Lon() + ne.Lon()) / 2, (sw.Lat() + ne.Lat()) / 2}
}

// Altitude samples the published heightmap.
func (s *Scheduler) Altitude(p orb.Point) (float32, error) {
	hm := s.heightmap.Load()
	if hm == nil {
		return 0, ErrNoHeightmap
	}
	return hm.GetValue(p.Lat(), p.Lon(), s.settings.Averaged), nil
}

// SetRaster replaces the source raster. It takes effect on the next
// heightmap regeneration.
func (s *Scheduler) SetRaster(r *terrain.Raster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.raster = r
}

// SetLOD installs a copy of t, sorted by range.
func (s *Scheduler) SetLOD(t lod.Table) {
	t = t.Clone()
	t.Sort()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lod = t
}

// LOD returns a copy of the LOD table.
func (s *Scheduler) LOD() lod.Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lod.Clone()
}

// SetViewer moves the viewer to lat/lon (degrees) at alt metres.
func (s *Scheduler) SetViewer(lat, lon, alt float64) {
	s.SetViewerPosition(s.sphere.LatLonToCartesian(orb.Point{lon, lat}, alt))
}

// SetViewerPosition moves the viewer to a world position.
func (s *Scheduler) SetViewerPosition(pos mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewer = pos
}

// Viewer returns the viewer world position.
func (s *Scheduler) Viewer() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewer
}

// Projection returns the tangent plane of the current grid, or nil.
func (s *Scheduler) Projection() *geo.Projection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proj
}

// Pairs returns a snapshot of the grid.
func (s *Scheduler) Pairs() []Pair {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Pair, len(s.pairs))
	for i, p := range s.pairs {
		out[i] = *p
	}
	return out
}

// EstimateMapSize measures the current bounding box.
func (s *Scheduler) EstimateMapSize() MapEstimate {
	sw, ne := s.Bounds()
	return EstimateBox(s.sphere, sw, ne)
}

// RegenerateHeightmap rebuilds the heightmap from the source raster and
// publishes it. On failure the previous heightmap, bounds and state stay.
func (s *Scheduler) RegenerateHeightmap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regenerateLocked()
}

func (s *Scheduler) regenerateLocked() error {
	if s.raster == nil {
		return ErrNoRaster
	}

	sw, ne := s.southWest, s.northEast
	if s.settings.Format == FormatASTER {
		origin, err := ParseOrigin(s.settings.FilenamePrefix, s.raster.Name)
		if err != nil {
			s.log.Warn("keeping previous heightmap bounds",
				zap.String("raster", s.raster.Name),
				zap.Error(err))
		} else {
			span := s.settings.TileSpanDegrees
			sw = origin
			ne = orb.Point{origin.Lon() + span, origin.Lat() + span}
		}
	}

	s.log.Info("generating heightmap",
		zap.String("raster", s.raster.Name),
		zap.Int("width", s.raster.Width),
		zap.Int("height", s.raster.Height))

	var diag io.Writer
	if s.settings.HeightmapDump {
		if f, err := s.createDump(); err != nil {
			s.log.Warn("heightmap dump disabled", zap.Error(err))
		} else {
			defer f.Close()
			diag = f
		}
	}

	start := time.Now()
	hm, err := terrain.Build(s.raster, terrain.Params{
		Steps:          s.settings.Steps,
		SouthWest:      sw,
		NorthEast:      ne,
		MinAltitude:    s.settings.MinAltitude,
		MaxAltitude:    s.settings.MaxAltitude,
		SealevelAdjust: s.settings.SealevelAdjust,
		Diagnostics:    diag,
	})
	if err != nil {
		return fmt.Errorf("regenerating heightmap: %w", err)
	}

	s.southWest, s.northEast = sw, ne
	s.heightmap.Store(hm)
	if s.state < StateHeightmapReady {
		s.state = StateHeightmapReady
	}

	lo, hi := hm.Range()
	s.log.Info("heightmap ready",
		zap.Any("south_west", sw),
		zap.Any("north_east", ne),
		zap.Float32("min", lo),
		zap.Float32("max", hi),
		zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Scheduler) createDump() (*os.File, error) {
	if err := os.MkdirAll(s.settings.OutputDir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(s.settings.OutputDir, DiagnosticsFile))
}

// BuildGrid allocates a new grid over the configured area and, unless
// previewing, builds every tile. A heightmap regeneration failure leaves the
// previous grid in place.
func (s *Scheduler) BuildGrid(opts GridOptions) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.settings
	vert, horz, err := TileCounts(st.AreaX, st.AreaY, st.KmPerSubmesh)
	if err != nil {
		return Report{}, err
	}
	if !Covered(st.AreaX, st.AreaY, st.KmPerSubmesh, vert, horz) {
		s.log.Warn("tile grid does not cover the area",
			zap.Int("area_x_km", st.AreaX),
			zap.Int("area_y_km", st.AreaY),
			zap.Int("rows", vert),
			zap.Int("columns", horz))
	}

	n := vert * horz
	s.log.Info("allocating submeshes", zap.Int("rows", vert), zap.Int("columns", horz), zap.Int("count", n))

	pairs := make([]*Pair, n)
	for i := range pairs {
		pairs[i] = &Pair{
			Index: i,
			Land:  s.newTile(tile.KindLand, i),
			Ocean: s.newTile(tile.KindOcean, i),
		}
	}

	if opts.SkipHeightmap {
		s.log.Debug("skipping heightmap regeneration")
	} else if err := s.regenerateLocked(); err != nil {
		return Report{}, err
	}

	center := orb.Point{
		(s.southWest.Lon() + s.northEast.Lon()) / 2,
		(s.southWest.Lat() + s.northEast.Lat()) / 2,
	}
	proj := s.sphere.AnchorTangentPlane(center, s.sphere.Radius)
	radius := s.sphere.Radius + st.CenterAltitudeOffset

	for i, fp := range layout(st.AreaX, st.AreaY, st.KmPerSubmesh, n, radius) {
		pairs[i].Land.Init(fp.Offset, fp.Size, proj)
		pairs[i].Ocean.Init(fp.Offset, fp.Size, proj)
	}

	s.pairs = pairs
	s.proj = proj
	s.state = StateGridBuilt

	if opts.Preview {
		return Report{Tiles: n}, nil
	}
	return s.passLocked(opts.DynamicResolution), nil
}

// RebuildMeshes rebuilds every tile of the existing grid with the published
// heightmap, then updates visibility and the rendered meshes.
func (s *Scheduler) RebuildMeshes(dynamic bool) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pairs == nil {
		return Report{Err: ErrGridNotBuilt}
	}
	return s.passLocked(dynamic)
}

// Tick advances the rebuild countdown. A tick that finds the countdown
// exhausted resets it to RebuildInterval and rebuilds the grid; the first
// such rebuild enters the Streaming state.
func (s *Scheduler) Tick() (Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fire := s.countdown <= 0
	s.countdown--
	if !fire {
		return Report{}, false
	}
	s.countdown = s.settings.RebuildInterval

	if s.pairs == nil {
		s.log.Debug("rebuild skipped", zap.Error(ErrGridNotBuilt))
		return Report{Err: ErrGridNotBuilt}, true
	}

	r := s.passLocked(s.settings.DynamicResolution)
	s.state = StateStreaming
	return r, true
}

// Run calls Tick for every value received from ticks until ctx is done or
// ticks is closed. Tile failures never stop the loop.
func (s *Scheduler) Run(ctx context.Context, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if r, fired := s.Tick(); fired && s.onTick != nil {
				s.onTick(r)
			}
		}
	}
}
