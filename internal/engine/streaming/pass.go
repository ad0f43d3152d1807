package streaming

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/demstream/internal/engine/terrain"
	"github.com/Faultbox/demstream/internal/engine/tile"
)

// pairResult is the per-pair slot a worker writes during a pass.
type pairResult struct {
	land  error
	ocean error
}

// workers returns the number of goroutines for a pass over n pairs.
func (s *Scheduler) workers(n int) int {
	if !s.settings.BuildAsync {
		return 1
	}
	nprocs := s.settings.Workers
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	return max(min(nprocs, n), 1)
}

// passLocked builds every pair with the published heightmap. s.mu must be
// held. Failed tiles keep their previous mesh and are reported, never
// returned early.
func (s *Scheduler) passLocked(dynamic bool) Report {
	start := time.Now()
	hm := s.heightmap.Load()
	n := len(s.pairs)
	results := make([]pairResult, n)

	var done atomic.Int64
	build := func(i int) {
		p := s.pairs[i]
		dist := p.Land.WorldCenter().Sub(s.viewer).Len()

		res := s.settings.Resolution
		if dynamic {
			res = s.lod.Resolve(dist)
		}

		results[i].land = buildTile(p.Land, hm, res)
		results[i].ocean = buildTile(p.Ocean, hm, res)

		p.Resolution = res
		p.Distance = dist
		p.Visible = !s.lod.Hidden(dist)
		p.LandMesh = p.Land.Mesh()
		p.OceanMesh = p.Ocean.Mesh()

		if s.progress != nil {
			s.progress(int(done.Add(1)), n)
		}
	}

	nprocs := s.workers(n)
	if nprocs == 1 {
		for i := range n {
			build(i)
		}
	} else {
		var wg sync.WaitGroup
		wg.Add(nprocs)
		for pp := range nprocs {
			go func(pp int) {
				defer wg.Done()
				for i := pp; i < n; i += nprocs {
					build(i)
				}
			}(pp)
		}
		wg.Wait()
	}

	r := Report{Tiles: n}
	for i, res := range results {
		r.add(i, tile.KindLand, res.land, s.log)
		r.add(i, tile.KindOcean, res.ocean, s.log)
		if !s.pairs[i].Visible {
			r.Hidden++
		}
	}
	r.Duration = time.Since(start)

	s.log.Debug("build pass complete",
		zap.Int("tiles", r.Tiles),
		zap.Int("built", r.Built),
		zap.Int("failed", r.Failed),
		zap.Int("hidden", r.Hidden),
		zap.Bool("dynamic", dynamic),
		zap.Int("workers", nprocs),
		zap.Duration("took", r.Duration))
	return r
}

// buildTile runs b.Build, turning a panic into ErrTilePanic.
func buildTile(b TileBuilder, hm *terrain.Heightmap, res int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTilePanic, r)
		}
	}()
	return b.Build(hm, res)
}

func (r *Report) add(index int, kind tile.Kind, err error, log *zap.Logger) {
	if err == nil {
		r.Built++
		return
	}
	r.Failed++
	te := &TileError{Index: index, Kind: kind, Err: err}
	r.Err = multierr.Append(r.Err, te)
	log.Warn("tile build failed", zap.Int("tile", index), zap.Stringer("kind", kind), zap.Error(err))
}
