// terrainctl builds and streams sphere-conformed terrain tiles from
// color-ramp heightmaps.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/Faultbox/demstream/internal/config"
	"github.com/Faultbox/demstream/internal/engine/geo"
	"github.com/Faultbox/demstream/internal/engine/streaming"
	"github.com/Faultbox/demstream/internal/engine/terrain"
	"github.com/Faultbox/demstream/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "check":
		err = withConfig(args, cmdCheck)
	case "build":
		err = withConfig(args, cmdBuild)
	case "stream":
		err = withConfig(args, cmdStream)
	case "init":
		err = cmdInit(args)
	case "demo":
		err = cmdDemo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sync()
}

func printUsage() {
	fmt.Println(`terrainctl - DEM terrain tiling and LOD streaming

Usage:
  terrainctl <command> [options]

Commands:
  check                 Show the heightmap box, point estimate and grid layout
  build                 Build every tile once (optionally export OBJ meshes)
  stream                Build, then rebuild on a fixed tick until interrupted
  init [path]           Write a default config file
  demo [dir]            Write a synthetic ASTER-named ramp raster

Options:
  -config <file>        Config file (default ./terrain.yaml or user config dir)
  -source <raster>      Heightmap raster (png, jpeg, gif, bmp, tiff)
  -format aster|generic How the bounding box is resolved
  -output <dir>         Output directory
  -resolution <n>       Static submesh resolution
  -dynamic              Pick resolutions from the LOD table
  -workers <n>          Build workers
  -sync                 Build tiles on one goroutine
  -obj                  Export meshes as OBJ
  -debug                Enable debug logging

Examples:
  terrainctl demo ./dem
  terrainctl check -source ./dem/ASTGTMV003_N46E007_dem.png
  terrainctl build -source ./dem/ASTGTMV003_N46E007_dem.png -obj
  terrainctl stream -config terrain.yaml -dynamic`)
}

// withConfig parses flags, loads config, sets up logging and runs fn.
func withConfig(args []string, fn func(*config.Config) error) error {
	if err := config.ParseFlags(args); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	return fn(cfg)
}

// newScheduler creates a scheduler for cfg and attaches the source raster.
func newScheduler(cfg *config.Config, opts streaming.Options) (*streaming.Scheduler, error) {
	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	opts.Logger = logger.Component("streaming")
	opts.Sphere = geo.Earth()
	opts.Gravity = geo.NewGravity(cfg.Gravity.Strength)
	opts.LOD = &cfg.LOD

	s := streaming.New(settings, opts)
	s.SetViewer(cfg.Viewer.Lat, cfg.Viewer.Lon, cfg.Viewer.Alt)
	if cfg.Source.Path == "" {
		return s, nil
	}

	r, err := terrain.LoadRaster(cfg.Source.Path)
	if err != nil {
		return nil, fmt.Errorf("loading source raster: %w", err)
	}
	s.SetRaster(r)
	return s, nil
}

// newProgress returns a progress callback sized for the configured grid.
func newProgress(cfg *config.Config) func(done, total int) {
	vert, horz, err := streaming.TileCounts(cfg.Area.SizeKm[0], cfg.Area.SizeKm[1], cfg.Tiles.KmPerSubmesh)
	if err != nil {
		return nil
	}
	bar := progressbar.NewOptions(vert*horz,
		progressbar.OptionSetDescription("building tiles"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
	)
	return func(done, total int) {
		_ = bar.Add(1)
	}
}

func cmdCheck(cfg *config.Config) error {
	s, err := newScheduler(cfg, streaming.Options{})
	if err != nil {
		return err
	}

	outDir, err := filepath.Abs(cfg.Output.Directory)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	fmt.Printf("Output:  %s\n", outDir)

	if cfg.Source.Path != "" {
		if err := s.RegenerateHeightmap(); err != nil {
			return err
		}
		hm := s.Heightmap()
		lo, hi := hm.Range()
		fmt.Printf("Raster:  %s (%dx%d)\n", cfg.Source.Path, hm.Width(), hm.Height())
		fmt.Printf("Heights: %.1f .. %.1f m\n", lo, hi)
	}

	sw, ne := s.Bounds()
	center := s.Center()
	fmt.Printf("Box:     SW %v  NE %v\n", sw, ne)
	fmt.Println()
	fmt.Println(s.EstimateMapSize().Diagram())
	fmt.Println()

	vert, horz, err := streaming.TileCounts(cfg.Area.SizeKm[0], cfg.Area.SizeKm[1], cfg.Tiles.KmPerSubmesh)
	if err != nil {
		return err
	}
	fmt.Printf("Grid:    %d rows x %d columns = %d submeshes of %d km\n", vert, horz, vert*horz, cfg.Tiles.KmPerSubmesh)
	if !streaming.Covered(cfg.Area.SizeKm[0], cfg.Area.SizeKm[1], cfg.Tiles.KmPerSubmesh, vert, horz) {
		fmt.Printf("Warning: %dx%d km grid leaves part of the %dx%d km area uncovered\n",
			horz*cfg.Tiles.KmPerSubmesh, vert*cfg.Tiles.KmPerSubmesh, cfg.Area.SizeKm[0], cfg.Area.SizeKm[1])
	}

	surface := s.Sphere().LatLonToCartesian(center, 0)
	g := s.Gravity().At(surface)
	fmt.Printf("Center:  %.4f, %.4f  gravity %.2f m/s²", center.Lat(), center.Lon(), g.Len())
	if alt, err := s.Altitude(center); err == nil {
		fmt.Printf("  altitude %.1f m", alt)
	}
	fmt.Println()

	up, north := s.Gravity().Frame(surface)
	fmt.Printf("Frame:   up %.4f %.4f %.4f  north %.4f %.4f %.4f\n",
		up.X(), up.Y(), up.Z(), north.X(), north.Y(), north.Z())

	if !s.EstimateMapSize().Acceptable() {
		logger.Warn("point estimate too high", zap.Int("points", s.EstimateMapSize().PointEstimate()))
	}
	return nil
}

func cmdBuild(cfg *config.Config) error {
	s, err := newScheduler(cfg, streaming.Options{Progress: newProgress(cfg)})
	if err != nil {
		return err
	}

	r, err := s.BuildGrid(streaming.GridOptions{DynamicResolution: cfg.Tiles.DynamicResolution})
	if err != nil {
		return err
	}
	printReport(r)

	if cfg.Output.ExportOBJ {
		n, err := exportOBJ(s, filepath.Join(cfg.Output.Directory, "meshes"))
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d meshes to %s\n", n, filepath.Join(cfg.Output.Directory, "meshes"))
	}
	return r.Err
}

func cmdStream(cfg *config.Config) error {
	s, err := newScheduler(cfg, streaming.Options{
		OnTick: func(r streaming.Report) {
			logger.Info("rebuild",
				zap.Int("built", r.Built),
				zap.Int("failed", r.Failed),
				zap.Int("hidden", r.Hidden),
				zap.Duration("took", r.Duration))
		},
	})
	if err != nil {
		return err
	}

	r, err := s.BuildGrid(streaming.GridOptions{DynamicResolution: cfg.Tiles.DynamicResolution})
	if err != nil {
		return err
	}
	printReport(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Streaming.FixedStep)
	defer ticker.Stop()

	logger.Info("streaming",
		zap.Duration("fixed_step", cfg.Streaming.FixedStep),
		zap.Int("rebuild_interval", cfg.Streaming.RebuildInterval))

	if err := s.Run(ctx, ticker.C); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("streaming stopped", zap.Stringer("state", s.State()))
	return nil
}

func cmdInit(args []string) error {
	path := config.FileName
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func printReport(r streaming.Report) {
	fmt.Printf("Tiles:   %d (%d built, %d failed, %d hidden) in %v\n",
		r.Tiles, r.Built, r.Failed, r.Hidden, r.Duration.Round(time.Millisecond))
}
