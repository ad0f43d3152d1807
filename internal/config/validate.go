package config

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/demstream/internal/engine/streaming"
	"github.com/Faultbox/demstream/pkg/ramp"
)

// ErrInvalid marks a config value out of range.
var ErrInvalid = errors.New("invalid config")

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var err error

	if _, ferr := streaming.ParseFormat(c.Source.Format); ferr != nil {
		err = multierr.Append(err, invalid("source.format", "%q is not aster or generic", c.Source.Format))
	}
	if c.Source.ColorSteps != ramp.ThreeStep && c.Source.ColorSteps != ramp.FourStep {
		err = multierr.Append(err, invalid("source.color_steps", "%d not supported", c.Source.ColorSteps))
	}
	if c.Source.MaxAltitude < c.Source.MinAltitude {
		err = multierr.Append(err, invalid("source.max_altitude", "below min_altitude"))
	}
	if c.Source.TileSpanDegrees <= 0 {
		err = multierr.Append(err, invalid("source.tile_span_degrees", "must be positive"))
	}
	if c.Area.SizeKm[0] <= 0 || c.Area.SizeKm[1] <= 0 {
		err = multierr.Append(err, invalid("area.size_km", "must be positive, got %v", c.Area.SizeKm))
	}
	if c.Tiles.KmPerSubmesh <= 0 {
		err = multierr.Append(err, invalid("tiles.km_per_submesh", "must be positive"))
	}
	if c.Tiles.Resolution < 2 {
		err = multierr.Append(err, invalid("tiles.resolution", "must be at least 2, got %d", c.Tiles.Resolution))
	}
	if c.Tiles.Workers < 0 {
		err = multierr.Append(err, invalid("tiles.workers", "must not be negative"))
	}
	if c.LOD.MinimumResolution < 2 {
		err = multierr.Append(err, invalid("lod.minimum_resolution", "must be at least 2"))
	}
	if c.Streaming.RebuildInterval < 1 {
		err = multierr.Append(err, invalid("streaming.rebuild_interval", "must be at least 1"))
	}
	if c.Streaming.FixedStep <= 0 {
		err = multierr.Append(err, invalid("streaming.fixed_step", "must be positive"))
	}

	return err
}

// Settings converts the config into scheduler parameters.
func (c *Config) Settings() (streaming.Settings, error) {
	format, err := streaming.ParseFormat(c.Source.Format)
	if err != nil {
		return streaming.Settings{}, err
	}

	return streaming.Settings{
		Format:          format,
		Steps:           c.Source.ColorSteps,
		FilenamePrefix:  c.Source.FilenamePrefix,
		TileSpanDegrees: c.Source.TileSpanDegrees,
		SouthWest:       c.Area.SouthWest,
		NorthEast:       c.Area.NorthEast,
		MinAltitude:     c.Source.MinAltitude,
		MaxAltitude:     c.Source.MaxAltitude,
		SealevelAdjust:  c.Source.SealevelAdjust,

		AreaX:                c.Area.SizeKm[0],
		AreaY:                c.Area.SizeKm[1],
		CenterAltitudeOffset: c.Area.CenterAltitudeOffset,

		KmPerSubmesh:      c.Tiles.KmPerSubmesh,
		Resolution:        c.Tiles.Resolution,
		DynamicResolution: c.Tiles.DynamicResolution,
		BuildAsync:        c.Tiles.BuildAsync,
		Workers:           c.Tiles.Workers,
		Averaged:          c.Tiles.AveragedSampling,

		RebuildInterval: c.Streaming.RebuildInterval,

		OutputDir:     c.Output.Directory,
		HeightmapDump: c.Output.HeightmapDump,
	}, nil
}
