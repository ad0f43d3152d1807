// Package config handles terrain streaming configuration loading and management.
package config

import (
	"time"

	"github.com/paulmach/orb"

	"github.com/Faultbox/demstream/internal/engine/lod"
)

// Config holds all terrain settings.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Area      AreaConfig      `yaml:"area"`
	Tiles     TilesConfig     `yaml:"tiles"`
	LOD       lod.Table       `yaml:"lod"`
	Streaming StreamingConfig `yaml:"streaming"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Output    OutputConfig    `yaml:"output"`
	Gravity   GravityConfig   `yaml:"gravity"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SourceConfig describes the heightmap raster and its color ramp.
type SourceConfig struct {
	Path            string  `yaml:"path"`
	Format          string  `yaml:"format"` // aster or generic
	ColorSteps      int     `yaml:"color_steps"`
	FilenamePrefix  string  `yaml:"filename_prefix"`
	TileSpanDegrees float64 `yaml:"tile_span_degrees"`
	MinAltitude     float32 `yaml:"min_altitude"`
	MaxAltitude     float32 `yaml:"max_altitude"`
	SealevelAdjust  float32 `yaml:"sealevel_adjust"`
}

// AreaConfig holds the geographic box and the streamed area around its centre.
type AreaConfig struct {
	SouthWest            orb.Point `yaml:"south_west"` // [lon, lat]
	NorthEast            orb.Point `yaml:"north_east"` // [lon, lat]
	SizeKm               [2]int    `yaml:"size_km"`    // [east-west, north-south]
	CenterAltitudeOffset float64   `yaml:"center_altitude_offset"`
}

// TilesConfig holds submesh settings.
type TilesConfig struct {
	KmPerSubmesh      int  `yaml:"km_per_submesh"`
	Resolution        int  `yaml:"resolution"`
	DynamicResolution bool `yaml:"dynamic_resolution"`
	BuildAsync        bool `yaml:"build_async"`
	Workers           int  `yaml:"workers"` // 0 = GOMAXPROCS
	AveragedSampling  bool `yaml:"averaged_sampling"`
}

// StreamingConfig holds the rebuild loop timing.
type StreamingConfig struct {
	RebuildInterval int           `yaml:"rebuild_interval"` // In ticks
	FixedStep       time.Duration `yaml:"fixed_step"`
}

// ViewerConfig is the initial viewer position.
type ViewerConfig struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
	Alt float64 `yaml:"alt"`
}

// OutputConfig holds output paths.
type OutputConfig struct {
	Directory     string `yaml:"directory"`
	HeightmapDump bool   `yaml:"heightmap_dump"`
	ExportOBJ     bool   `yaml:"export_obj"`
}

// GravityConfig holds the planet gravity strength in m/s².
type GravityConfig struct {
	Strength float64 `yaml:"strength"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Format:          "aster",
			ColorSteps:      4,
			FilenamePrefix:  "AST",
			TileSpanDegrees: 1,
			MinAltitude:     0,
			MaxAltitude:     1500,
			SealevelAdjust:  -5,
		},
		Area: AreaConfig{
			SizeKm: [2]int{178, 150},
		},
		Tiles: TilesConfig{
			KmPerSubmesh:     10,
			Resolution:       64,
			BuildAsync:       true,
			AveragedSampling: true,
		},
		LOD: lod.DefaultTable(),
		Streaming: StreamingConfig{
			RebuildInterval: 50,
			FixedStep:       20 * time.Millisecond,
		},
		Output: OutputConfig{
			Directory:     "./Output/Terrain",
			HeightmapDump: true,
		},
		Gravity: GravityConfig{
			Strength: 9.81,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
