package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagSource     = flag.String("source", "", "Heightmap raster path")
	flagFormat     = flag.String("format", "", "Raster naming format: aster or generic")
	flagOutput     = flag.String("output", "", "Output directory")
	flagResolution = flag.Int("resolution", 0, "Static submesh resolution")
	flagWorkers    = flag.Int("workers", 0, "Build workers (0 = config)")
	flagDynamic    = flag.Bool("dynamic", false, "Pick resolutions from the LOD table")
	flagSync       = flag.Bool("sync", false, "Build tiles on a single goroutine")
	flagOBJ        = flag.Bool("obj", false, "Export meshes as OBJ")
)

// ParseFlags parses command-line flags from args. Call this early in main().
func ParseFlags(args []string) error {
	return flag.CommandLine.Parse(args)
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSource != "" {
		cfg.Source.Path = *flagSource
	}
	if *flagFormat != "" {
		cfg.Source.Format = *flagFormat
	}
	if *flagOutput != "" {
		cfg.Output.Directory = *flagOutput
	}
	if *flagResolution > 0 {
		cfg.Tiles.Resolution = *flagResolution
	}
	if *flagWorkers > 0 {
		cfg.Tiles.Workers = *flagWorkers
	}
	if *flagDynamic {
		cfg.Tiles.DynamicResolution = true
	}
	if *flagSync {
		cfg.Tiles.BuildAsync = false
	}
	if *flagOBJ {
		cfg.Output.ExportOBJ = true
	}
}
