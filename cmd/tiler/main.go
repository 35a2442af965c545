package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/woozymasta/worldtile/internal/config"
	"github.com/woozymasta/worldtile/internal/logger"
	"github.com/woozymasta/worldtile/internal/regions"
	"github.com/woozymasta/worldtile/internal/tiles"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file, defaults apply when empty"`
	OpenStates  string `short:"o" long:"open-states" env:"OPEN_STATES" description:"Open-states GeoJSON file, overrides the config and the bundled asset"`
	Dir         string `short:"d" long:"dir"         env:"TILES_DIR"   description:"Output directory, overrides the config"`
	Concurrency int    `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"8"`
	ZoomLimit   int    `short:"z" long:"zoom-limit"  env:"ZOOM_LIMIT"  description:"Tiles zoom limit, overrides the config"`
	Force       bool   `short:"f" long:"force"       description:"Force overwrite of existing files"`
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.OpenStates != "" {
		cfg.OpenStates = opts.OpenStates
	}
	if opts.Dir != "" {
		cfg.Tiles.Dir = opts.Dir
	}
	if opts.ZoomLimit > 0 {
		cfg.Tiles.ZoomLimit = opts.ZoomLimit
	}
	if cfg.Tiles.ZoomLimit > tiles.MaxZoom {
		log.Fatal().Int("zoom", cfg.Tiles.ZoomLimit).Int("max", tiles.MaxZoom).Msg("Zoom limit too deep")
	}

	fill, err := tiles.ParseHexColor(cfg.Overlay.Color)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid overlay color")
	}

	loader := regions.NewLoader("embedded", regions.EmbeddedSource())
	if cfg.OpenStates != "" {
		loader = regions.NewLoader(cfg.OpenStates, regions.FileSource(cfg.OpenStates))
	}

	c, err := loader.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load open states")
	}

	log.Info().
		Str("dir", cfg.Tiles.Dir).
		Int("zoom_limit", cfg.Tiles.ZoomLimit).
		Int("concurrency", opts.Concurrency).
		Bool("force", opts.Force).
		Msg("Starting tiler")

	start := time.Now()
	stats := tiles.PreRender(tiles.NewRenderer(c, fill), cfg.Tiles.Dir, cfg.Tiles.ZoomLimit, opts.Concurrency, opts.Force)

	log.Info().
		Int("written", stats.Written).
		Int("skipped", stats.Skipped).
		Int("empty", stats.Empty).
		Int("failed", stats.Failed).
		Dur("took", time.Since(start)).
		Msg("Tiler finished")

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
