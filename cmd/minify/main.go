package main

import (
	"os"

	"github.com/woozymasta/worldtile/internal/logger"
	"github.com/woozymasta/worldtile/internal/regions"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/json"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input  string `short:"i" long:"in"  description:"Source GeoJSON" default:"assets/src/open_states.geojson"`
	Output string `short:"o" long:"out" description:"Bundled GeoJSON" default:"assets/open_states.geojson"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	m := minify.New()
	m.AddFunc("application/geo+json", json.Minify)

	raw, err := os.ReadFile(opts.Input)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Failed to read source")
	}

	// refuse to bundle a document the loader would reject or partially skip
	c, err := regions.Parse(raw)
	if err != nil {
		log.Fatal().Err(err).Str("path", opts.Input).Msg("Invalid open states")
	}
	if c.Skipped > 0 || c.DroppedParts > 0 {
		log.Fatal().
			Int("skipped", c.Skipped).
			Int("dropped_parts", c.DroppedParts).
			Str("path", opts.Input).
			Msg("Open states contain unusable geometry")
	}

	minified, err := m.Bytes("application/geo+json", raw)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to minify open states")
	}

	if err := os.WriteFile(opts.Output, minified, 0644); err != nil {
		log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
	}

	log.Info().
		Int("regions", len(c.Features)).
		Int("source_bytes", len(raw)).
		Int("minified_bytes", len(minified)).
		Str("path", opts.Output).
		Msg("Minify done")
}
