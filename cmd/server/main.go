package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/woozymasta/worldtile/internal/config"
	"github.com/woozymasta/worldtile/internal/logger"
	"github.com/woozymasta/worldtile/internal/parcel"
	"github.com/woozymasta/worldtile/internal/regions"
	"github.com/woozymasta/worldtile/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile    string        `short:"c" long:"config"         env:"CONFIG_FILE"    description:"Path to configuration file, defaults apply when empty"`
	OpenStates    string        `short:"o" long:"open-states"    env:"OPEN_STATES"    description:"Open-states GeoJSON file, overrides the config and the bundled asset"`
	Addr          string        `short:"a" long:"addr"           env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port          int           `short:"p" long:"port"           env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	SweepInterval time.Duration `long:"sweep-interval"           env:"SWEEP_INTERVAL" description:"How often expired parcel drafts are dropped" default:"1m"`
}

func main() {
	// .env is optional
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if opts.OpenStates != "" {
		cfg.OpenStates = opts.OpenStates
	}

	loader := regions.NewLoader("embedded", regions.EmbeddedSource())
	if cfg.OpenStates != "" {
		loader = regions.NewLoader(cfg.OpenStates, regions.FileSource(cfg.OpenStates))
	}

	drafts := parcel.NewStore(cfg.Drafts.TTL)

	srvCtx, err := server.NewServerContext(cfg, loader, drafts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	// never start without an overlay: an empty one would unlock the world
	if err := srvCtx.Warmup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load open states")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go drafts.Run(ctx, opts.SweepInterval)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           server.NewRouter(srvCtx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}()

	log.Info().
		Str("addr", listenAddr).
		Str("tiles_dir", cfg.Tiles.Dir).
		Dur("draft_ttl", cfg.Drafts.TTL).
		Float64("rate_limit_rps", cfg.RateLimit.RPS).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Web server stopped")
}
