package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/woozymasta/mahamap/internal/config"
	"github.com/woozymasta/mahamap/internal/logger"
	"github.com/woozymasta/mahamap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"       env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"        env:"LIMIT_NAMES"  description:"Limit processing to specific map names"`
	Concurrency int      `short:"p" long:"concurrency"  env:"CONCURRENCY"  description:"Tile writer concurrency" default:"20"`
	ZoomLimit   int      `short:"z" long:"zoom-limit"   env:"ZOOM_LIMIT"   description:"Tiles zoom limit, overrides config"`
	TilesOnly   bool     `short:"t" long:"tiles-only"   description:"Render tiles only"`
	GeoJSONOnly bool     `short:"g" long:"geojson-only" description:"Fetch boundaries only"`
	NoPreview   bool     `short:"n" long:"no-preview"   description:"Skip preview rendering"`
	Force       bool     `short:"f" long:"force"        description:"Force overwrite of existing files"`
	FastCheck   bool     `short:"F" long:"fast-check"   description:"Skip tile rendering if the tiles directory exists"`
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

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	processTiles := true
	processGeo := true
	if opts.TilesOnly && !opts.GeoJSONOnly {
		processGeo = false
	} else if opts.GeoJSONOnly && !opts.TilesOnly {
		processTiles = false
	}

	client := &http.Client{Timeout: 60 * time.Second}

	// Filter maps if limit is set
	mapsToProcess := cfg.Maps
	if len(opts.Limit) > 0 {
		mapsToProcess = make([]config.Map, 0)
		availableMaps := make(map[string]config.Map)
		for _, m := range cfg.Maps {
			availableMaps[m.Name] = m
		}

		seen := make(map[string]bool)

		for _, limitName := range opts.Limit {
			if seen[limitName] {
				continue
			}
			seen[limitName] = true

			if m, ok := availableMaps[limitName]; ok {
				mapsToProcess = append(mapsToProcess, m)
			} else {
				log.Error().
					Str("name", limitName).
					Msg("Map specified in --limit not found in configuration")
			}
		}
	}

	log.Info().
		Int("maps_total", len(cfg.Maps)).
		Int("maps_queued", len(mapsToProcess)).
		Bool("fast_check", opts.FastCheck).
		Msg("Starting loader")

	failed := 0
	for _, m := range mapsToProcess {
		if opts.ZoomLimit > 0 {
			m.ZoomLimit = opts.ZoomLimit
		}

		if processGeo {
			if err := processor.ProcessBoundaries(client, cfg, m, opts.Force); err != nil {
				log.Error().Err(err).Str("map", m.Name).Msg("Failed to process boundaries")
				failed++
				continue
			}
		}

		if !processTiles {
			continue
		}

		b, err := processor.LoadBoundaries(cfg, m)
		if err != nil {
			log.Error().Err(err).Str("map", m.Name).Msg("Failed to load boundaries")
			failed++
			continue
		}

		if !opts.NoPreview {
			if err := processor.ProcessPreview(cfg, m, b, opts.Force); err != nil {
				log.Error().Err(err).Str("map", m.Name).Msg("Failed to render preview")
				failed++
			}
		}

		// Fast Check
		if opts.FastCheck {
			if _, err := os.Stat(filepath.Join(cfg.Dir(m), config.TilesDir)); err == nil {
				log.Info().
					Str("map", m.Name).
					Msg("Tiles directory exists, skipping (fast-check)")
				continue
			}
		}

		if err := processor.ProcessTiles(cfg, m, b, opts.Concurrency, opts.Force); err != nil {
			log.Error().Err(err).Str("map", m.Name).Msg("Failed to render tiles")
			failed++
		}
	}

	if failed > 0 {
		log.Fatal().Int("failed", failed).Msg("Loader finished with errors")
	}

	log.Info().Msg("Loader finished successfully")
}
