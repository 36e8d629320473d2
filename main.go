package main

import (
	"context"
	"os"
	"time"

	"github.com/MaaXYZ/maa-framework-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/scoutkit/scout/agent/go-service/config"
	"github.com/scoutkit/scout/agent/go-service/history"
	"github.com/scoutkit/scout/agent/go-service/navigate"
	"github.com/scoutkit/scout/agent/go-service/progress"
	"github.com/scoutkit/scout/agent/go-service/window"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	cleanup, err := initLogger(cfg.DebugDir, cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}
	defer cleanup()

	log.Info().Str("version", Version).Msg("Scout Agent Service")

	if len(os.Args) < 2 {
		log.Fatal().Msg("Usage: service <identifier>")
	}
	identifier := os.Args[1]

	if cfg.Window.Title != "" {
		tracker := window.NewTracker(cfg.Window.Title)
		if err := tracker.EnsureForeground(); err != nil {
			log.Warn().Err(err).Msg("Game window not in front yet, actions will retry")
		} else if bounds, err := tracker.ClientBounds(); err == nil {
			log.Info().
				Int("width", bounds.Dx()).
				Int("height", bounds.Dy()).
				Msg("Game window located")
		}
	}

	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.Open(cfg.History.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open history store")
		}
		defer hist.Close()
	}

	var hub *progress.Hub
	var feed *progress.Server
	if cfg.Progress.Enabled {
		hub = progress.NewHub()
		feed = progress.NewServer(hub, cfg.Progress.Addr)
		feed.Start()
	}

	if err := navigate.Init(cfg, hist, hub); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize navigation")
	}

	registerAll()

	log.Info().Str("identifier", identifier).Msg("Starting agent server")
	if err := maa.AgentServerStartUp(identifier); err != nil {
		log.Fatal().Err(err).Msg("Failed to start agent server")
	}
	log.Info().Msg("Agent server started")

	maa.AgentServerJoin()
	maa.AgentServerShutDown()

	if feed != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := feed.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Progress feed shutdown incomplete")
		}
	}
	log.Info().Msg("Agent server shutdown")
}
