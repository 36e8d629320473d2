package main

import (
	"github.com/rs/zerolog/log"

	"github.com/scoutkit/scout/agent/go-service/navigate"
)

func registerAll() {
	// Register all custom components from each package
	navigate.Register()

	log.Info().
		Msg("All custom components registered successfully")
}
