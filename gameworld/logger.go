package gameworld

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// gwLog derives the package sublogger from the process logger at call
// time, so it follows the console+file writer installed during startup
// rather than the stderr default that exists at package init.
func gwLog() *zerolog.Logger {
	l := log.With().Str("module", "gameworld").Logger()
	return &l
}
