package navigate

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// navLog derives the package sublogger from the process logger at call
// time, so it follows the writer installed during startup.
func navLog() *zerolog.Logger {
	l := log.With().Str("module", "navigate").Logger()
	return &l
}
