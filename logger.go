package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// levelWriter gates one sink behind its own minimum level so console
// and file can differ.
type levelWriter struct {
	w   zerolog.LevelWriter
	min zerolog.Level
}

func (lw levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.WriteLevel(level, p)
}

// initLogger sets the global logger: human console output at the
// configured level plus rotated JSON file output at debug level.
// Returns a cleanup function that closes the log file.
func initLogger(debugDir, consoleLevel string) (func(), error) {
	if err := os.MkdirAll(debugDir, 0o755); err != nil {
		return nil, err
	}

	lvl, err := zerolog.ParseLevel(consoleLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(debugDir, "go-service.log"),
		MaxSize:    10, // MB
		MaxBackups: 3,
		LocalTime:  true,
	}

	console := zerolog.ConsoleWriter{Out: os.Stdout}
	multi := zerolog.MultiLevelWriter(
		levelWriter{w: zerolog.MultiLevelWriter(console), min: lvl},
		levelWriter{w: zerolog.MultiLevelWriter(lj), min: zerolog.DebugLevel},
	)

	log.Logger = zerolog.New(multi).With().Timestamp().Logger().Level(zerolog.DebugLevel)

	cleanup := func() {
		if err := lj.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close log file")
		}
	}
	return cleanup, nil
}
