package main

import (
	"io"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
)

func newLogger(out io.Writer, config Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	var logger zerolog.Logger
	if config.LogFormat == JSONLogFormat {
		logger = zerolog.New(out)
	} else {
		consoleLogger := zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.NoColor = termenv.NewOutput(out).Profile == termenv.Ascii
			w.TimeFormat = "15:04:05"
		})
		logger = zerolog.New(consoleLogger)
	}

	return logger.Level(level).With().Timestamp().Logger(), nil
}
