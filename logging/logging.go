package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. Local runs get the console
// writer, deployed environments write JSON lines.
func Setup(env string) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = New(os.Stdout, env)
}

func New(out io.Writer, env string) zerolog.Logger {
	if env == "local" || env == "test" || env == "" {
		out = zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
			w.Out = out
			w.TimeFormat = time.RFC3339
		})
	}
	level := zerolog.InfoLevel
	if env == "test" {
		level = zerolog.WarnLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
