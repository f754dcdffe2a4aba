package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the run logger: console output on stderr, debug level when
// requested, and all given secret terms masked before anything is written.
func New(debug bool, scrubTerms ...string) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	var out io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	out = NewScrubbingWriter(out, scrubTerms...)

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
