package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
)

// newLogger returns a console logger at the given level. Each logger carries
// a fresh run id so that the events of one invocation can be told apart.
func newLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q", level)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	runID, err := uuid.NewV4()
	if err != nil {
		return zerolog.Nop(), err
	}
	console := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    color.NoColor,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(console).
		Level(lvl).
		With().
		Timestamp().
		Str("run", runID.String()).
		Logger(), nil
}
