package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a timestamped zerolog logger at the named level. console
// switches to zerolog's human-readable writer.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Adapter lets the calculation engines write through a zerolog logger
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debugf(format string, args ...any) { a.logger.Debug().Msgf(format, args...) }
func (a *Adapter) Infof(format string, args ...any)  { a.logger.Info().Msgf(format, args...) }
func (a *Adapter) Warnf(format string, args ...any)  { a.logger.Warn().Msgf(format, args...) }
func (a *Adapter) Errorf(format string, args ...any) { a.logger.Error().Msgf(format, args...) }
