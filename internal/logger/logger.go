// Package logger builds the zerolog logger used by devtargets.
package logger

import (
	"io"

	"github.com/aleister1102/devtargets/internal/config"
	"github.com/rs/zerolog"
)

// New creates the logger for cfg with console output on stderr.
func New(cfg config.LogConfig, stderr io.Writer) (zerolog.Logger, error) {
	return NewBuilder().WithConfig(cfg).WithConsoleOutput(stderr).Build()
}
