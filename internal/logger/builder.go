package logger

import (
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Builder assembles the CLI logger. Console logs go to stderr so stdout only
// carries command output.
type Builder struct {
	level      zerolog.Level
	format     Format
	console    io.Writer
	file       string
	maxSizeMB  int
	maxBackups int
	err        error
}

// NewBuilder creates a builder with the CLI defaults.
func NewBuilder() *Builder {
	level, _ := zerolog.ParseLevel(config.DefaultLogLevel)
	return &Builder{
		level:      level,
		format:     ParseFormat(config.DefaultLogFormat),
		console:    os.Stderr,
		maxSizeMB:  config.DefaultMaxLogSizeMB,
		maxBackups: config.DefaultMaxLogBackups,
	}
}

// WithConfig applies the log_config section. An unknown level is reported by Build.
func (b *Builder) WithConfig(cfg config.LogConfig) *Builder {
	if cfg.LogLevel != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
		if err != nil {
			b.err = common.WrapError(err, "invalid log level")
		} else {
			b.level = level
		}
	}
	if cfg.LogFormat != "" {
		b.format = ParseFormat(cfg.LogFormat)
	}
	b.file = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		b.maxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		b.maxBackups = cfg.MaxLogBackups
	}
	return b
}

// WithConsoleOutput sets where console logs are written; nil disables them.
func (b *Builder) WithConsoleOutput(w io.Writer) *Builder {
	b.console = w
	return b
}

// Build creates the logger, sets the global level and routes the standard
// library logger through it.
func (b *Builder) Build() (zerolog.Logger, error) {
	if b.err != nil {
		return zerolog.Logger{}, b.err
	}

	var writers []io.Writer
	if b.console != nil {
		writers = append(writers, b.format.encoder(b.console))
	}
	if b.file != "" {
		file, err := b.rotatingFile()
		if err != nil {
			return zerolog.Logger{}, err
		}
		writers = append(writers, file)
	}
	if len(writers) == 0 {
		return zerolog.Logger{}, common.NewError("no output writers configured")
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(b.level).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(b.level)
	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)
	return logger, nil
}

// rotatingFile opens the log file through lumberjack.
func (b *Builder) rotatingFile() (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(b.file), 0755); err != nil {
		return nil, common.WrapError(err, "failed to create log directory")
	}
	rotator := &lumberjack.Logger{
		Filename:   b.file,
		MaxSize:    b.maxSizeMB,
		MaxBackups: b.maxBackups,
		LocalTime:  true,
	}
	return b.format.encoder(rotator), nil
}
