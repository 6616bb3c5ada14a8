package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aleister1102/devtargets/internal/config"
	"github.com/aleister1102/devtargets/internal/logger"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, "[FATAL]", err)
		return 2
	}

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] Could not load global config using path '%s': %v\n", flags.GlobalConfigFile, err)
		return 1
	}

	zLogger, err := logger.New(gCfg.LogConfig, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "[FATAL] Could not initialize logger: %v\n", err)
		return 1
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Error().Err(err).Msg("Configuration validation failed")
		return 1
	}

	application, err := newApp(gCfg, zLogger, stdout)
	if err != nil {
		zLogger.Error().Err(err).Msg("Failed to initialize")
		return 1
	}
	defer application.Close()

	if err := application.run(ctx, flags.Command, flags.Args); err != nil {
		if ctx.Err() != nil {
			zLogger.Info().Msg("Interrupted")
			return 130
		}
		if !errors.Is(err, errDiscoveryFailed) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}
