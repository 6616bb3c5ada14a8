package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aleister1102/devtargets/internal/config"
	"github.com/aleister1102/devtargets/internal/datastore"
	"github.com/aleister1102/devtargets/internal/discovery"
	"github.com/aleister1102/devtargets/internal/httpclient"
	"github.com/aleister1102/devtargets/internal/launch"
	"github.com/aleister1102/devtargets/internal/registry"
	"github.com/aleister1102/devtargets/internal/render"
	"github.com/aleister1102/devtargets/internal/targets"
	"github.com/rs/zerolog"
)

var errDiscoveryFailed = errors.New("discovery failed")

// app wires the registry controller to its collaborators for one command.
type app struct {
	cfg        *config.GlobalConfig
	logger     zerolog.Logger
	out        io.Writer
	store      *datastore.SQLiteStore
	console    *render.Console
	controller *registry.Controller
}

func newApp(cfg *config.GlobalConfig, logger zerolog.Logger, out io.Writer) (*app, error) {
	store, err := datastore.NewSQLiteStore(cfg.StorageConfig.DatabasePath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	client, err := httpclient.NewHTTPClientBuilder(logger).
		WithUserAgent(cfg.DiscoveryConfig.UserAgent).
		WithHTTP2(cfg.DiscoveryConfig.EnableHTTP2).
		Build()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	desktop, err := launch.NewDesktopBuilder(logger).WithFeedback(out).Build()
	if err != nil {
		store.Close()
		return nil, err
	}

	resolver := targets.NewResolver(targets.FrontendOptions{
		EmbeddedBaseURL: cfg.FrontendConfig.ResolveEmbeddedBaseURL(),
		Entry:           cfg.FrontendConfig.Entry,
		HostedPath:      cfg.FrontendConfig.HostedPath,
	})

	console := render.NewConsole(out, render.ConsoleOptions{HideHosts: true})

	builder := registry.NewControllerBuilder(logger).
		WithStore(store).
		WithRenderer(console).
		WithLauncher(desktop).
		WithResolver(resolver).
		WithProber(discovery.NewProber(client, logger)).
		WithTimeout(cfg.DiscoveryConfig.Timeout())
	if cfg.StorageConfig.RecordHistory {
		builder.WithHistory(store)
	}

	controller, err := builder.Build()
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		out:        out,
		store:      store,
		console:    console,
		controller: controller,
	}, nil
}

func (a *app) Close() {
	a.controller.Close()
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to close state database")
	}
}

// printHosts renders the final host list once, after the command has settled.
func (a *app) printHosts() {
	render.NewConsole(a.out, render.ConsoleOptions{}).RenderHosts(a.controller.HostsView())
}

// await waits for session and reports a failed outcome as an error. A nil or
// superseded session is not an error.
func (a *app) await(ctx context.Context, session *discovery.Session) error {
	if session == nil {
		return nil
	}
	if err := session.Wait(ctx); err != nil {
		return err
	}
	if session.State() == discovery.StateFailed {
		return fmt.Errorf("%w: %s", errDiscoveryFailed, session.Outcome().Message())
	}
	return nil
}
