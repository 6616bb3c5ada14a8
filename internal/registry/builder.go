package registry

import (
	"time"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/discovery"
	"github.com/aleister1102/devtargets/internal/targets"
	"github.com/rs/zerolog"
)

// ControllerBuilder builds a Controller with fluent interface
type ControllerBuilder struct {
	store         Store
	renderer      Renderer
	launcher      LaunchAction
	history       HistoryRecorder
	resolver      *targets.Resolver
	prober        *discovery.Prober
	timeout       time.Duration
	inputErrorTTL time.Duration
	logger        zerolog.Logger
}

// NewControllerBuilder creates a builder with default timeouts
func NewControllerBuilder(logger zerolog.Logger) *ControllerBuilder {
	return &ControllerBuilder{
		timeout:       discovery.DefaultTimeout,
		inputErrorTTL: DefaultInputErrorTTL,
		logger:        logger,
	}
}

// WithStore sets the persistence collaborator
func (b *ControllerBuilder) WithStore(store Store) *ControllerBuilder {
	b.store = store
	return b
}

// WithRenderer sets the rendering collaborator
func (b *ControllerBuilder) WithRenderer(renderer Renderer) *ControllerBuilder {
	b.renderer = renderer
	return b
}

// WithLauncher sets the launch collaborator
func (b *ControllerBuilder) WithLauncher(launcher LaunchAction) *ControllerBuilder {
	b.launcher = launcher
	return b
}

// WithHistory sets the probe history recorder
func (b *ControllerBuilder) WithHistory(history HistoryRecorder) *ControllerBuilder {
	b.history = history
	return b
}

// WithResolver sets the launch URL resolver
func (b *ControllerBuilder) WithResolver(resolver *targets.Resolver) *ControllerBuilder {
	b.resolver = resolver
	return b
}

// WithProber sets the prober used by discovery sessions
func (b *ControllerBuilder) WithProber(prober *discovery.Prober) *ControllerBuilder {
	b.prober = prober
	return b
}

// WithTimeout sets the discovery session deadline
func (b *ControllerBuilder) WithTimeout(timeout time.Duration) *ControllerBuilder {
	b.timeout = timeout
	return b
}

// WithInputErrorTTL sets how long input errors stay visible
func (b *ControllerBuilder) WithInputErrorTTL(ttl time.Duration) *ControllerBuilder {
	b.inputErrorTTL = ttl
	return b
}

// Build validates the collaborators and creates the Controller
func (b *ControllerBuilder) Build() (*Controller, error) {
	if b.store == nil {
		return nil, common.NewValidationError("store", nil, "store is required")
	}
	if b.renderer == nil {
		return nil, common.NewValidationError("renderer", nil, "renderer is required")
	}
	if b.prober == nil {
		return nil, common.NewValidationError("prober", nil, "prober is required")
	}

	resolver := b.resolver
	if resolver == nil {
		resolver = targets.NewResolver(targets.FrontendOptions{})
	}
	inputErrorTTL := b.inputErrorTTL
	if inputErrorTTL <= 0 {
		inputErrorTTL = DefaultInputErrorTTL
	}

	logger := b.logger.With().Str("component", "Registry").Logger()
	c := &Controller{
		hosts:         []string{},
		statuses:      make(map[string]string),
		store:         b.store,
		renderer:      b.renderer,
		launcher:      b.launcher,
		history:       b.history,
		resolver:      resolver,
		logger:        logger,
		inputErrorTTL: inputErrorTTL,
	}
	c.tracker = discovery.NewTracker(&c.mu, b.prober, b.timeout, b.logger)
	return c, nil
}
