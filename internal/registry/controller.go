package registry

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/aleister1102/devtargets/internal/common"
	"github.com/aleister1102/devtargets/internal/discovery"
	"github.com/aleister1102/devtargets/internal/hostaddr"
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/aleister1102/devtargets/internal/targets"
	"github.com/rs/zerolog"
)

const (
	// DefaultInputErrorTTL is how long an input error stays visible.
	DefaultInputErrorTTL = 3 * time.Second

	historyWriteTimeout = 5 * time.Second
)

var (
	// ErrUnknownHost is returned for operations naming a host not in the list.
	ErrUnknownHost = errors.New("host is not registered")
	// ErrNoDebugURL is returned when launching a target without a debug socket.
	ErrNoDebugURL = errors.New("target has no debug URL")
	// ErrNoLauncher is returned when launching without a LaunchAction.
	ErrNoLauncher = errors.New("no launch action configured")
)

// Controller owns the host registry and drives discovery for the active host.
// Every mutation and every settled discovery session runs under one lock, so
// renderer and store calls are never concurrent.
type Controller struct {
	mu sync.Mutex

	hosts    []string
	active   string
	statuses map[string]string
	cards    []TargetCard

	store    Store
	renderer Renderer
	launcher LaunchAction
	history  HistoryRecorder
	resolver *targets.Resolver
	tracker  *discovery.Tracker
	logger   zerolog.Logger

	inputErrorTTL   time.Duration
	inputErrorTimer *time.Timer
	inputErrorSeq   uint64
}

// Load restores the host list and the active host from the store. A saved
// active host still present in the list is selected, which starts a discovery
// session; otherwise the empty view is rendered. Store failures leave the
// registry empty.
func (c *Controller) Load(ctx context.Context) *discovery.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	saved := c.restoreLocked(ctx)
	c.renderHosts()
	if saved != "" && slices.Contains(c.hosts, saved) {
		return c.selectLocked(ctx, saved)
	}
	c.renderer.RenderEmpty()
	return nil
}

// Restore loads the stored state without rendering or starting discovery.
// The saved active host becomes active again when it is still registered.
func (c *Controller) Restore(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	saved := c.restoreLocked(ctx)
	if saved != "" && slices.Contains(c.hosts, saved) {
		c.active = saved
	}
	return c.active
}

func (c *Controller) restoreLocked(ctx context.Context) string {
	var saved string
	values, err := c.store.Get(ctx, []string{HostsKey, ActiveHostKey})
	if err != nil {
		c.logger.Warn().Err(common.NewPersistenceError("get", []string{HostsKey, ActiveHostKey}, err)).Msg("Failed to load state")
		c.hosts = []string{}
	} else {
		c.hosts = decodeHosts(values[HostsKey])
		saved = decodeActiveHost(values[ActiveHostKey])
	}
	c.statuses = make(map[string]string)
	c.active = ""
	c.cards = nil

	c.logger.Info().Int("hosts", len(c.hosts)).Str("saved_active_host", saved).Msg("Registry state loaded")
	return saved
}

// Add registers raw as a host and selects it. Invalid input is reported
// through the renderer and leaves the registry untouched; empty input is
// ignored. Adding a known host re-selects it.
func (c *Controller) Add(ctx context.Context, raw string) (*discovery.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	host, err := hostaddr.Normalize(raw)
	if err != nil {
		if errors.Is(err, hostaddr.ErrEmptyHost) {
			return nil, err
		}
		message := hostaddr.InvalidHostMessage
		var validationErr *common.ValidationError
		if errors.As(err, &validationErr) {
			message = validationErr.Message
		}
		c.logger.Debug().Err(err).Str("input", raw).Msg("Rejected host input")
		c.showInputError(message)
		return nil, err
	}

	if hostaddr.IsKnownDuplicate(c.hosts, host) {
		c.logger.Debug().Str("host", host).Msg("Host already registered, re-selecting")
		return c.selectLocked(ctx, host), nil
	}

	c.hosts = append(c.hosts, host)
	c.logger.Info().Str("host", host).Msg("Host added")
	c.saveHosts(ctx)
	c.renderHosts()
	return c.selectLocked(ctx, host), nil
}

// Remove unregisters host and forgets its status. Removing the active host
// clears the selection, abandons its discovery session and renders the empty
// view; no other host is selected in its place.
func (c *Controller) Remove(ctx context.Context, host string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.Index(c.hosts, host)
	if idx < 0 {
		return common.WrapError(ErrUnknownHost, host)
	}

	c.hosts = slices.Delete(c.hosts, idx, idx+1)
	delete(c.statuses, host)
	c.logger.Info().Str("host", host).Msg("Host removed")
	c.saveHosts(ctx)

	if c.active == host {
		c.active = ""
		c.cards = nil
		c.tracker.Cancel()
		c.saveActiveHost(ctx)
		c.renderer.RenderEmpty()
	}
	c.renderHosts()
	return nil
}

// Select makes host active and starts a discovery session for it,
// superseding any session in flight.
func (c *Controller) Select(ctx context.Context, host string) (*discovery.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !slices.Contains(c.hosts, host) {
		return nil, common.WrapError(ErrUnknownHost, host)
	}
	return c.selectLocked(ctx, host), nil
}

// Refresh starts a new discovery session for the active host. It returns nil
// when no host is active.
func (c *Controller) Refresh(ctx context.Context) *discovery.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == "" {
		return nil
	}
	return c.beginLocked(c.active)
}

// OpenTarget opens the embedded frontend for the displayed target at index.
func (c *Controller) OpenTarget(ctx context.Context, index int) error {
	launch, err := c.launchURLs(index)
	if err != nil {
		return err
	}
	if err := c.launcher.OpenEmbedded(ctx, launch.Embedded); err != nil {
		c.logger.Warn().Err(err).Int("index", index).Msg("Failed to open inspector")
		return err
	}
	return nil
}

// CopyTarget copies the hosted frontend URL for the displayed target at index.
func (c *Controller) CopyTarget(ctx context.Context, index int) error {
	launch, err := c.launchURLs(index)
	if err != nil {
		return err
	}
	if err := c.launcher.CopyHosted(ctx, launch.Hosted); err != nil {
		c.logger.Warn().Err(err).Int("index", index).Msg("Failed to copy inspector URL")
		return err
	}
	return nil
}

// Close abandons the live session and waits for session goroutines to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	c.tracker.Cancel()
	if c.inputErrorTimer != nil {
		c.inputErrorTimer.Stop()
	}
	c.mu.Unlock()

	c.tracker.Wait()
}

// Hosts returns the registered hosts in insertion order.
func (c *Controller) Hosts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.hosts)
}

// ActiveHost returns the selected host, "" when none is.
func (c *Controller) ActiveHost() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Status returns the last observed status of host.
func (c *Controller) Status(host string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked(host)
}

// Targets returns the cards currently displayed for the active host.
func (c *Controller) Targets() []TargetCard {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.cards)
}

func (c *Controller) launchURLs(index int) (*targets.LaunchURLs, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.launcher == nil {
		return nil, ErrNoLauncher
	}
	if index < 0 || index >= len(c.cards) {
		return nil, common.NewValidationError("index", index, "no displayed target at this index")
	}
	card := c.cards[index]
	if card.Launch == nil {
		return nil, ErrNoDebugURL
	}
	launch := *card.Launch
	return &launch, nil
}

func (c *Controller) selectLocked(ctx context.Context, host string) *discovery.Session {
	c.active = host
	c.saveActiveHost(ctx)
	c.renderHosts()
	return c.beginLocked(host)
}

func (c *Controller) beginLocked(host string) *discovery.Session {
	session := c.tracker.Begin(host, c.settle)
	c.cards = nil
	c.renderer.RenderLoading(host)
	return session
}

// settle applies an authoritative outcome. The tracker calls it with c.mu held.
func (c *Controller) settle(session *discovery.Session, outcome discovery.Outcome) {
	if outcome.Host != c.active || !slices.Contains(c.hosts, outcome.Host) {
		return
	}

	record := models.ProbeRecord{
		SessionID: session.ID,
		Host:      outcome.Host,
		URL:       outcome.URL,
		Timestamp: outcome.StartedAt,
		Duration:  outcome.Duration.Seconds(),
	}

	if outcome.Succeeded() {
		c.statuses[outcome.Host] = models.HostStatusReachable
		c.cards = buildCards(c.resolver, outcome.Host, outcome.Targets)
		record.Status = models.HostStatusReachable
		record.TargetCount = len(c.cards)

		c.renderHosts()
		c.renderer.RenderTargets(TargetsView{Host: outcome.Host, Cards: slices.Clone(c.cards)})
	} else {
		c.statuses[outcome.Host] = models.HostStatusError
		c.cards = nil
		record.Status = models.HostStatusError
		record.Message = outcome.Message()

		c.logger.Warn().Err(outcome.Err).Str("host", outcome.Host).Msg("Discovery failed")
		c.renderHosts()
		c.renderer.RenderError(ErrorView{Host: outcome.Host, URL: outcome.URL, Message: outcome.Message()})
	}

	c.recordHistory(record)
}

func (c *Controller) recordHistory(record models.ProbeRecord) {
	if c.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
	defer cancel()
	if err := c.history.RecordProbe(ctx, record); err != nil {
		c.logger.Warn().Err(err).Str("host", record.Host).Msg("Failed to record probe history")
	}
}

func (c *Controller) statusLocked(host string) string {
	if status, ok := c.statuses[host]; ok {
		return status
	}
	return models.HostStatusUnknown
}

// HostsView returns the host list as last rendered.
func (c *Controller) HostsView() HostsView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hostsViewLocked()
}

func (c *Controller) hostsViewLocked() HostsView {
	view := HostsView{
		Hosts:  make([]HostEntry, 0, len(c.hosts)),
		Active: c.active,
	}
	for _, host := range c.hosts {
		view.Hosts = append(view.Hosts, HostEntry{
			Host:   host,
			Status: c.statusLocked(host),
			Active: host == c.active,
		})
	}
	return view
}

func (c *Controller) renderHosts() {
	c.renderer.RenderHosts(c.hostsViewLocked())
}

func (c *Controller) showInputError(message string) {
	c.renderer.RenderInputError(message)

	if c.inputErrorTimer != nil {
		c.inputErrorTimer.Stop()
	}
	c.inputErrorSeq++
	seq := c.inputErrorSeq
	c.inputErrorTimer = time.AfterFunc(c.inputErrorTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if seq == c.inputErrorSeq {
			c.renderer.RenderInputError("")
		}
	})
}

func (c *Controller) saveHosts(ctx context.Context) {
	data, err := json.Marshal(c.hosts)
	if err == nil {
		err = c.store.Set(ctx, map[string]json.RawMessage{HostsKey: data})
	}
	if err != nil {
		c.logger.Warn().Err(common.NewPersistenceError("set", []string{HostsKey}, err)).Msg("Failed to save hosts")
	}
}

func (c *Controller) saveActiveHost(ctx context.Context) {
	data := json.RawMessage("null")
	if c.active != "" {
		encoded, err := json.Marshal(c.active)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to encode active host")
			return
		}
		data = encoded
	}
	if err := c.store.Set(ctx, map[string]json.RawMessage{ActiveHostKey: data}); err != nil {
		c.logger.Warn().Err(common.NewPersistenceError("set", []string{ActiveHostKey}, err)).Msg("Failed to save active host")
	}
}

// decodeHosts keeps the distinct non-empty strings of a stored JSON array.
func decodeHosts(raw json.RawMessage) []string {
	hosts := []string{}
	if len(raw) == 0 {
		return hosts
	}
	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return hosts
	}
	for _, item := range items {
		host, ok := item.(string)
		if ok && host != "" && !slices.Contains(hosts, host) {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

func decodeActiveHost(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var active any
	if err := json.Unmarshal(raw, &active); err != nil {
		return ""
	}
	host, _ := active.(string)
	return host
}
