package registry

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/devtargets/internal/discovery"
	"github.com/aleister1102/devtargets/internal/httpclient"
	"github.com/aleister1102/devtargets/internal/models"
	"github.com/aleister1102/devtargets/internal/targets"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	values  map[string]json.RawMessage
	failGet bool
	failSet bool
	sets    int
}

func newMemStore() *memStore {
	return &memStore{values: make(map[string]json.RawMessage)}
}

func (s *memStore) Get(_ context.Context, keys []string) (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return nil, errors.New("store unavailable")
	}
	out := make(map[string]json.RawMessage)
	for _, key := range keys {
		if v, ok := s.values[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func (s *memStore) Set(_ context.Context, values map[string]json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	if s.failSet {
		return errors.New("quota exceeded")
	}
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

func (s *memStore) raw(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.values[key])
}

type recordingRenderer struct {
	mu          sync.Mutex
	events      []string
	hosts       []HostsView
	targets     []TargetsView
	errors      []ErrorView
	inputErrors []string
}

func (r *recordingRenderer) RenderHosts(view HostsView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "hosts")
	r.hosts = append(r.hosts, view)
}

func (r *recordingRenderer) RenderLoading(host string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "loading:"+host)
}

func (r *recordingRenderer) RenderTargets(view TargetsView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "targets:"+view.Host)
	r.targets = append(r.targets, view)
}

func (r *recordingRenderer) RenderError(view ErrorView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "error:"+view.Host)
	r.errors = append(r.errors, view)
}

func (r *recordingRenderer) RenderEmpty() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "empty")
}

func (r *recordingRenderer) RenderInputError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "input:"+message)
	r.inputErrors = append(r.inputErrors, message)
}

func (r *recordingRenderer) snapshot() (events []string, targetViews []TargetsView, errorViews []ErrorView, inputErrors []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...),
		append([]TargetsView(nil), r.targets...),
		append([]ErrorView(nil), r.errors...),
		append([]string(nil), r.inputErrors...)
}

func (r *recordingRenderer) lastHosts() HostsView {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hosts) == 0 {
		return HostsView{}
	}
	return r.hosts[len(r.hosts)-1]
}

type fakeLauncher struct {
	mu     sync.Mutex
	opened []string
	copied []string
	err    error
}

func (l *fakeLauncher) OpenEmbedded(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, url)
	return l.err
}

func (l *fakeLauncher) CopyHosted(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.copied = append(l.copied, url)
	return l.err
}

type fakeHistory struct {
	mu      sync.Mutex
	records []models.ProbeRecord
}

func (h *fakeHistory) RecordProbe(_ context.Context, record models.ProbeRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *fakeHistory) all() []models.ProbeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.ProbeRecord(nil), h.records...)
}

// hostFetcher answers discovery requests per URL. A gated URL blocks until its
// gate is closed and ignores cancellation, like a response already in flight.
type hostFetcher struct {
	mu        sync.Mutex
	responses map[string]*httpclient.HTTPResponse
	gates     map[string]chan struct{}
	hang      map[string]bool
}

func newHostFetcher() *hostFetcher {
	return &hostFetcher{
		responses: make(map[string]*httpclient.HTTPResponse),
		gates:     make(map[string]chan struct{}),
		hang:      make(map[string]bool),
	}
}

func (f *hostFetcher) respond(host string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses["http://"+host+"/json"] = &httpclient.HTTPResponse{StatusCode: status, Body: []byte(body)}
}

func (f *hostFetcher) gate(host string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates["http://"+host+"/json"] = ch
	return ch
}

func (f *hostFetcher) hangUntilCancelled(host string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hang["http://"+host+"/json"] = true
}

func (f *hostFetcher) Get(ctx context.Context, url string) (*httpclient.HTTPResponse, error) {
	f.mu.Lock()
	gate := f.gates[url]
	hang := f.hang[url]
	resp := f.responses[url]
	f.mu.Unlock()

	if hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if gate != nil {
		<-gate
	}
	if resp == nil {
		return nil, errors.New("connection refused")
	}
	return resp, nil
}

type harness struct {
	controller *Controller
	store      *memStore
	renderer   *recordingRenderer
	launcher   *fakeLauncher
	history    *fakeHistory
	fetcher    *hostFetcher
}

func newHarness(t *testing.T, configure func(b *ControllerBuilder)) *harness {
	t.Helper()
	h := &harness{
		store:    newMemStore(),
		renderer: &recordingRenderer{},
		launcher: &fakeLauncher{},
		history:  &fakeHistory{},
		fetcher:  newHostFetcher(),
	}
	builder := NewControllerBuilder(zerolog.Nop()).
		WithStore(h.store).
		WithRenderer(h.renderer).
		WithLauncher(h.launcher).
		WithHistory(h.history).
		WithResolver(targets.NewResolver(targets.FrontendOptions{EmbeddedBaseURL: "file:///opt/devtargets/devtools"})).
		WithProber(discovery.NewProber(h.fetcher, zerolog.Nop())).
		WithTimeout(time.Second)
	if configure != nil {
		configure(builder)
	}
	controller, err := builder.Build()
	require.NoError(t, err)
	h.controller = controller
	t.Cleanup(controller.Close)
	return h
}

func waitSession(t *testing.T, s *discovery.Session) {
	t.Helper()
	require.NotNil(t, s)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}
