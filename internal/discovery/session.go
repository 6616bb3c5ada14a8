package discovery

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aleister1102/devtargets/internal/hostaddr"
	"github.com/aleister1102/devtargets/internal/targets"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one discovery session.
const DefaultTimeout = 10 * time.Second

// State is the lifecycle position of a Session.
type State int32

const (
	StateIdle State = iota
	StateRequesting
	StateSucceeded
	StateFailed
	StateSuperseded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Outcome is the settled result of an authoritative session.
type Outcome struct {
	SessionID string
	Host      string
	URL       string
	// Targets is set on success, possibly empty.
	Targets []targets.Descriptor
	// Err is the classified failure, nil on success.
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the probe returned a target list.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Message is the user-facing failure text, empty on success.
func (o Outcome) Message() string {
	return Message(o.Err)
}

// SettleFunc receives the outcome of a session that is still authoritative.
// It runs with the tracker's lock held.
type SettleFunc func(s *Session, outcome Outcome)

// Tracker owns the single live discovery session. It shares its lock with the
// owner of the state a session settles into, so a session's effects are
// applied atomically with the check that it is still current.
type Tracker struct {
	mu         sync.Locker
	prober     *Prober
	timeout    time.Duration
	logger     zerolog.Logger
	generation uint64
	live       *Session
	wg         sync.WaitGroup
}

// NewTracker creates a tracker. A non-positive timeout selects DefaultTimeout.
func NewTracker(mu sync.Locker, prober *Prober, timeout time.Duration, logger zerolog.Logger) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{
		mu:      mu,
		prober:  prober,
		timeout: timeout,
		logger:  logger.With().Str("component", "DiscoveryTracker").Logger(),
	}
}

// Begin supersedes the live session, if any, and starts probing host in a new
// one. The caller must hold the tracker's lock. settle is invoked at most once.
func (t *Tracker) Begin(host string, settle SettleFunc) *Session {
	if t.live != nil {
		t.live.supersede()
	}

	t.generation++
	ctx, cancel := context.WithCancelCause(context.Background())
	s := &Session{
		ID:         uuid.New().String(),
		Host:       host,
		URL:        hostaddr.DiscoveryURL(host),
		generation: t.generation,
		tracker:    t,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		startedAt:  time.Now(),
	}
	s.state.Store(int32(StateRequesting))
	timeout := t.timeout
	s.timer = time.AfterFunc(timeout, func() {
		cancel(&deadlineError{timeout: timeout})
	})
	t.live = s

	t.logger.Debug().
		Str("session_id", s.ID).
		Str("host", host).
		Uint64("generation", s.generation).
		Dur("timeout", timeout).
		Msg("Discovery session started")

	t.wg.Add(1)
	go s.run(settle)
	return s
}

// Cancel supersedes the live session without starting another. The caller
// must hold the tracker's lock.
func (t *Tracker) Cancel() {
	if t.live != nil {
		t.live.supersede()
		t.live = nil
		t.generation++
	}
}

// Live returns the authoritative session, nil when none is in flight. The
// caller must hold the tracker's lock.
func (t *Tracker) Live() *Session {
	return t.live
}

// Generation is the number of sessions begun or cancelled so far. The caller
// must hold the tracker's lock.
func (t *Tracker) Generation() uint64 {
	return t.generation
}

// Wait blocks until every session goroutine has returned. It must be called
// without the tracker's lock.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Session is one attempt to fetch and classify a host's target list.
type Session struct {
	ID   string
	Host string
	URL  string

	generation uint64
	tracker    *Tracker
	ctx        context.Context
	cancel     context.CancelCauseFunc
	timer      *time.Timer
	state      atomic.Int32
	done       chan struct{}
	startedAt  time.Time
	outcome    Outcome
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done is closed once the session has settled or been discarded.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session is finished or ctx ends.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcome returns the settled result. It is meaningful once Done is closed
// and the state is StateSucceeded or StateFailed.
func (s *Session) Outcome() Outcome {
	return s.outcome
}

func (s *Session) supersede() {
	s.state.Store(int32(StateSuperseded))
	s.timer.Stop()
	s.cancel(ErrSuperseded)
}

func (s *Session) run(settle SettleFunc) {
	defer s.tracker.wg.Done()
	defer close(s.done)

	descriptors, err := s.tracker.prober.Probe(s.ctx, s.Host)
	s.timer.Stop()

	outcome := Outcome{
		SessionID: s.ID,
		Host:      s.Host,
		URL:       s.URL,
		Targets:   descriptors,
		Err:       err,
		StartedAt: s.startedAt,
		Duration:  time.Since(s.startedAt),
	}

	t := s.tracker
	t.mu.Lock()
	defer t.mu.Unlock()

	if s.generation != t.generation || t.live != s {
		s.state.Store(int32(StateSuperseded))
		t.logger.Debug().
			Str("session_id", s.ID).
			Str("host", s.Host).
			Uint64("generation", s.generation).
			Msg("Discarding superseded discovery session")
		return
	}

	t.live = nil
	s.cancel(nil)
	s.outcome = outcome
	if outcome.Succeeded() {
		s.state.Store(int32(StateSucceeded))
		t.logger.Debug().
			Str("session_id", s.ID).
			Str("host", s.Host).
			Int("targets", len(descriptors)).
			Dur("duration", outcome.Duration).
			Msg("Discovery session succeeded")
	} else {
		s.state.Store(int32(StateFailed))
		t.logger.Debug().
			Err(err).
			Str("session_id", s.ID).
			Str("host", s.Host).
			Dur("duration", outcome.Duration).
			Msg("Discovery session failed")
	}

	if settle != nil {
		settle(s, outcome)
	}
}
