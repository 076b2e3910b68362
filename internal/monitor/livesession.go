package monitor

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultLiveInterval is the tick between live-session cycles.
	DefaultLiveInterval = 5 * time.Second
	// DefaultWindowCap bounds the rolling history a session keeps.
	DefaultWindowCap = 50
)

// CycleResult is one live-session cycle as seen by the client: the boundary
// report plus the persistence error, if the cycle failed to record.
type CycleResult struct {
	Report Report
	Err    error
	At     time.Time
}

// LiveSession repeatedly tracks one URL at a fixed interval, keeping a
// bounded rolling window of results for presentation. The window is the
// session's own; the store keeps the durable history.
//
// One timer per session: Start while running replaces the old timer, Stop is
// idempotent and safe after natural completion.
type LiveSession struct {
	ctrl     *Controller
	url      string
	contact  string
	interval time.Duration
	cap      int

	// OnCycle, when set before Start, observes every cycle (used by the
	// watch CLI to print live output).
	OnCycle func(CycleResult)

	mu      sync.Mutex
	history []CycleResult
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLiveSession(ctrl *Controller, url, contact string, interval time.Duration, windowCap int) *LiveSession {
	if interval <= 0 {
		interval = DefaultLiveInterval
	}
	if windowCap <= 0 {
		windowCap = DefaultWindowCap
	}
	return &LiveSession{
		ctrl:     ctrl,
		url:      url,
		contact:  contact,
		interval: interval,
		cap:      windowCap,
	}
}

// Start runs one cycle immediately, then one per tick, until Stop or ctx
// cancellation. If the session is already running its timer is stopped
// first, so there is never more than one. Safe for concurrent use: the
// swap of the running loop is atomic, so racing Starts cannot leak a timer.
func (s *LiveSession) Start(ctx context.Context) {
	s.mu.Lock()
	prevCancel, prevDone := s.cancel, s.done
	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	// the old loop, if any, fully stops before the new one begins
	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}
	go s.run(cctx, done)
}

// Stop synchronously prevents any further cycle from starting. A cycle in
// flight is abandoned by the controller before it can persist or alert;
// its cancelled result still lands in the window. Safe to call more than
// once and after the session has already ended.
func (s *LiveSession) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// History returns a copy of the rolling window, oldest-first. After more
// than cap cycles the window holds exactly the cap newest results.
func (s *LiveSession) History() []CycleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CycleResult, len(s.history))
	copy(out, s.history)
	return out
}

func (s *LiveSession) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	if ctx.Err() != nil {
		return
	}
	s.cycle(ctx)

	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			// a tick racing the stop must not fire
			if ctx.Err() != nil {
				return
			}
			s.cycle(ctx)
		}
	}
}

func (s *LiveSession) cycle(ctx context.Context) {
	rep, err := s.ctrl.Track(ctx, s.url, s.contact)
	res := CycleResult{Report: rep, Err: err, At: time.Now().UTC()}

	s.mu.Lock()
	s.history = append(s.history, res)
	if len(s.history) > s.cap {
		s.history = s.history[len(s.history)-s.cap:]
	}
	s.mu.Unlock()

	if s.OnCycle != nil {
		s.OnCycle(res)
	}
}
