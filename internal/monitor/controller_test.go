package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/alert"
	"github.com/Ashmit111/secure-scan/internal/domain"
	"github.com/Ashmit111/secure-scan/internal/probe"
	"github.com/Ashmit111/secure-scan/internal/store"
	"github.com/Ashmit111/secure-scan/internal/store/memory"
)

// ---- shared fakes ----

type fakeChecker struct {
	mu  sync.Mutex
	out probe.Outcome
}

func (f *fakeChecker) Check(_ context.Context, _ string) probe.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out
}

func (f *fakeChecker) set(out probe.Outcome) {
	f.mu.Lock()
	f.out = out
	f.mu.Unlock()
}

// blockingChecker parks every probe until its context is cancelled, then
// reports the cancellation as an unreached outcome.
type blockingChecker struct {
	started chan struct{} // receives once per probe that begins
}

func (b *blockingChecker) Check(ctx context.Context, _ string) probe.Outcome {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return probe.Outcome{Err: ctx.Err().Error()}
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []string // "contact|url|reason"
	err   error
}

func (n *fakeNotifier) Send(_ context.Context, contact, url, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, contact+"|"+url+"|"+reason)
	return n.err
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type failingStore struct {
	store.StatusStore
}

func (f *failingStore) Upsert(context.Context, string, string, domain.Status, string, domain.LogEntry) (*domain.Website, error) {
	return nil, errors.New("disk on fire")
}

func upOutcome(status int, lat time.Duration) probe.Outcome {
	return probe.Outcome{Reached: true, StatusCode: status, Latency: lat}
}

var timeoutOutcome = probe.Outcome{Reached: false, Err: "context deadline exceeded"}

func newTestController(chk probe.Checker, st store.StatusStore, nt *fakeNotifier) *Controller {
	var notifier alert.Notifier
	if nt != nil {
		notifier = nt
	}
	return NewController(zap.NewNop(), chk, st, notifier, Config{
		CheckTimeout: time.Second,
		TrackTimeout: time.Second,
		AlertTimeout: time.Second,
	})
}

// ---- NormalizeURL ----

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"example.com", "https://example.com", nil},
		{"https://example.com", "https://example.com", nil},
		{"http://example.com/path", "http://example.com/path", nil},
		{"  example.com  ", "https://example.com", nil},
		{"https://[::1]:8443/health", "https://[::1]:8443/health", nil},
		{"", "", ErrEmptyURL},
		{"https://", "", ErrInvalidURL},
		{":::", "", ErrInvalidURL},
		{"not_a_host!", "", ErrInvalidURL},
		{"https://bad-.example.com", "", ErrInvalidURL},
	}
	for _, c := range cases {
		got, err := NormalizeURL(c.in)
		if !errors.Is(err, c.wantErr) {
			t.Fatalf("%q: want err %v, got %v", c.in, c.wantErr, err)
		}
		if got != c.want {
			t.Fatalf("%q: want %q, got %q", c.in, c.want, got)
		}
	}

	// idempotence: a normalized URL normalizes to itself
	once, _ := NormalizeURL("example.com/a?b=1")
	twice, err := NormalizeURL(once)
	if err != nil || twice != once {
		t.Fatalf("not idempotent: %q -> %q (%v)", once, twice, err)
	}
}

// ---- Check (on-demand) ----

func TestCheck_UpReport(t *testing.T) {
	chk := &fakeChecker{out: upOutcome(200, 120*time.Millisecond)}
	c := newTestController(chk, memory.New(), nil)

	rep, err := c.Check(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	want := Report{URL: "https://example.com", Status: 200, IsUp: true, ResponseTime: "120ms"}
	if rep != want {
		t.Fatalf("want %+v, got %+v", want, rep)
	}
}

func TestCheck_DownIsDataNotError(t *testing.T) {
	chk := &fakeChecker{out: timeoutOutcome}
	c := newTestController(chk, memory.New(), nil)

	rep, err := c.Check(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("a down target must not error the boundary: %v", err)
	}
	if rep.IsUp || rep.Status != 0 || rep.ResponseTime != "0ms" || rep.Err == "" {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestCheck_ValidationErrors(t *testing.T) {
	c := newTestController(&fakeChecker{}, memory.New(), nil)
	if _, err := c.Check(context.Background(), ""); !errors.Is(err, ErrEmptyURL) {
		t.Fatalf("want ErrEmptyURL, got %v", err)
	}
	if _, err := c.Check(context.Background(), "https://"); !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("want ErrInvalidURL, got %v", err)
	}
}

// ---- Track (full cycle) ----

func TestTrack_PersistsAndNoAlertWhileUp(t *testing.T) {
	chk := &fakeChecker{out: upOutcome(200, 80*time.Millisecond)}
	st := memory.New()
	nt := &fakeNotifier{}
	c := newTestController(chk, st, nt)

	rep, err := c.Track(context.Background(), "example.com", "owner@example.com")
	if err != nil {
		t.Fatalf("Track: %v", err)
	}
	if !rep.IsUp || rep.URL != "https://example.com" {
		t.Fatalf("unexpected report: %+v", rep)
	}

	site, err := st.Get(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("record missing: %v", err)
	}
	if site.Status != domain.StatusUp || site.OwnerContact != "owner@example.com" {
		t.Fatalf("unexpected record: %+v", site)
	}
	if nt.count() != 0 {
		t.Fatalf("no alert while up, got %d", nt.count())
	}
}

func TestTrack_WentDownAlertsOnce(t *testing.T) {
	chk := &fakeChecker{out: upOutcome(200, 50*time.Millisecond)}
	st := memory.New()
	nt := &fakeNotifier{}
	c := newTestController(chk, st, nt)
	ctx := context.Background()

	// cycle 1: up
	if _, err := c.Track(ctx, "example.com", "owner@example.com"); err != nil {
		t.Fatal(err)
	}

	// cycle 2: times out -> DOWN, alert exactly once
	chk.set(timeoutOutcome)
	if _, err := c.Track(ctx, "example.com", "owner@example.com"); err != nil {
		t.Fatal(err)
	}
	if nt.count() != 1 {
		t.Fatalf("want exactly 1 alert, got %d", nt.count())
	}

	site, _ := st.Get(ctx, "https://example.com")
	if site.Status != domain.StatusDown || site.ResponseTime != "N/A" {
		t.Fatalf("down cycle not persisted as expected: %+v", site)
	}
	logs, _ := st.History(ctx, "https://example.com", 0)
	last := logs[len(logs)-1]
	if last.Status != domain.StatusDown || last.Reached {
		t.Fatalf("last log entry should be an unreached DOWN: %+v", last)
	}

	// cycle 3: still down -> NoChange, no second alert
	if _, err := c.Track(ctx, "example.com", "owner@example.com"); err != nil {
		t.Fatal(err)
	}
	if nt.count() != 1 {
		t.Fatalf("consecutive DOWN must not re-alert, got %d", nt.count())
	}

	// cycle 4: recovery -> no down-alert either
	chk.set(upOutcome(200, 40*time.Millisecond))
	if _, err := c.Track(ctx, "example.com", "owner@example.com"); err != nil {
		t.Fatal(err)
	}
	if nt.count() != 1 {
		t.Fatalf("recovery must not send a down alert, got %d", nt.count())
	}
}

func TestTrack_FirstCheckDownAlerts(t *testing.T) {
	chk := &fakeChecker{out: probe.Outcome{Reached: true, StatusCode: 503, Latency: 30 * time.Millisecond}}
	nt := &fakeNotifier{}
	c := newTestController(chk, memory.New(), nt)

	if _, err := c.Track(context.Background(), "example.com", "owner@example.com"); err != nil {
		t.Fatal(err)
	}
	if nt.count() != 1 {
		t.Fatalf("first-ever DOWN should alert, got %d", nt.count())
	}
	if nt.calls[0] != "owner@example.com|https://example.com|HTTP 503" {
		t.Fatalf("unexpected alert call: %q", nt.calls[0])
	}
}

func TestTrack_EmptyContactNeverTouchesTransport(t *testing.T) {
	chk := &fakeChecker{out: timeoutOutcome}
	nt := &fakeNotifier{}
	c := newTestController(chk, memory.New(), nt)

	rep, err := c.Track(context.Background(), "example.com", "")
	if err != nil {
		t.Fatalf("cycle must succeed without a contact: %v", err)
	}
	if rep.IsUp {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if nt.count() != 0 {
		t.Fatalf("transport must not be called with an empty contact, got %d", nt.count())
	}
}

func TestTrack_AlertFailureDoesNotFailCycle(t *testing.T) {
	chk := &fakeChecker{out: timeoutOutcome}
	st := memory.New()
	nt := &fakeNotifier{err: errors.New("smtp rejected")}
	c := newTestController(chk, st, nt)

	if _, err := c.Track(context.Background(), "example.com", "owner@example.com"); err != nil {
		t.Fatalf("alert failure must be absorbed: %v", err)
	}
	if _, err := st.Get(context.Background(), "https://example.com"); err != nil {
		t.Fatalf("result must still be persisted: %v", err)
	}
}

func TestTrack_PersistenceFailureIsFatal(t *testing.T) {
	chk := &fakeChecker{out: upOutcome(200, 10*time.Millisecond)}
	nt := &fakeNotifier{}
	c := newTestController(chk, &failingStore{StatusStore: memory.New()}, nt)

	_, err := c.Track(context.Background(), "example.com", "owner@example.com")
	if err == nil {
		t.Fatal("persistence failure must fail the cycle")
	}
	// distinguishable from validation problems
	if errors.Is(err, ErrEmptyURL) || errors.Is(err, ErrInvalidURL) {
		t.Fatalf("wrong error class: %v", err)
	}
}

func TestTrack_CallerCancelAbandonsCycle(t *testing.T) {
	st := memory.New()
	nt := &fakeNotifier{}
	seed := newTestController(&fakeChecker{out: upOutcome(200, 20*time.Millisecond)}, st, nt)
	if _, err := seed.Track(context.Background(), "example.com", "owner@example.com"); err != nil {
		t.Fatal(err)
	}

	bc := &blockingChecker{started: make(chan struct{}, 1)}
	c := newTestController(bc, st, nt)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := c.Track(ctx, "example.com", "owner@example.com")
		errs <- err
	}()
	<-bc.started
	cancel()

	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	site, err := st.Get(context.Background(), "https://example.com")
	if err != nil {
		t.Fatal(err)
	}
	if site.Status != domain.StatusUp {
		t.Fatalf("aborted probe must not mark a healthy site down: %+v", site)
	}
	logs, _ := st.History(context.Background(), "https://example.com", 0)
	if len(logs) != 1 {
		t.Fatalf("aborted cycle must not append a log entry, got %d", len(logs))
	}
	if nt.count() != 0 {
		t.Fatalf("aborted cycle must not alert, got %d", nt.count())
	}
}

func TestTrack_DoubleUpsertAppendsTwoEntries(t *testing.T) {
	chk := &fakeChecker{out: upOutcome(204, 15*time.Millisecond)}
	st := memory.New()
	c := newTestController(chk, st, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := c.Track(ctx, "example.com", "o@e.com"); err != nil {
			t.Fatal(err)
		}
	}
	logs, err := st.History(ctx, "https://example.com", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 {
		t.Fatalf("identical cycles must append distinct entries, got %d", len(logs))
	}
}
