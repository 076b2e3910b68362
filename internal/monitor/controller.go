package monitor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/alert"
	"github.com/Ashmit111/secure-scan/internal/domain"
	"github.com/Ashmit111/secure-scan/internal/metrics"
	"github.com/Ashmit111/secure-scan/internal/probe"
	"github.com/Ashmit111/secure-scan/internal/store"
)

// Validation errors surfaced before any probe is attempted.
var (
	ErrEmptyURL   = errors.New("URL is required")
	ErrInvalidURL = errors.New("Invalid URL format")
)

// Report is the boundary shape of one check: always well-formed for a valid
// URL, whether or not the target is up. An unreachable target is data
// (Status 0, Err set), not a failure of the monitor itself.
type Report struct {
	URL          string `json:"url"`
	Status       int    `json:"status"`
	IsUp         bool   `json:"isUp"`
	ResponseTime string `json:"responseTime"`
	Err          string `json:"error,omitempty"`
}

type Config struct {
	CheckTimeout time.Duration // on-demand probe budget
	TrackTimeout time.Duration // tracked-cycle probe budget
	AlertTimeout time.Duration // one alert dispatch; keep below live intervals
}

func (c *Config) applyDefaults() {
	if c.CheckTimeout <= 0 {
		c.CheckTimeout = 10 * time.Second
	}
	if c.TrackTimeout <= 0 {
		c.TrackTimeout = 3 * time.Second
	}
	if c.AlertTimeout <= 0 {
		c.AlertTimeout = 5 * time.Second
	}
}

// Controller runs monitoring cycles: probe, classify against the stored
// status, persist, and alert on a down transition.
type Controller struct {
	log      *zap.Logger
	checker  probe.Checker
	store    store.StatusStore
	notifier alert.Notifier
	cfg      Config

	locks keyedMutex
}

func NewController(log *zap.Logger, checker probe.Checker, st store.StatusStore, notifier alert.Notifier, cfg Config) *Controller {
	cfg.applyDefaults()
	return &Controller{
		log:      log,
		checker:  checker,
		store:    st,
		notifier: notifier,
		cfg:      cfg,
	}
}

// NormalizeURL validates raw and defaults the scheme to https. Idempotent:
// normalizing an already normalized URL returns it unchanged.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || !validHost(u) {
		return "", ErrInvalidURL
	}
	return u.String(), nil
}

// validHost accepts a DNS name, an IPv4 address, or a bracketed IPv6
// address. ParseRequestURI is lenient about garbage hosts (":::" parses
// with a non-empty Host), so this check is what actually rejects them.
func validHost(u *url.URL) bool {
	host := u.Hostname()
	if host == "" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.To4() != nil || strings.HasPrefix(u.Host, "[")
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			default:
				return false
			}
		}
	}
	return true
}

// Check probes once with no side effects.
func (c *Controller) Check(ctx context.Context, rawURL string) (Report, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return Report{}, err
	}

	cctx, cancel := context.WithTimeout(ctx, c.cfg.CheckTimeout)
	defer cancel()
	out := c.checker.Check(cctx, target)
	metrics.ProbeDuration.Observe(out.Latency.Seconds())

	return reportFrom(target, out), nil
}

// Track runs one full cycle: probe, classify, persist, alert if the site
// went down. Only a persistence failure fails the cycle; an alert failure is
// logged and absorbed. Cycles for the same URL are serialized, distinct URLs
// run in parallel.
func (c *Controller) Track(ctx context.Context, rawURL, ownerContact string) (Report, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return Report{}, err
	}

	unlock := c.locks.lock(target)
	defer unlock()

	cctx, cancel := context.WithTimeout(ctx, c.cfg.TrackTimeout)
	defer cancel()
	out := c.checker.Check(cctx, target)
	if err := ctx.Err(); err != nil {
		// the caller is stopping or shutting down; an aborted probe says
		// nothing about the site, so the cycle is abandoned before it can
		// record a false DOWN or alert the owner
		return Report{}, err
	}
	metrics.ProbeDuration.Observe(out.Latency.Seconds())
	isUp := probe.IsUp(out)

	var prev *domain.Status
	prior, err := c.store.Get(ctx, target)
	switch {
	case err == nil:
		prev = &prior.Status
	case errors.Is(err, store.ErrNotFound):
		// first-ever check for this URL
	default:
		metrics.Checks.WithLabelValues("error").Inc()
		return Report{}, fmt.Errorf("read status for %s: %w", target, err)
	}
	tr := domain.Classify(prev, isUp)

	entry := domain.LogEntry{
		Timestamp:    time.Now().UTC(),
		Status:       domain.StatusFor(isUp),
		ResponseTime: out.Latency,
		Reached:      out.Reached,
	}
	site, err := c.store.Upsert(ctx, target, ownerContact,
		entry.Status, domain.FormatLatency(out.Latency, out.Reached), entry)
	if err != nil {
		metrics.Checks.WithLabelValues("error").Inc()
		return Report{}, fmt.Errorf("record check for %s: %w", target, err)
	}

	if isUp {
		metrics.Checks.WithLabelValues("up").Inc()
	} else {
		metrics.Checks.WithLabelValues("down").Inc()
	}
	if tr != domain.NoChange {
		metrics.Transitions.WithLabelValues(tr.String()).Inc()
	}

	c.log.Info("cycle_checked",
		zap.String("url", target),
		zap.Bool("up", isUp),
		zap.Int("status", out.StatusCode),
		zap.Duration("latency", out.Latency),
		zap.String("transition", tr.String()),
	)

	if tr == domain.WentDown {
		c.sendAlert(site.OwnerContact, target, downReason(out))
	}

	return reportFrom(target, out), nil
}

// sendAlert makes exactly one delivery attempt under its own timeout so a
// slow transport cannot stall the cycle past the next tick. Failures are
// logged, never returned.
func (c *Controller) sendAlert(contact, target, reason string) {
	if c.notifier == nil {
		return
	}
	if contact == "" {
		metrics.Alerts.WithLabelValues("skipped").Inc()
		c.log.Info("alert_skipped_no_contact", zap.String("url", target))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.AlertTimeout)
	defer cancel()
	if err := c.notifier.Send(ctx, contact, target, reason); err != nil {
		metrics.Alerts.WithLabelValues("failed").Inc()
		c.log.Warn("alert_send_failed",
			zap.String("url", target),
			zap.String("contact", contact),
			zap.Error(err),
		)
		return
	}
	metrics.Alerts.WithLabelValues("sent").Inc()
	c.log.Info("alert_sent", zap.String("url", target))
}

func downReason(o probe.Outcome) string {
	if !o.Reached {
		if o.Err != "" {
			return o.Err
		}
		return "unreachable"
	}
	return fmt.Sprintf("HTTP %d", o.StatusCode)
}

func reportFrom(target string, o probe.Outcome) Report {
	if !o.Reached {
		return Report{
			URL:          target,
			Status:       0,
			IsUp:         false,
			ResponseTime: "0ms",
			Err:          o.Err,
		}
	}
	return Report{
		URL:          target,
		Status:       o.StatusCode,
		IsUp:         probe.IsUp(o),
		ResponseTime: domain.FormatLatency(o.Latency, true),
	}
}

// keyedMutex hands out one mutex per URL. Entries are never evicted; the key
// space is the set of monitored URLs.
type keyedMutex struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.m == nil {
		k.m = make(map[string]*sync.Mutex)
	}
	inner := k.m[key]
	if inner == nil {
		inner = &sync.Mutex{}
		k.m[key] = inner
	}
	k.mu.Unlock()

	inner.Lock()
	return inner.Unlock
}
