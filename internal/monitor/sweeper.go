package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Ashmit111/secure-scan/internal/store"
)

// Sweeper periodically re-runs a tracked cycle for every website in the
// store, so sites keep their status and alerting without a live session
// watching them.
type Sweeper struct {
	Log         *zap.Logger
	Store       store.StatusStore
	Ctrl        *Controller
	Interval    time.Duration
	Concurrency int
}

func NewSweeper(log *zap.Logger, st store.StatusStore, ctrl *Controller, interval time.Duration, concurrency int) *Sweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	if interval < 0 {
		interval = 0
	}
	return &Sweeper{
		Log:         log,
		Store:       st,
		Ctrl:        ctrl,
		Interval:    interval,
		Concurrency: concurrency,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Stops when ctx is cancelled. Interval 0 disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) {
	if s.Interval == 0 {
		s.Log.Info("sweeper_disabled")
		return
	}
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.Log.Info("sweeper_stopped")
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Sweeper) runOnce(ctx context.Context) {
	sites, err := s.Store.List(ctx)
	if err != nil {
		s.Log.Warn("sweeper_list_error", zap.Error(err))
		return
	}
	if len(sites) == 0 {
		return
	}

	sem := make(chan struct{}, s.Concurrency)
	var wg sync.WaitGroup

	for _, site := range sites {
		w := site
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			// Track takes the stored contact; passing it again here
			// keeps records self-healing if a row predates the field.
			// Cycles abandoned by a shutdown cancel are not errors.
			_, err := s.Ctrl.Track(ctx, w.URL, w.OwnerContact)
			if err != nil && !errors.Is(err, context.Canceled) {
				s.Log.Warn("sweeper_cycle_error",
					zap.String("url", w.URL),
					zap.Error(err),
				)
			}
		}()
	}

	wg.Wait()
}
