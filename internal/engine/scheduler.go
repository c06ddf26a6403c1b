package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/observability/metrics"
)

// runFunc executes one sync cycle. force reports whether the run was
// requested by a forced trigger (startup, identity change, user refresh).
type runFunc func(ctx context.Context, force bool)

// Scheduler decides when synchronization runs: on a fixed interval and on
// demand, while enforcing a minimum inter-run cooldown and coalescing
// bursts of triggers into a single debounced run.
type Scheduler struct {
	interval time.Duration
	cooldown time.Duration
	debounce time.Duration
	run      runFunc

	mu           sync.Mutex
	baseCtx      context.Context
	lastRunAt    time.Time
	timer        *time.Timer
	pendingForce bool
	stopped      bool

	quit chan struct{}
	now  func() time.Time
}

func NewScheduler(interval, cooldown, debounce time.Duration, run runFunc) *Scheduler {
	return &Scheduler{
		interval: interval,
		cooldown: cooldown,
		debounce: debounce,
		run:      run,
		baseCtx:  context.Background(),
		quit:     make(chan struct{}),
		now:      time.Now,
	}
}

// Start runs the repeating timer until the context is done or Stop is
// called. It blocks; callers run it in a goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Ctx(ctx).Info().Msgf("Starting sync scheduler with interval %s", s.interval)

	for {
		select {
		case <-ticker.C:
			s.Trigger(false)
		case <-ctx.Done():
			log.Ctx(ctx).Info().Msg("Sync scheduler stopped due to context cancellation")
			s.mu.Lock()
			s.stopped = true
			s.mu.Unlock()
			s.cancelPending()
			return
		case <-s.quit:
			log.Ctx(ctx).Info().Msg("Sync scheduler stopped")
			return
		}
	}
}

// Trigger requests a sync run. Non-forced triggers inside the cooldown
// window are dropped; all surviving triggers are debounced so a burst
// collapses into one run. force bypasses the cooldown but not the
// reader's mutual exclusion.
func (s *Scheduler) Trigger(force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	if !force && s.now().Sub(s.lastRunAt) < s.cooldown {
		metrics.RecordDroppedTrigger()
		return
	}

	s.pendingForce = s.pendingForce || force

	// Each new trigger inside the window resets the delay.
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	ctx := s.baseCtx
	force := s.pendingForce
	s.pendingForce = false
	s.timer = nil
	s.lastRunAt = s.now()
	s.mu.Unlock()

	s.run(ctx, force)
}

// Stop cancels the repeating timer and any pending debounced run. It is
// called on every teardown path, including error paths.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.quit)
	s.cancelPending()
}

func (s *Scheduler) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pendingForce = false
}
