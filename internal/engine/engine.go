package engine

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/stakelens/stakesync/internal/clients/chainclient"
	"github.com/stakelens/stakesync/internal/config"
	"github.com/stakelens/stakesync/internal/db"
	"github.com/stakelens/stakesync/internal/eligibility"
	"github.com/stakelens/stakesync/internal/observability/metrics"
	"github.com/stakelens/stakesync/internal/observability/tracing"
	"github.com/stakelens/stakesync/internal/reward"
	"github.com/stakelens/stakesync/internal/types"
)

// Engine mirrors the authoritative ledger state of one identity into a
// locally consistent view. It is a parameterized instance of the sync
// protocol: interval, cooldown and debounce come from configuration, and
// each engine owns its own sequencer, fallback store and estimator.
//
// Writers funnel through commit, guarded by the token check; readers may
// call View concurrently at any time.
type Engine struct {
	cfg        config.SyncConfig
	seq        *Sequencer
	reader     *Reader
	fallback   *FallbackStore
	scheduler  *Scheduler
	estimator  *reward.Estimator
	reconciler *eligibility.Reconciler

	mu          sync.RWMutex
	identity    string
	snapshot    EntitySetSnapshot
	entities    map[uint64]ObservedEntity
	views       map[uint64]eligibility.View
	window      time.Duration
	loading     bool
	initialized bool
	lastError   types.ErrorKind

	wg conc.WaitGroup
}

func NewEngine(
	cfg config.SyncConfig,
	rewardCfg config.RewardConfig,
	address string,
	chain chainclient.ChainInterface,
	durable db.DbInterface,
	sink eligibility.DiagnosticSink,
) *Engine {
	seq := NewSequencer()
	fallback := NewFallbackStore(durable)

	e := &Engine{
		cfg:        cfg,
		seq:        seq,
		reader:     NewReader(chain, fallback, seq),
		fallback:   fallback,
		estimator:  reward.NewEstimator(address, rewardCfg.TickInterval),
		reconciler: eligibility.NewReconciler(sink),
		identity:   address,
		entities:   make(map[uint64]ObservedEntity),
		views:      make(map[uint64]eligibility.View),
	}
	e.scheduler = NewScheduler(cfg.PollingInterval, cfg.Cooldown, cfg.DebounceWindow, e.runCycle)
	return e
}

// Start launches the scheduler and the estimator tick, then fires the
// first forced sync. It returns immediately; Stop tears everything down.
func (e *Engine) Start(ctx context.Context) {
	ctx = tracing.WithIdentity(ctx, e.identity)

	// Seed the view from the durable store so a restart shows
	// stale-but-present data before the first live read lands. The
	// activity window is only known after the first live params read, so
	// restored views carry the chain-exact predicate only.
	if snapshot, entities, ok := e.fallback.Get(ctx, e.identity); ok {
		views := make(map[uint64]eligibility.View, len(entities))
		for id, entity := range entities {
			views[id] = eligibility.RestoredView(entity.RawStatus)
		}
		e.mu.Lock()
		e.snapshot = snapshot
		e.entities = entities
		e.views = views
		e.mu.Unlock()
		log.Ctx(ctx).Info().
			Int("units", len(snapshot.UnitIDs)).
			Msg("restored persisted snapshot")
	}

	e.wg.Go(func() {
		e.scheduler.Start(tracing.WithComponent(ctx, "scheduler"))
	})
	e.wg.Go(func() {
		e.estimator.Start(tracing.WithComponent(ctx, "estimator"))
	})

	// First run after start bypasses the cooldown.
	e.scheduler.Trigger(true)
}

// Stop cancels timers and waits for background goroutines to exit.
func (e *Engine) Stop() {
	e.scheduler.Stop()
	e.estimator.Stop()
	e.wg.Wait()
}

// ForceRefresh requests an immediate sync, bypassing the cooldown but
// not the reader's mutual exclusion.
func (e *Engine) ForceRefresh() {
	e.scheduler.Trigger(true)
}

// SetIdentity switches the engine to a new identity. All derived state
// is invalidated and a forced sync is scheduled. An empty address parks
// the engine in the IdentityUnavailable state.
func (e *Engine) SetIdentity(ctx context.Context, address string) {
	e.mu.Lock()
	if e.identity == address {
		e.mu.Unlock()
		return
	}
	previous := e.identity
	e.identity = address
	e.snapshot = EntitySetSnapshot{}
	e.entities = make(map[uint64]ObservedEntity)
	e.views = make(map[uint64]eligibility.View)
	e.initialized = false
	e.loading = false
	if address == "" {
		e.lastError = types.ErrorKindIdentityUnavailable
	} else {
		e.lastError = types.ErrorKindNone
	}
	e.mu.Unlock()

	// Invalidate every in-flight cycle; their results are for the old
	// identity.
	e.seq.Begin()

	if address == "" {
		// Identity loss: the old identity's cached snapshots go too.
		e.fallback.Clear(ctx, previous)
		return
	}
	e.scheduler.Trigger(true)
}

// View returns the current read-only consumer snapshot.
func (e *Engine) View() View {
	e.mu.RLock()
	defer e.mu.RUnlock()

	views := make(map[uint64]eligibility.View, len(e.views))
	for id, v := range e.views {
		views[id] = v
	}

	return View{
		Loading:       e.loading,
		Initialized:   e.initialized,
		LastError:     e.lastError,
		Entities:      e.snapshot.Clone(),
		Eligibility:   views,
		AllEligible:   eligibility.AllEligible(views),
		AnyReady:      eligibility.AnyReady(views),
		EligibleIDs:   eligibility.EligibleIDs(views),
		AccruedReward: e.estimator.Current(),
		AccrualState:  string(e.estimator.State()),
	}
}

// runCycle is the scheduler's run function: one full synchronization
// cycle from token allocation to commit.
func (e *Engine) runCycle(ctx context.Context, force bool) {
	e.mu.Lock()
	address := e.identity
	if address == "" {
		e.lastError = types.ErrorKindIdentityUnavailable
		e.mu.Unlock()
		return
	}
	e.loading = true
	prev := cloneEntities(e.entities)
	e.mu.Unlock()

	log.Ctx(ctx).Debug().Bool("force", force).Msg("starting sync cycle")

	start := time.Now()
	//nolint:errcheck
	metrics.RecordPollerDuration("sync", func(ctx context.Context) error {
		// The token is allocated inside ReadAll, after mutual exclusion
		// is won: a trigger dropped by an in-flight read must not
		// invalidate the cycle it lost to.
		outcome := e.reader.ReadAll(ctx, address, e.seq.Begin, prev)
		if outcome == nil {
			// Dropped by mutual exclusion; the in-flight cycle owns
			// the loading flag.
			return nil
		}
		e.commit(ctx, address, outcome.Token, outcome, time.Since(start))
		return outcome.Err
	})(ctx)
}

func (e *Engine) commit(ctx context.Context, address string, token uint64, outcome *ReadOutcome, duration time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// Results commit in logical trigger order, not completion order: a
	// slow older cycle that completes after a newer one must lose.
	if outcome.Superseded || !e.seq.IsCurrent(token) || e.identity != address {
		metrics.RecordSupersededCycle()
		log.Ctx(ctx).Debug().Uint64("token", token).Msg("discarding superseded sync cycle")
		return
	}

	e.loading = false

	if outcome.Err != nil {
		// Live read failed with nothing to fall back to. Derived state
		// is retained as-is; initialized does not flip back.
		e.lastError = types.ErrorKindReadFailedNoFallback
		log.Ctx(ctx).Error().Err(outcome.Err).Msg("sync cycle failed with no fallback")
		return
	}

	if outcome.Params != nil {
		e.window = outcome.Params.ActivityWindow
	}

	// A stale snapshot never replaces a fresh one of later fetchedAt.
	if outcome.Snapshot.Validity == types.ValidityStale &&
		e.snapshot.Validity == types.ValidityFresh &&
		e.snapshot.FetchedAt.After(outcome.Snapshot.FetchedAt) {
		e.lastError = types.ErrorKindTransientRead
		return
	}

	e.snapshot = outcome.Snapshot
	e.entities = outcome.Entities

	now := time.Now()
	views := make(map[uint64]eligibility.View, len(outcome.Entities))
	for id, entity := range outcome.Entities {
		views[id] = e.reconciler.Reconcile(ctx, entity.RawStatus, e.window, now)
	}
	e.views = views

	if outcome.Snapshot.Validity == types.ValidityFresh {
		e.initialized = true
		e.lastError = types.ErrorKindNone
	} else {
		e.lastError = types.ErrorKindTransientRead
	}

	if outcome.Params != nil && outcome.Accrued != nil {
		e.estimator.Update(ctx, reward.Base{
			Amount:            *outcome.Accrued,
			RatePerUnitPerSec: outcome.Params.RatePerUnitPerSec,
			UnitCount:         int64(len(outcome.Snapshot.UnitIDs)),
			Timestamp:         outcome.Snapshot.FetchedAt,
		})
	}

	metrics.RecordObservedEntities(address, len(outcome.Snapshot.UnitIDs))
	metrics.RecordSnapshotStale(address, outcome.Snapshot.Validity == types.ValidityStale)

	log.Ctx(ctx).Info().
		Uint64("token", token).
		Int("units", len(outcome.Snapshot.UnitIDs)).
		Str("validity", outcome.Snapshot.Validity.String()).
		Dur("duration", duration).
		Msg("sync cycle committed")
}
