package reward

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/observability/metrics"
)

// State is the estimator's accrual mode.
type State string

const (
	// StateIdle means the unit count is zero; Current reports the base
	// amount unchanged.
	StateIdle State = "IDLE"
	// StateAccruing means the unit count is positive; Current
	// extrapolates from the base using elapsed wall-clock time.
	StateAccruing State = "ACCRUING"
)

// Base holds the authoritative accrual parameters taken from the last
// successful sync. The displayed value is always recomputed from these;
// it is never persisted as ground truth.
type Base struct {
	Amount            math.LegacyDec
	RatePerUnitPerSec math.LegacyDec
	UnitCount         int64
	Timestamp         time.Time
}

// Estimator extrapolates a monotonically increasing accrual between
// authoritative syncs. Between two Update calls Current never decreases;
// Update itself may move the value either way because it reflects a
// fresh authoritative read superseding the local extrapolation.
type Estimator struct {
	mu      sync.RWMutex
	base    Base
	hasBase bool

	address      string
	tickInterval time.Duration
	now          func() time.Time
	quit         chan struct{}
}

func NewEstimator(address string, tickInterval time.Duration) *Estimator {
	return &Estimator{
		address:      address,
		tickInterval: tickInterval,
		now:          time.Now,
		quit:         make(chan struct{}),
	}
}

// Update replaces the authoritative parameters after a successful sync.
// A regression against the previous authoritative amount is logged, not
// hidden: the ledger's answer wins, but silently shrinking a balance the
// user already saw needs a trace.
func (e *Estimator) Update(ctx context.Context, base Base) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasBase && base.Amount.LT(e.base.Amount) {
		log.Ctx(ctx).Warn().
			Str("previous_amount", e.base.Amount.String()).
			Str("new_amount", base.Amount.String()).
			Msg("authoritative accrual regressed below previous authoritative value")
	}

	e.base = base
	e.hasBase = true
}

// Current returns the extrapolated accrual at call time. With no base
// yet, or with zero units, the value stays pinned at the base amount.
func (e *Estimator) Current() math.LegacyDec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentLocked()
}

func (e *Estimator) currentLocked() math.LegacyDec {
	if !e.hasBase {
		return math.LegacyZeroDec()
	}
	if e.base.UnitCount == 0 {
		return e.base.Amount
	}

	elapsed := int64(e.now().Sub(e.base.Timestamp) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return e.base.Amount.Add(
		e.base.RatePerUnitPerSec.MulInt64(e.base.UnitCount).MulInt64(elapsed),
	)
}

// State reports whether the estimator is idle or accruing.
func (e *Estimator) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.hasBase && e.base.UnitCount > 0 {
		return StateAccruing
	}
	return StateIdle
}

// Start runs the display-refresh tick, republishing the current estimate
// to the metrics gauge. It never touches the network.
func (e *Estimator) Start(ctx context.Context) {
	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.mu.RLock()
			current := e.currentLocked()
			e.mu.RUnlock()
			metrics.RecordAccrualEstimate(e.address, current.MustFloat64())
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		}
	}
}

func (e *Estimator) Stop() {
	close(e.quit)
}
