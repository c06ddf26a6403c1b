package engine

import (
	"context"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/stakelens/stakesync/internal/clients/chainclient"
	"github.com/stakelens/stakesync/internal/observability/metrics"
	"github.com/stakelens/stakesync/internal/types"
)

// ReadOutcome is everything one sync cycle observed. The engine commits
// it only if the cycle's token is still current.
type ReadOutcome struct {
	// Token is the operation token allocated for this cycle, after
	// mutual exclusion was won.
	Token    uint64
	Snapshot EntitySetSnapshot
	Entities map[uint64]ObservedEntity
	// Params and Accrued are nil-able extras; a failed read of either
	// leaves the previously committed value in place.
	Params  *chainclient.StakingParams
	Accrued *math.LegacyDec
	// Superseded means a newer cycle took over while this one ran; the
	// outcome must be discarded without mutating shared state.
	Superseded bool
	// Err is set only when the live read failed and no fallback exists.
	Err error
}

// Reader performs the batched reads of one sync cycle against the remote
// ledger. Only one ReadAll may be in flight per identity; a trigger
// arriving while one runs is dropped, not queued.
type Reader struct {
	chain    chainclient.ChainInterface
	fallback *FallbackStore
	seq      *Sequencer

	mu       sync.Mutex
	inFlight map[string]bool

	now func() time.Time
}

func NewReader(chain chainclient.ChainInterface, fallback *FallbackStore, seq *Sequencer) *Reader {
	return &Reader{
		chain:    chain,
		fallback: fallback,
		seq:      seq,
		inFlight: make(map[string]bool),
		now:      time.Now,
	}
}

// ReadAll reads the entity set of an identity and then each unit's raw
// status sequentially. It returns nil if another read for the same
// identity is already in flight; a dropped trigger allocates no token,
// so the cycle it lost to stays current.
func (r *Reader) ReadAll(
	ctx context.Context,
	address string,
	begin func() uint64,
	prev map[uint64]ObservedEntity,
) *ReadOutcome {
	if !r.acquire(address) {
		metrics.RecordDroppedTrigger()
		log.Ctx(ctx).Debug().Msg("read already in flight, dropping trigger")
		return nil
	}
	defer r.release(address)

	token := begin()
	outcome := &ReadOutcome{Token: token}

	setResult := r.readEntitySet(ctx, address)
	if setResult.IsOk() {
		outcome.Snapshot = EntitySetSnapshot{
			UnitIDs:   setResult.Value(),
			Validity:  types.ValidityFresh,
			FetchedAt: r.now(),
		}
	} else {
		// An error is never "zero entities": fall back to the last
		// known-good snapshot and do not touch the fallback store.
		snapshot, entities, ok := r.fallback.Get(ctx, address)
		if !ok {
			outcome.Err = &types.NoFallbackError{Identity: address, Err: setResult.Err()}
			return outcome
		}
		metrics.RecordFallbackHit()
		log.Ctx(ctx).Warn().
			Err(setResult.Err()).
			Int("cached_units", len(snapshot.UnitIDs)).
			Msg("entity-set read failed, serving stale snapshot")

		snapshot.Validity = types.ValidityStale
		outcome.Snapshot = snapshot
		outcome.Entities = entities
		return outcome
	}

	// A superseded cycle must not spend budget on per-unit reads, and
	// must not commit anything it already has.
	if !r.seq.IsCurrent(token) {
		outcome.Superseded = true
		return outcome
	}

	outcome.Entities = r.readUnitStatuses(ctx, outcome.Snapshot.UnitIDs, prev)

	if params, err := r.chain.GetStakingParams(ctx); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to read staking params, keeping previous")
	} else {
		outcome.Params = params
	}

	if accrued, err := r.chain.GetAccruedReward(ctx, address); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to read accrued reward, keeping previous")
	} else {
		outcome.Accrued = &accrued
	}

	if !r.seq.IsCurrent(token) {
		outcome.Superseded = true
		return outcome
	}

	// Only fresh, complete reads refresh the fallback store.
	r.fallback.Put(ctx, address, outcome.Snapshot, outcome.Entities)

	return outcome
}

func (r *Reader) readEntitySet(ctx context.Context, address string) types.Result[[]uint64] {
	ids, err := r.chain.GetStakedUnits(ctx, address)
	if err != nil {
		return types.Err[[]uint64](err)
	}
	return types.Ok(ids)
}

// readUnitStatuses reads each unit sequentially to bound burst load on
// the ledger. A single unit's failure never aborts the rest of the
// batch; the unit keeps its last known raw status instead.
func (r *Reader) readUnitStatuses(
	ctx context.Context,
	unitIDs []uint64,
	prev map[uint64]ObservedEntity,
) map[uint64]ObservedEntity {
	entities := make(map[uint64]ObservedEntity, len(unitIDs))

	for _, id := range unitIDs {
		status, err := r.chain.GetUnitStatus(ctx, id)
		if err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Uint64("unit_id", id).
				Msg("unit status read failed, retaining last known status")

			if prevEntity, ok := prev[id]; ok {
				entities[id] = prevEntity
			} else {
				// First sighting with a failed read: track the unit with
				// an empty status so it is not treated as absent.
				entities[id] = ObservedEntity{ID: id, RawStatus: chainclient.UnitStatus{UnitID: id}}
			}
			continue
		}

		entities[id] = ObservedEntity{
			ID:        id,
			RawStatus: *status,
			FetchedAt: r.now(),
		}
	}

	return entities
}

func (r *Reader) acquire(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight[address] {
		return false
	}
	r.inFlight[address] = true
	return true
}

func (r *Reader) release(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, address)
}
