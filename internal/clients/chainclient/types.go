package chainclient

import (
	"time"

	"cosmossdk.io/math"
)

// UnitStatus holds the raw fields of one staked unit exactly as the
// ledger reports them. Eligibility is derived from these fields, never
// stored back.
type UnitStatus struct {
	UnitID uint64 `json:"unit_id"`
	// StakedAt is the unix timestamp the unit entered the staking set.
	StakedAt int64 `json:"staked_at"`
	// LastActionAt is the unix timestamp of the unit's activity marker.
	// Zero means the marker was never set.
	LastActionAt int64  `json:"last_action_at"`
	ActionCount  uint64 `json:"action_count"`
	Locked       bool   `json:"locked"`
}

// StakingParams are the global constants the ledger exposes for
// client-side derivations.
type StakingParams struct {
	// ActivityWindow is how long an activity marker counts as current
	// for display purposes. The ledger's own eligibility check ignores it.
	ActivityWindow time.Duration
	// RatePerUnitPerSec is the reward accrual rate of a single unit.
	RatePerUnitPerSec math.LegacyDec
}

type unitStatusResponse struct {
	Unit UnitStatus `json:"unit"`
}

type stakedUnitsResponse struct {
	Address string   `json:"address"`
	UnitIDs []uint64 `json:"unit_ids"`
}

type stakingParamsResponse struct {
	ActivityWindowSeconds int64  `json:"activity_window_seconds"`
	RatePerUnitPerSec     string `json:"rate_per_unit_per_sec"`
}

type accruedRewardResponse struct {
	Address string `json:"address"`
	Accrued string `json:"accrued"`
}
