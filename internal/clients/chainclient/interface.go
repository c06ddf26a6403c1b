package chainclient

import (
	"context"

	"cosmossdk.io/math"
)

// ChainInterface is the opaque request/response boundary to the remote
// ledger. All methods are read-only queries.
type ChainInterface interface {
	// GetStakedUnits returns the ids of all units currently attributed
	// to the address. An empty list is a valid "zero entities" answer.
	GetStakedUnits(ctx context.Context, address string) ([]uint64, error)
	// GetUnitStatus returns the raw observed fields of one unit.
	GetUnitStatus(ctx context.Context, unitID uint64) (*UnitStatus, error)
	// GetStakingParams returns the global activity window and reward rate.
	GetStakingParams(ctx context.Context) (*StakingParams, error)
	// GetAccruedReward returns the authoritative accrued reward balance
	// of the address at the time of the call.
	GetAccruedReward(ctx context.Context, address string) (math.LegacyDec, error)
}
