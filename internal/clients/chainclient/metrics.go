package chainclient

import (
	"context"
	"time"

	"cosmossdk.io/math"

	"github.com/stakelens/stakesync/internal/observability/metrics"
)

type chainClientWithMetrics struct {
	chain ChainInterface
}

func NewChainClientWithMetrics(chain ChainInterface) ChainInterface {
	return &chainClientWithMetrics{chain: chain}
}

func (c *chainClientWithMetrics) GetStakedUnits(ctx context.Context, address string) ([]uint64, error) {
	return runChainMethodWithMetrics("GetStakedUnits", func() ([]uint64, error) {
		return c.chain.GetStakedUnits(ctx, address)
	})
}

func (c *chainClientWithMetrics) GetUnitStatus(ctx context.Context, unitID uint64) (*UnitStatus, error) {
	return runChainMethodWithMetrics("GetUnitStatus", func() (*UnitStatus, error) {
		return c.chain.GetUnitStatus(ctx, unitID)
	})
}

func (c *chainClientWithMetrics) GetStakingParams(ctx context.Context) (*StakingParams, error) {
	return runChainMethodWithMetrics("GetStakingParams", func() (*StakingParams, error) {
		return c.chain.GetStakingParams(ctx)
	})
}

func (c *chainClientWithMetrics) GetAccruedReward(ctx context.Context, address string) (math.LegacyDec, error) {
	return runChainMethodWithMetrics("GetAccruedReward", func() (math.LegacyDec, error) {
		return c.chain.GetAccruedReward(ctx, address)
	})
}

func runChainMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	start := time.Now()
	result, err := f()
	metrics.RecordChainClientLatency(method, time.Since(start), err)
	return result, err
}
