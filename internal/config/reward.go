package config

import (
	"errors"
	"time"
)

type RewardConfig struct {
	// TickInterval is the cadence of the display-refresh tick of the
	// accrual estimator. The tick never touches the network.
	TickInterval time.Duration `mapstructure:"tick-interval"`
}

func (cfg *RewardConfig) Validate() error {
	if cfg.TickInterval <= 0 {
		return errors.New("reward tick-interval must be positive")
	}
	return nil
}
