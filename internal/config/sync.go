package config

import (
	"errors"
	"time"
)

type SyncConfig struct {
	// PollingInterval is how often a non-forced sync is triggered.
	PollingInterval time.Duration `mapstructure:"polling-interval"`
	// Cooldown is the minimum gap between two non-forced sync runs.
	// Triggers arriving inside the window are dropped.
	Cooldown time.Duration `mapstructure:"cooldown"`
	// DebounceWindow collapses bursts of near-simultaneous triggers
	// (startup + identity change + manual refresh) into one run.
	DebounceWindow time.Duration `mapstructure:"debounce-window"`
}

func (cfg *SyncConfig) Validate() error {
	if cfg.PollingInterval <= 0 {
		return errors.New("sync polling-interval must be positive")
	}
	if cfg.Cooldown < 0 {
		return errors.New("sync cooldown must not be negative")
	}
	if cfg.DebounceWindow <= 0 {
		return errors.New("sync debounce-window must be positive")
	}
	if cfg.DebounceWindow >= cfg.PollingInterval {
		return errors.New("sync debounce-window must be shorter than polling-interval")
	}
	return nil
}
