package config

import (
	"errors"
	"time"
)

type ChainConfig struct {
	// Endpoint is the base URL of the ledger query API, including the
	// protocol prefix.
	Endpoint      string        `mapstructure:"endpoint"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *ChainConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("chain endpoint is required")
	}
	if cfg.Timeout <= 0 {
		return errors.New("chain timeout must be positive")
	}
	if cfg.MaxRetryTimes == 0 {
		return errors.New("chain max-retry-times must be positive")
	}
	if cfg.RetryInterval <= 0 {
		return errors.New("chain retry-interval must be positive")
	}
	return nil
}
