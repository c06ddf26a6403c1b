package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Chain   ChainConfig   `mapstructure:"chain"`
	Db      DbConfig      `mapstructure:"db"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Reward  RewardConfig  `mapstructure:"reward"`
	Queue   *QueueConfig  `mapstructure:"queue"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Identities are the addresses this daemon keeps in sync. One engine
	// instance is created per entry, each with its own sequencer.
	Identities []string `mapstructure:"identities"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Chain.Validate(); err != nil {
		return err
	}
	if err := cfg.Db.Validate(); err != nil {
		return err
	}
	if err := cfg.Sync.Validate(); err != nil {
		return err
	}
	if err := cfg.Reward.Validate(); err != nil {
		return err
	}
	// Queue is optional: without it mismatch diagnostics only go to
	// logs and metrics.
	if cfg.Queue != nil {
		if err := cfg.Queue.Validate(); err != nil {
			return err
		}
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return err
	}
	for _, addr := range cfg.Identities {
		if strings.TrimSpace(addr) == "" {
			return fmt.Errorf("identities must not contain empty addresses")
		}
	}
	return nil
}

// New returns a validated Config loaded from the given file path.
// Environment variables override file values (dots and dashes map to
// underscores).
func New(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgPath, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
