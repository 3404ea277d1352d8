package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	CheckpointInterval time.Duration `mapstructure:"checkpoint-interval"`
	StatsInterval      time.Duration `mapstructure:"stats-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.CheckpointInterval <= 0 {
		return errors.New("checkpoint-interval must be positive")
	}

	if cfg.StatsInterval <= 0 {
		return errors.New("stats-interval must be positive")
	}

	return nil
}
