package config

import (
	"errors"
	"time"
)

type QueueConfig struct {
	QueueUser        string        `mapstructure:"queue-user"`
	QueuePassword    string        `mapstructure:"queue-password"`
	Url              string        `mapstructure:"url"`
	Exchange         string        `mapstructure:"exchange"`
	PublishTimeout   time.Duration `mapstructure:"publish-timeout"`
	MaxRetryAttempts uint          `mapstructure:"max-retry-attempts"`
	RetryInterval    time.Duration `mapstructure:"retry-interval"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.QueueUser == "" {
		return errors.New("missing queue user")
	}

	if cfg.QueuePassword == "" {
		return errors.New("missing queue password")
	}

	if cfg.Url == "" {
		return errors.New("missing queue url")
	}

	if cfg.Exchange == "" {
		return errors.New("missing queue exchange")
	}

	if cfg.PublishTimeout <= 0 {
		return errors.New("publish-timeout must be positive")
	}

	if cfg.MaxRetryAttempts == 0 {
		return errors.New("max-retry-attempts must be positive")
	}

	if cfg.RetryInterval <= 0 {
		return errors.New("retry-interval must be positive")
	}

	return nil
}
