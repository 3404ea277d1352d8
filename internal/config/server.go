package config

import (
	"errors"
	"fmt"
	"time"
)

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle-timeout"`
}

func (cfg *ServerConfig) Validate() error {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("server port %d is out of range", cfg.Port)
	}

	if cfg.ReadTimeout <= 0 {
		return errors.New("server read-timeout must be positive")
	}

	if cfg.WriteTimeout <= 0 {
		return errors.New("server write-timeout must be positive")
	}

	if cfg.IdleTimeout <= 0 {
		return errors.New("server idle-timeout must be positive")
	}

	return nil
}

func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}
