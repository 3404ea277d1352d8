package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	const (
		key          = "STAKING_LEDGER_TEST_KEY"
		defaultValue = "default"
	)

	t.Run("unset", func(t *testing.T) {
		assert.Equal(t, defaultValue, Getenv(key, defaultValue))
	})
	t.Run("empty falls back to default", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Equal(t, defaultValue, Getenv(key, defaultValue))
	})
	t.Run("set", func(t *testing.T) {
		t.Setenv(key, "/etc/staking-ledger/config.yml")
		assert.Equal(t, "/etc/staking-ledger/config.yml", Getenv(key, defaultValue))
	})
}
