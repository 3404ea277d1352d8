package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetDefaultConfigPath(t *testing.T) {
	home := t.TempDir()

	t.Run("home directory", func(t *testing.T) {
		t.Setenv(configPathEnv, "")
		assert.Equal(t, filepath.Join(home, "config.yml"), getDefaultConfigPath(home))
	})
	t.Run("environment", func(t *testing.T) {
		t.Setenv(configPathEnv, "/etc/staking-ledger/config.yml")
		assert.Equal(t, "/etc/staking-ledger/config.yml", getDefaultConfigPath(home))
	})
}
