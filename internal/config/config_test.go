package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	poolAccount = "bbn1qyqszqgpqyqszqgpqyqszqgpqyqszqgp9ds0j9"
	funder      = "bbn1qgpqyqszqgpqyqszqgpqyqszqgpqyqsz5fk2en"
	alice       = "bbn1qvpsxqcrqvpsxqcrqvpsxqcrqvpsxqcr4ehtnj"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8090,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		Db: DbConfig{
			Username: "test",
			Password: "test",
			Address:  "mongodb://localhost:27017",
			DbName:   "test",
		},
		Metrics: MetricsConfig{
			Host: "0.0.0.0",
			Port: 2112,
		},
		Poller: PollerConfig{
			CheckpointInterval: 10 * time.Second,
			StatsInterval:      30 * time.Second,
		},
		Ledger: LedgerConfig{
			AddressPrefix: "bbn",
			PoolAccount:   poolAccount,
			Funder:        funder,
			Genesis: []GenesisAllocation{
				{Account: funder, Amount: "1000"},
				{Account: alice, Amount: "250.5"},
			},
		},
		Queue: &QueueConfig{
			QueueUser:        "test",
			QueuePassword:    "test",
			Url:              "localhost:5672",
			Exchange:         "staking-ledger",
			PublishTimeout:   5 * time.Second,
			MaxRetryAttempts: 3,
			RetryInterval:    time.Second,
		},
	}
}

func TestConfig_OptionalQueue(t *testing.T) {
	cfg := validConfig()

	err := cfg.Validate()
	require.NoError(t, err)
	assert.NotNil(t, cfg.Queue)

	cfg.Queue = nil
	err = cfg.Validate()
	require.NoError(t, err)
	assert.Nil(t, cfg.Queue)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]func(cfg *Config){
		"funder is pool":           func(cfg *Config) { cfg.Ledger.Funder = poolAccount },
		"funder with wrong prefix": func(cfg *Config) { cfg.Ledger.AddressPrefix = "cosmos" },
		"missing pool account":     func(cfg *Config) { cfg.Ledger.PoolAccount = "" },
		"negative genesis amount":  func(cfg *Config) { cfg.Ledger.Genesis[0].Amount = "-1" },
		"zero genesis amount":      func(cfg *Config) { cfg.Ledger.Genesis[0].Amount = "0" },
		"too precise amount":       func(cfg *Config) { cfg.Ledger.Genesis[0].Amount = "0.0000000000000000001" },
		"genesis to pool":          func(cfg *Config) { cfg.Ledger.Genesis[0].Account = poolAccount },
		"unsupported db scheme":    func(cfg *Config) { cfg.Db.Address = "postgres://localhost" },
		"zero checkpoint interval": func(cfg *Config) { cfg.Poller.CheckpointInterval = 0 },
		"invalid metrics host":     func(cfg *Config) { cfg.Metrics.Host = "localhost:2112" },
		"zero server timeout":      func(cfg *Config) { cfg.Server.ReadTimeout = 0 },
		"queue without exchange":   func(cfg *Config) { cfg.Queue.Exchange = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNew(t *testing.T) {
	const content = `
server:
  host: 127.0.0.1
  port: 8090
  read-timeout: 5s
  write-timeout: 5s
  idle-timeout: 1m
db:
  username: user
  password: password
  db-name: staking-ledger
  address: mongodb://localhost:27017
metrics:
  host: 0.0.0.0
  port: 2112
poller:
  checkpoint-interval: 10s
  stats-interval: 30s
ledger:
  address-prefix: bbn
  pool-account: ` + poolAccount + `
  funder: ` + funder + `
  genesis:
    - account: ` + alice + `
      amount: "100"
`
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Run("from file", func(t *testing.T) {
		cfg, err := New(path)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:8090", cfg.Server.Address())
		assert.Equal(t, time.Minute, cfg.Server.IdleTimeout)
		assert.Equal(t, 10*time.Second, cfg.Poller.CheckpointInterval)
		assert.Equal(t, funder, cfg.Ledger.Funder)
		require.Len(t, cfg.Ledger.Genesis, 1)
		assert.Equal(t, GenesisAllocation{Account: alice, Amount: "100"}, cfg.Ledger.Genesis[0])
		assert.Nil(t, cfg.Queue)
	})
	t.Run("environment overrides file", func(t *testing.T) {
		t.Setenv("DB_DB_NAME", "from-env")

		cfg, err := New(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Db.DbName)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})
}
