//go:build integration

package queue_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/queue"
	"github.com/babylonlabs-io/staking-ledger/internal/types"
	"github.com/babylonlabs-io/staking-ledger/testutil"
)

const (
	rabbitUser     = "user"
	rabbitPassword = "password"
	rabbitVersion  = "3.13-alpine"
)

func setupRabbitContainer(t *testing.T) *config.QueueConfig {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	randomString, err := testutil.RandomAlphaNum(3)
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "rabbitmq-integration-tests-" + randomString,
		Repository: "rabbitmq",
		Tag:        rabbitVersion,
		Env: []string{
			"RABBITMQ_DEFAULT_USER=" + rabbitUser,
			"RABBITMQ_DEFAULT_PASS=" + rabbitPassword,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{
			Name: "no",
		}
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pool.Purge(resource))
	})

	cfg := &config.QueueConfig{
		QueueUser:        rabbitUser,
		QueuePassword:    rabbitPassword,
		Url:              fmt.Sprintf("localhost:%s", resource.GetPort("5672/tcp")),
		Exchange:         "staking-ledger-events",
		PublishTimeout:   5 * time.Second,
		MaxRetryAttempts: 3,
		RetryInterval:    100 * time.Millisecond,
	}

	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url))
		if err != nil {
			return err
		}
		return conn.Close()
	})
	require.NoError(t, err)

	return cfg
}

func TestQueueManager_PublishLedgerEvent(t *testing.T) {
	ctx := t.Context()
	cfg := setupRabbitContainer(t)

	qm, err := queue.NewQueueManager(cfg)
	require.NoError(t, err)
	t.Cleanup(qm.Shutdown)

	// consumer side: a queue bound to every claim event
	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s", cfg.QueueUser, cfg.QueuePassword, cfg.Url))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	ch, err := conn.Channel()
	require.NoError(t, err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, types.EventRewardClaimed.String(), cfg.Exchange, false, nil))
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)

	staked := &types.LedgerEvent{
		ID:        uuid.NewString(),
		Type:      types.EventStaked,
		Account:   testutil.RandomAddress(t, "bbn"),
		Amount:    "1000000000000000000",
		Timestamp: time.Unix(1_700_000_000, 0).UTC(),
	}
	claimed := &types.LedgerEvent{
		ID:        uuid.NewString(),
		Type:      types.EventRewardClaimed,
		Account:   staked.Account,
		Amount:    "1589845339",
		Reward:    "1589845339",
		Timestamp: time.Unix(1_700_000_001, 0).UTC(),
	}
	require.NoError(t, qm.PublishLedgerEvent(ctx, staked))
	require.NoError(t, qm.PublishLedgerEvent(ctx, claimed))

	select {
	case d := <-deliveries:
		var event types.LedgerEvent
		require.NoError(t, json.Unmarshal(d.Body, &event))
		assert.Equal(t, *claimed, event)
	case <-time.After(10 * time.Second):
		t.Fatal("no ledger event delivered")
	}
}
